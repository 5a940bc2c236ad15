// Command hookwatch keeps a persistent history of a messaging gateway's
// webhook deliveries and follows its push stream live.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hookwatch/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
