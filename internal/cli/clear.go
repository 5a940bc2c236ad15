package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// ClearResult is the JSON form of a clear.
type ClearResult struct {
	Cleared int `json:"cleared"`
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted webhook history",
		Long: `Delete every delivery from the history store. The page-size
preference is kept.

Examples:
  hookwatch clear --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deletion")

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if !opts.Yes {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, "refusing to clear history without --yes", nil)
	}

	env, err := openEnvironment(cmd.Context(), opts.RootOptions, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	cleared := env.store.Len()
	env.store.Clear(cmd.Context())

	if f.IsJSON() {
		return f.Success(ClearResult{Cleared: cleared})
	}
	return f.Success(fmt.Sprintf("Cleared %d deliveries", cleared))
}
