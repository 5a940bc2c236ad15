package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/hookwatch/internal/dashboard"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <row>",
		Short: "Show one delivery with its payload and response",
		Long: `Show the full detail of one delivery. Rows are numbered as in the
history listing: 1 is the newest delivery.

Examples:
  hookwatch show 1
  hookwatch show 12 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := opts.formatter(cmd)
	row, err := strconv.Atoi(arg)
	if err != nil || row < 1 {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid row %q", arg), err)
	}

	env, err := openEnvironment(cmd.Context(), opts, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	rec, ok := env.store.At(row - 1)
	if !ok {
		return f.Fail(ExitFailure, ErrCodeNotFound,
			fmt.Sprintf("no delivery at row %d (%d in history)", row, env.store.Len()), nil)
	}
	detail := env.projector.Detail(rec)

	if f.IsJSON() {
		return f.Success(detail)
	}
	return dashboard.WriteDetail(cmd.OutOrStdout(), detail)
}
