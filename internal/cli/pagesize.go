package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hookwatch/internal/history"
)

// PageSizeResult is the JSON form of the page-size preference.
type PageSizeResult struct {
	PageSize string `json:"pageSize"`
	Capacity int    `json:"capacity"`
	Records  int    `json:"records"`
}

// NewPageSizeCommand creates the page-size command.
func NewPageSizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page-size [10|25|50|100|all]",
		Short: "Show or change the history page size",
		Long: `Show or change the stored page size. The history keeps ten pages of
scrollback for a fixed size; shrinking it drops the oldest deliveries.

Examples:
  hookwatch page-size
  hookwatch page-size 25
  hookwatch page-size all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPageSize(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runPageSize(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.formatter(cmd)

	var setting history.PageSetting
	if len(args) == 1 {
		parsed, err := history.ParsePageSetting(args[0])
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid page size %q", args[0]), err)
		}
		setting = parsed
	}

	env, err := openEnvironment(cmd.Context(), opts, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	if len(args) == 1 {
		env.pager.SetPageSize(cmd.Context(), setting)
	}

	result := PageSizeResult{
		PageSize: env.pager.Setting().String(),
		Capacity: env.store.Capacity(),
		Records:  env.store.Len(),
	}
	if f.IsJSON() {
		return f.Success(result)
	}
	verb := "Page size is"
	if len(args) == 1 {
		verb = "Page size set to"
	}
	return f.Success(fmt.Sprintf("%s %s (keeping up to %d deliveries, %d stored)",
		verb, result.PageSize, result.Capacity, result.Records))
}
