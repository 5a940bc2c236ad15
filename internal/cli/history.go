package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hookwatch/internal/dashboard"
	"github.com/roach88/hookwatch/internal/project"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Page int // 1-based page number
}

// HistoryPage is the JSON form of one history page.
type HistoryPage struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalRecords int           `json:"totalRecords"`
	PageSize     string        `json:"pageSize"`
	Rows         []project.Row `json:"rows"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List delivered webhooks, newest first",
		Long: `List one page of the persisted webhook history, newest first.

The page size is the stored preference (see page-size). Pages past the
end are clamped to the last page.

Examples:
  hookwatch history
  hookwatch history --page 3
  hookwatch history --store file://./state.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "page number (1-based)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Page < 1 {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid page %d", opts.Page), nil)
	}

	env, err := openEnvironment(cmd.Context(), opts.RootOptions, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	env.pager.GotoPage(opts.Page - 1)
	rows := env.projector.Rows(env.pager.WindowStart(), env.pager.Window())
	state := env.pager.State()

	if f.IsJSON() {
		if rows == nil {
			rows = []project.Row{}
		}
		return f.Success(HistoryPage{
			Page:         state.CurrentPage + 1,
			TotalPages:   state.TotalPages,
			TotalRecords: state.TotalRecords,
			PageSize:     state.Setting.String(),
			Rows:         rows,
		})
	}

	w := cmd.OutOrStdout()
	if err := dashboard.WriteTable(w, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, dashboard.PagerLine(state))
	return err
}
