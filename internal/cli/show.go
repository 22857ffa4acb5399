package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Long: `Show a recorded run: its request, outcome and integration warnings.

Examples:
  sigconv show --db ./sigconv.db 0192f0c4-...
  sigconv show --db ./sigconv.db 0192f0c4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if opts.Format == "json" {
		return formatter.Success(run)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run       %s (#%d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "created   %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(w, "request   %s\n", run.Request)
	fmt.Fprintf(w, "hash      %s\n", run.RequestHash)
	fmt.Fprintf(w, "method    %s\n", run.Method)
	fmt.Fprintf(w, "status    %s\n", run.Status)
	if run.Status == store.StatusError {
		fmt.Fprintf(w, "error     %s: %s\n", run.ErrorCode, run.ErrorMessage)
	}
	if run.Peak != nil {
		fmt.Fprintf(w, "points    %d\n", run.Points)
		fmt.Fprintf(w, "peak      %g at t = %g\n", run.Peak.Value, run.Peak.T)
	}
	if run.MaxAbsDiff != nil {
		fmt.Fprintf(w, "max |discrete - continuous|  %g\n", *run.MaxAbsDiff)
	}
	fmt.Fprintf(w, "elapsed   %s\n", run.Elapsed)
	fmt.Fprintf(w, "engine    %s\n", run.EngineVersion)
	fmt.Fprintf(w, "warnings  %d\n", run.WarningCount)
	for _, warning := range run.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
	return nil
}
