package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database    string
	Limit       int
	RequestHash string
	Since       string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with 'sigconv run --db', newest first.

--since accepts an RFC 3339 timestamp or a duration back from now.

Examples:
  sigconv history --db ./sigconv.db
  sigconv history --db ./sigconv.db --since 24h --limit 5
  sigconv history --db ./sigconv.db --hash <request-hash> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&opts.RequestHash, "hash", "", "only runs of this request hash")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only runs created at or after this time")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	listOpts := store.ListOptions{Limit: opts.Limit, RequestHash: opts.RequestHash}
	if opts.Since != "" {
		since, err := parseSince(opts.Since, time.Now())
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since", err)
		}
		listOpts.Since = since
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, listOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-10s  %-6s  %6s  %-24s  %s\n",
		"RUN", "CREATED", "METHOD", "STATUS", "POINTS", "PEAK", "WARNINGS")
	for _, run := range runs {
		peak := run.ErrorCode
		if run.Peak != nil {
			peak = fmt.Sprintf("%.6g @ %.6g", run.Peak.Value, run.Peak.T)
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-10s  %-6s  %6d  %-24s  %d\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Method,
			run.Status,
			run.Points,
			peak,
			run.WarningCount,
		)
	}
	return nil
}

// parseSince accepts an RFC 3339 timestamp or a duration before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("duration must not be negative: %s", s)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want an RFC 3339 time or a duration, got %q", s)
	}
	return t, nil
}
