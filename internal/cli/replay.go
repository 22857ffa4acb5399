package cli

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/request"
	"github.com/roach88/sigconv/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	Tolerance float64
	Workers   int

	// RunIDs allows overriding the run id generator (for testing).
	RunIDs engine.RunIDGenerator
}

// ReplayResult compares a recorded run with its re-execution.
type ReplayResult struct {
	OriginalRunID string   `json:"original_run_id"`
	ReplayRunID   string   `json:"replay_run_id"`
	RequestHash   string   `json:"request_hash"`
	Reproducible  bool     `json:"reproducible"`
	Differences   []string `json:"differences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return newReplayCommand(&ReplayOptions{RootOptions: rootOpts})
}

func newReplayCommand(opts *ReplayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-execute a recorded run and compare",
		Long: `Re-execute the request of a recorded run and compare the outcome.

The new execution is recorded as its own run. Status, error code, output
length, warning count and peak are compared; peaks must agree within
--tolerance (relative).

Exit codes:
  0 - The run reproduced
  1 - Differences detected
  2 - Command error (database or run not found, etc.)

Examples:
  sigconv replay --db ./sigconv.db 0192f0c4-...
  sigconv replay --db ./sigconv.db 0192f0c4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 1e-9, "relative tolerance for the peak comparison")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "continuous method parallelism (default GOMAXPROCS)")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	original, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var req request.Request
	if err := store.UnmarshalRequest(original.Request, &req); err != nil {
		return WrapExitError(ExitCommandError, "failed to decode recorded request", err)
	}

	eng := engine.New(st, opts.RunIDs, engine.WithLogger(logger), engine.WithWorkers(opts.Workers))
	out, runErr := eng.Execute(ctx, req)
	if model.IsCancelled(runErr) && ctx.Err() != nil {
		return WrapExitError(ExitCommandError, "replay interrupted", runErr)
	}

	result := ReplayResult{
		OriginalRunID: original.ID,
		RequestHash:   original.RequestHash,
	}
	if out != nil {
		result.ReplayRunID = out.RunID
	}
	result.Differences = compareRun(original, out, runErr, opts.Tolerance)
	result.Reproducible = len(result.Differences) == 0

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if result.Reproducible {
			fmt.Fprintf(w, "✓ run %s reproduced\n", original.ID)
		} else {
			fmt.Fprintf(w, "✗ run %s did not reproduce\n", original.ID)
			for _, d := range result.Differences {
				fmt.Fprintf(w, "  %s\n", d)
			}
		}
	}

	if !result.Reproducible {
		return NewExitError(ExitFailure, fmt.Sprintf("run %s did not reproduce (%d difference(s))", original.ID, len(result.Differences)))
	}
	return nil
}

// compareRun lists the differences between a recorded run and a fresh
// outcome of the same request.
func compareRun(original *store.Run, out *engine.Outcome, runErr error, tol float64) []string {
	var diffs []string

	if runErr != nil {
		code := string(model.CodeOf(runErr))
		if original.Status != store.StatusError {
			return append(diffs, fmt.Sprintf("status: recorded ok, replay failed with %s", code))
		}
		if original.ErrorCode != code {
			diffs = append(diffs, fmt.Sprintf("error code: recorded %s, replay %s", original.ErrorCode, code))
		}
		return diffs
	}
	if original.Status != store.StatusOK {
		return append(diffs, fmt.Sprintf("status: recorded %s (%s), replay ok", original.Status, original.ErrorCode))
	}

	res := out.Result()
	if res.Len() != original.Points {
		diffs = append(diffs, fmt.Sprintf("points: recorded %d, replay %d", original.Points, res.Len()))
	}
	if n := len(out.Warnings()); n != original.WarningCount {
		diffs = append(diffs, fmt.Sprintf("warnings: recorded %d, replay %d", original.WarningCount, n))
	}
	if original.Peak != nil {
		_, t, v := res.Peak()
		if !closeEnough(t, original.Peak.T, tol) || !closeEnough(v, original.Peak.Value, tol) {
			diffs = append(diffs, fmt.Sprintf("peak: recorded %g at t=%g, replay %g at t=%g",
				original.Peak.Value, original.Peak.T, v, t))
		}
	}
	return diffs
}

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
