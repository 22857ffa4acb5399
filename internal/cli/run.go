package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/quad"
	"github.com/roach88/sigconv/internal/request"
	"github.com/roach88/sigconv/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Request RequestFlags

	Database    string
	MetricsFile string
	Workers     int
	Values      bool

	AbsTol          float64
	RelTol          float64
	MaxSubintervals int

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunOutput is the data payload of a successful run.
type RunOutput struct {
	RunID       string                     `json:"run_id"`
	RequestHash string                     `json:"request_hash"`
	Request     request.Request            `json:"request"`
	Method      model.Method               `json:"method"`
	Points      int                        `json:"points"`
	AxisStart   float64                    `json:"axis_start"`
	AxisEnd     float64                    `json:"axis_end"`
	Peak        store.Peak                 `json:"peak"`
	Warnings    []model.IntegrationWarning `json:"warnings,omitempty"`
	MaxAbsDiff  *float64                   `json:"max_abs_diff,omitempty"`
	ElapsedMS   float64                    `json:"elapsed_ms"`

	// Discrete and Continuous carry the full results with --values.
	Discrete   *model.Result `json:"discrete,omitempty"`
	Continuous *model.Result `json:"continuous,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convolve two signals",
		Long: `Sample f and g on a shared grid and convolve them.

The request starts from the defaults (two Gaussians on [-5, 5], 1000
samples, discrete method) or from --example, then --file, then the
individual flags, each layer overriding the one before.

With --db every request is recorded, including failed ones.

Examples:
  sigconv run
  sigconv run --example gaussian-rect --method both
  sigconv run --f "exp(-t)" --f-interval right-bounded --f-x1 0 --g "1" \
      --g-interval bounded --g-x1 0 --g-x2 1 --xmin -1 --xmax 5 --n 601
  sigconv run --file request.cue --db ./sigconv.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvolution(opts, cmd)
		},
	}

	addRequestFlags(cmd, &opts.Request)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "continuous method parallelism (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.Values, "values", false, "print every output value")
	cmd.Flags().Float64Var(&opts.AbsTol, "abs-tol", quad.DefaultAbsTol, "quadrature absolute tolerance")
	cmd.Flags().Float64Var(&opts.RelTol, "rel-tol", quad.DefaultRelTol, "quadrature relative tolerance")
	cmd.Flags().IntVar(&opts.MaxSubintervals, "max-subintervals", quad.DefaultMaxSubintervals, "quadrature subdivision limit per point")

	return cmd
}

func runConvolution(opts *RunOptions, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	req, err := opts.Request.BuildRequest()
	if err != nil {
		return reportRequestError(formatter, err)
	}

	var st *store.Store
	if opts.Database != "" {
		slog.Debug("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	eng := engine.New(st, opts.RunIDs,
		engine.WithLogger(logger),
		engine.WithWorkers(opts.Workers),
		engine.WithQuadrature(quad.Options{
			AbsTol:          opts.AbsTol,
			RelTol:          opts.RelTol,
			MaxSubintervals: opts.MaxSubintervals,
		}),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, runErr := eng.Execute(ctx, req)

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, prometheus.DefaultGatherer); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	if runErr != nil {
		return reportRequestError(formatter, runErr)
	}

	result := newRunOutput(req, out, opts.Values)
	if opts.Format == "json" {
		return formatter.SuccessWithRunID(out.RunID, result)
	}
	printRunText(cmd.OutOrStdout(), result, out, opts.Values)
	return nil
}

func newRunOutput(req request.Request, out *engine.Outcome, values bool) RunOutput {
	res := out.Result()
	_, peakT, peakV := res.Peak()
	ro := RunOutput{
		RunID:       out.RunID,
		RequestHash: out.RequestHash,
		Request:     req,
		Method:      out.Method,
		Points:      res.Len(),
		AxisStart:   res.Axis[0],
		AxisEnd:     res.Axis[res.Len()-1],
		Peak:        store.Peak{T: peakT, Value: peakV},
		Warnings:    out.Warnings(),
		MaxAbsDiff:  out.MaxAbsDiff,
		ElapsedMS:   float64(out.Elapsed.Microseconds()) / 1000,
	}
	if values {
		ro.Discrete = out.Discrete
		ro.Continuous = out.Continuous
	}
	return ro
}

func printRunText(w io.Writer, ro RunOutput, out *engine.Outcome, values bool) {
	fmt.Fprintf(w, "run       %s\n", ro.RunID)
	fmt.Fprintf(w, "method    %s\n", ro.Method)
	fmt.Fprintf(w, "points    %d on [%g, %g]\n", ro.Points, ro.AxisStart, ro.AxisEnd)
	fmt.Fprintf(w, "peak      %g at t = %g\n", ro.Peak.Value, ro.Peak.T)
	fmt.Fprintf(w, "warnings  %d\n", len(ro.Warnings))
	for _, warning := range ro.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
	if ro.MaxAbsDiff != nil {
		fmt.Fprintf(w, "max |discrete - continuous|  %g\n", *ro.MaxAbsDiff)
	}

	if !values {
		return
	}
	fmt.Fprintln(w)
	switch {
	case out.Discrete != nil && out.Continuous != nil:
		fmt.Fprintf(w, "%-14s %-14s %s\n", "t", "discrete", "continuous")
		for i, t := range out.Discrete.Axis {
			fmt.Fprintf(w, "%-14g %-14g %g\n", t, out.Discrete.Values[i], out.Continuous.Values[i])
		}
	default:
		res := out.Result()
		fmt.Fprintf(w, "%-14s %s\n", "t", "value")
		for i, t := range res.Axis {
			fmt.Fprintf(w, "%-14g %g\n", t, res.Values[i])
		}
	}
}
