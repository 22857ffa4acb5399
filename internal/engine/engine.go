package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/sigconv/internal/conv"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/quad"
	"github.com/roach88/sigconv/internal/request"
	"github.com/roach88/sigconv/internal/signal"
	"github.com/roach88/sigconv/internal/store"
)

// Engine turns requests into sampled signals and convolution results.
//
// Each Execute call is independent: nothing computed for one request is
// shared with another. When a store is attached, every request is recorded
// as a run, including requests that fail.
//
// Thread-safety: Execute is safe to call from multiple goroutines. The
// store serializes its own writes.
type Engine struct {
	store   *store.Store
	ids     RunIDGenerator
	workers int
	quad    quad.Options
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of output points integrated concurrently by
// the continuous method. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithQuadrature sets the per-point quadrature tolerances.
func WithQuadrature(opts quad.Options) Option {
	return func(e *Engine) {
		e.quad = opts
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the wall clock used for run timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine. s may be nil, in which case runs are not recorded.
// A nil ids defaults to UUIDv7Generator.
func New(s *store.Store, ids RunIDGenerator, opts ...Option) *Engine {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	e := &Engine{
		store:  s,
		ids:    ids,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is everything a request produced.
type Outcome struct {
	RunID       string       `json:"run_id"`
	RequestHash string       `json:"request_hash"`
	Method      model.Method `json:"method"`

	// F and G are the sampled, interval-restricted input signals.
	F model.Signal `json:"f"`
	G model.Signal `json:"g"`

	// Discrete and Continuous are set according to Method.
	Discrete   *model.Result `json:"discrete,omitempty"`
	Continuous *model.Result `json:"continuous,omitempty"`

	// MaxAbsDiff is max |discrete - continuous| over the shared axis,
	// set only for MethodBoth.
	MaxAbsDiff *float64 `json:"max_abs_diff,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// Result returns the primary result: the continuous one when it was
// computed, otherwise the discrete one.
func (o *Outcome) Result() model.Result {
	if o.Continuous != nil {
		return *o.Continuous
	}
	if o.Discrete != nil {
		return *o.Discrete
	}
	return model.Result{}
}

// Warnings returns the integration warnings of the continuous result.
func (o *Outcome) Warnings() []model.IntegrationWarning {
	if o.Continuous == nil {
		return nil
	}
	return o.Continuous.Warnings
}

// Execute validates r, samples both signals and convolves them by the
// requested method.
//
// Errors are *model.Error values (see model.CodeOf); no partial outcome is
// returned with an error. Integration warnings are not errors: they are
// attached to the continuous result.
func (e *Engine) Execute(ctx context.Context, r request.Request) (*Outcome, error) {
	start := e.now()
	runID := e.ids.Generate()
	logger := e.logger.With("run_id", runID)

	hash, err := r.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing request: %w", err)
	}

	logger.Debug("executing request", "request_hash", hash, "method", r.Method)

	out, err := e.execute(ctx, logger, r)
	elapsed := e.now().Sub(start)

	if err != nil {
		logger.Info("request failed", "code", model.CodeOf(err), "error", err, "elapsed", elapsed)
		e.record(ctx, logger, runID, hash, r, nil, err, start, elapsed)
		return nil, err
	}

	out.RunID = runID
	out.RequestHash = hash
	out.Elapsed = elapsed

	res := out.Result()
	_, peakT, peakV := res.Peak()
	logger.Info("request complete",
		"method", out.Method,
		"points", res.Len(),
		"peak_t", peakT,
		"peak_value", peakV,
		"warnings", len(out.Warnings()),
		"elapsed", elapsed,
	)
	e.record(ctx, logger, runID, hash, r, out, nil, start, elapsed)
	return out, nil
}

func (e *Engine) execute(ctx context.Context, logger *slog.Logger, r request.Request) (*Outcome, error) {
	plan, err := r.Parse()
	if err != nil {
		return nil, err
	}

	fs, err := signal.Sample(plan.F, plan.XMin, plan.XMax, plan.N)
	if err != nil {
		return nil, withField(err, "f.expr")
	}
	gs, err := signal.Sample(plan.G, plan.XMin, plan.XMax, plan.N)
	if err != nil {
		return nil, withField(err, "g.expr")
	}
	logger.Debug("signals sampled", "n", plan.N, "dt", fs.Step(), "f", plan.F.String(), "g", plan.G.String())

	out := &Outcome{Method: plan.Method, F: fs, G: gs}

	if plan.Method == model.MethodDiscrete || plan.Method == model.MethodBoth {
		res, err := conv.Discrete(fs, gs)
		if err != nil {
			return nil, err
		}
		out.Discrete = &res
		logger.Debug("discrete convolution done", "points", res.Len())
	}

	if plan.Method == model.MethodContinuous || plan.Method == model.MethodBoth {
		axis, err := conv.OutputAxis(fs, gs, plan.Points)
		if err != nil {
			return nil, err
		}
		res, err := conv.Continuous(ctx, plan.F, plan.G, axis, conv.Options{
			Quad:    e.quad,
			Workers: e.workers,
			Timeout: plan.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		out.Continuous = &res
		logger.Debug("continuous convolution done", "points", res.Len(), "warnings", len(res.Warnings))
	}

	if out.Discrete != nil && out.Continuous != nil {
		d, err := conv.MaxAbsDiff(*out.Discrete, *out.Continuous)
		if err != nil {
			return nil, err
		}
		out.MaxAbsDiff = &d
	}

	return out, nil
}

// record writes the run to the attached store, if any. A failed write is
// logged and does not fail the request.
func (e *Engine) record(ctx context.Context, logger *slog.Logger, runID, hash string, r request.Request, out *Outcome, runErr error, start time.Time, elapsed time.Duration) {
	if e.store == nil {
		return
	}

	reqJSON, err := store.MarshalRequest(r)
	if err != nil {
		logger.Error("failed to record run", "error", err)
		return
	}

	method := r.Method
	if method == "" {
		method = string(model.MethodDiscrete)
	}
	run := store.Run{
		ID:            runID,
		RequestHash:   hash,
		Request:       reqJSON,
		Method:        method,
		Status:        store.StatusOK,
		Elapsed:       elapsed,
		EngineVersion: model.EngineVersion,
		CreatedAt:     start,
	}

	if runErr != nil {
		run.Status = store.StatusError
		run.ErrorCode = string(model.CodeOf(runErr))
		run.ErrorMessage = runErr.Error()
	} else {
		res := out.Result()
		run.Method = string(out.Method)
		run.Points = res.Len()
		if idx, t, v := res.Peak(); idx >= 0 {
			run.Peak = &store.Peak{T: t, Value: v}
		}
		run.MaxAbsDiff = out.MaxAbsDiff
		run.Warnings = out.Warnings()
		run.WarningCount = len(run.Warnings)
	}

	// Record even when the request's own context was cancelled.
	if err := e.store.WriteRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to record run", "error", err)
	}
}

func withField(err error, prefix string) error {
	var me *model.Error
	if errors.As(err, &me) {
		return me.WithField(prefix)
	}
	return err
}
