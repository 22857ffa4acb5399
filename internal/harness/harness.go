package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/request"
	"github.com/roach88/sigconv/internal/store"
	"github.com/roach88/sigconv/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and fixed run ids.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures scenario execution.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	workers int
}

// WithLogger routes engine logs to l. By default they are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithWorkers bounds continuous-engine parallelism. Default GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Build the request from example, request file and inline overlay
// 3. Execute it through the engine, which records the run
// 4. Check the expected error, or evaluate the assertions
// 5. Read the recorded run back for the summary
//
// The returned error reports harness failures (unreadable request file,
// unknown example, store errors). Request failures are part of the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	req, err := scenario.BuildRequest()
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	runID := scenario.runID()
	clock := testutil.NewDeterministicClock()
	eng := engine.New(st,
		engine.NewFixedGenerator(runID, runID+"-swapped"),
		engine.WithLogger(cfg.logger),
		engine.WithClock(clock.Now),
		engine.WithWorkers(cfg.workers),
	)

	h := &Harness{store: st, engine: eng, logger: cfg.logger}
	return h.run(ctx, scenario, req, runID)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario, req request.Request, runID string) (*Result, error) {
	result := NewResult()

	out, runErr := h.engine.Execute(ctx, req)
	result.Outcome = out
	result.Err = runErr

	run, err := h.store.GetRun(context.WithoutCancel(ctx), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read recorded run: %w", err)
	}
	result.Run = run

	if scenario.ExpectError != nil {
		checkExpectedError(result, scenario.ExpectError, runErr)
		return result, nil
	}

	if runErr != nil {
		result.AddError(fmt.Sprintf("request failed: %v", runErr))
		return result, nil
	}

	actx := &AssertionContext{
		Ctx: ctx,
		Swapped: func(ctx context.Context) (*engine.Outcome, error) {
			swapped := req
			swapped.F, swapped.G = req.G, req.F
			return h.engine.Execute(ctx, swapped)
		},
	}
	for _, msg := range EvaluateAssertions(out, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario complete", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// checkExpectedError compares the request error with the expect_error clause.
func checkExpectedError(result *Result, want *ExpectError, got error) {
	if got == nil {
		result.AddError(fmt.Sprintf("expected error %s, request succeeded", want.Code))
		return
	}

	var me *model.Error
	if !errors.As(got, &me) {
		result.AddError(fmt.Sprintf("expected error %s, got untyped error: %v", want.Code, got))
		return
	}
	if string(me.Code) != want.Code {
		result.AddError(fmt.Sprintf("expected error %s, got %s: %v", want.Code, me.Code, got))
		return
	}
	if want.Field != "" && me.Field != want.Field {
		result.AddError(fmt.Sprintf("expected error field %q, got %q", want.Field, me.Field))
	}
}
