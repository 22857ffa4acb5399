package conv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/quad"
	"github.com/roach88/sigconv/internal/signal"
)

// Options configures Continuous. The zero value is usable.
type Options struct {
	// Quad sets the per-point quadrature tolerances and subdivision limit.
	Quad quad.Options

	// Workers bounds the number of points integrated concurrently.
	// Default runtime.GOMAXPROCS(0).
	Workers int

	// Timeout bounds the whole call. Zero means no deadline beyond ctx.
	Timeout time.Duration

	// Logger receives one Warn record per integration warning.
	// Default slog.Default().
	Logger *slog.Logger
}

// Continuous computes y(t) = ∫ fa(τ)·fb(t−τ) dτ at every point of axis.
//
// Points are independent and may be computed in any order; the result is
// ordered like axis. An expression error from either function, or a done
// context, aborts the whole call. Points whose quadrature misses the
// tolerance keep their best estimate and are listed in Result.Warnings.
func Continuous(ctx context.Context, fa, fb signal.Function, axis []float64, opts Options) (model.Result, error) {
	start := time.Now()

	if len(axis) == 0 {
		return model.Result{}, model.NewParameterError("axis", "output axis is empty")
	}
	for i, t := range axis {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return model.Result{}, model.NewParameterError("axis", fmt.Sprintf("point %d is not finite (%g)", i, t))
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	values := make([]float64, len(axis))
	warnings := make([]*model.IntegrationWarning, len(axis))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range axis {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, w, err := convolveAt(gctx, fa, fb, axis[i], opts.Quad)
			if err != nil {
				return err
			}
			values[i] = v
			if w != nil {
				w.Index = i
				warnings[i] = w
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.Result{}, model.NewCancelledError(err)
		}
		return model.Result{}, err
	}

	res := model.Result{
		Method: model.MethodContinuous,
		Axis:   append([]float64(nil), axis...),
		Values: values,
	}
	for _, w := range warnings {
		if w == nil {
			continue
		}
		logger.Warn("integration did not converge",
			"index", w.Index,
			"t", w.T,
			"estimate", w.Value,
			"abs_error", w.AbsError,
			"evaluations", w.Evaluations,
			"reason", w.Reason,
		)
		res.Warnings = append(res.Warnings, *w)
	}

	convolutionDuration.WithLabelValues(string(model.MethodContinuous)).Observe(time.Since(start).Seconds())
	return res, nil
}

// convolveAt integrates fa(τ)·fb(t−τ) over supp(fa) ∩ (t − supp(fb)).
func convolveAt(ctx context.Context, fa, fb signal.Function, t float64, qopts quad.Options) (float64, *model.IntegrationWarning, error) {
	lo, hi := fb.Support().Reflect(t)
	lo, hi, ok := fa.Support().Intersect(lo, hi)
	if !ok || lo == hi {
		continuousPoints.WithLabelValues(outcomeEmpty).Inc()
		return 0, nil, nil
	}

	var shifted, gv []float64
	integrand := func(dst, taus []float64) ([]float64, error) {
		if cap(shifted) < len(taus) {
			shifted = make([]float64, len(taus))
		}
		shifted = shifted[:len(taus)]
		for i, tau := range taus {
			shifted[i] = t - tau
		}
		var err error
		if gv, err = fb.Eval(gv, shifted); err != nil {
			return nil, err
		}
		if dst, err = fa.Eval(dst, taus); err != nil {
			return nil, err
		}
		for i := range dst {
			dst[i] *= gv[i]
		}
		return dst, nil
	}

	r, err := quad.Integrate(ctx, integrand, lo, hi, qopts)
	if err != nil {
		return 0, nil, err
	}
	quadratureEvaluations.Observe(float64(r.Evaluations))

	if r.Converged {
		continuousPoints.WithLabelValues(outcomeConverged).Inc()
		return r.Value, nil, nil
	}
	continuousPoints.WithLabelValues(outcomeWarning).Inc()
	integrationWarnings.WithLabelValues(r.Reason).Inc()
	return r.Value, &model.IntegrationWarning{
		T:           t,
		Value:       r.Value,
		AbsError:    r.AbsError,
		Evaluations: r.Evaluations,
		Reason:      r.Reason,
	}, nil
}
