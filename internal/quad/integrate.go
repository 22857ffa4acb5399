package quad

import (
	"container/heap"
	"context"
	"fmt"
	"math"
)

// Integrand evaluates f at every point of xs, writing into dst (allocated
// when nil or too short) and returning it. An error aborts integration.
type Integrand func(dst, xs []float64) ([]float64, error)

// Options controls the adaptive scheme. Zero fields take defaults.
type Options struct {
	// AbsTol is the absolute error target. Default 1.49e-8.
	AbsTol float64

	// RelTol is the relative error target. Default 1.49e-8.
	RelTol float64

	// MaxSubintervals bounds the number of panels. Default 50.
	MaxSubintervals int
}

// Defaults for Options.
const (
	DefaultAbsTol          = 1.49e-8
	DefaultRelTol          = 1.49e-8
	DefaultMaxSubintervals = 50
)

func (o Options) withDefaults() Options {
	if o.AbsTol <= 0 {
		o.AbsTol = DefaultAbsTol
	}
	if o.RelTol <= 0 {
		o.RelTol = DefaultRelTol
	}
	if o.MaxSubintervals <= 0 {
		o.MaxSubintervals = DefaultMaxSubintervals
	}
	return o
}

// Result is the outcome of one integration.
type Result struct {
	Value        float64
	AbsError     float64
	Evaluations  int
	Subintervals int
	Converged    bool
	// Reason explains why Converged is false; empty otherwise.
	Reason string
}

// Reasons reported when the tolerance is not met.
const (
	ReasonLimit     = "maximum number of subdivisions reached"
	ReasonRoundoff  = "subinterval too small to bisect"
	ReasonNonFinite = "non-finite integral estimate"
)

// Integrate approximates ∫_a^b f(x) dx. Either bound may be infinite.
// a > b integrates in reverse and negates; a == b yields 0.
func Integrate(ctx context.Context, f Integrand, a, b float64, opts Options) (Result, error) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return Result{}, fmt.Errorf("quad: NaN integration bound")
	}
	if a == b {
		return Result{Converged: true}, nil
	}
	if a > b {
		r, err := Integrate(ctx, f, b, a, opts)
		r.Value = -r.Value
		return r, err
	}

	g, lo, hi := transform(f, a, b)
	return adapt(ctx, g, lo, hi, opts.withDefaults())
}

// transform maps infinite ranges onto [0, 1].
func transform(f Integrand, a, b float64) (mapped Integrand, lo, hi float64) {
	aInf, bInf := math.IsInf(a, -1), math.IsInf(b, 1)
	switch {
	case !aInf && !bInf:
		return f, a, b
	case !aInf && bInf:
		return semiInfinite(f, a, 1), 0, 1
	case aInf && !bInf:
		return semiInfinite(f, b, -1), 0, 1
	default:
		return doublyInfinite(f), 0, 1
	}
}

// semiInfinite integrates over [origin, +inf) (dir=1) or (-inf, origin]
// (dir=-1) via x = origin + dir*(1-u)/u, dx = du/u².
func semiInfinite(f Integrand, origin, dir float64) Integrand {
	var xs []float64
	return func(dst, us []float64) ([]float64, error) {
		if cap(xs) < len(us) {
			xs = make([]float64, len(us))
		}
		xs = xs[:len(us)]
		for i, u := range us {
			xs[i] = origin + dir*(1-u)/u
		}
		dst, err := f(dst, xs)
		if err != nil {
			return nil, err
		}
		for i, u := range us {
			dst[i] /= u * u
		}
		return dst, nil
	}
}

// doublyInfinite folds (-inf, 0] onto [0, +inf) and maps that onto [0, 1].
func doublyInfinite(f Integrand) Integrand {
	var xs, fx []float64
	return func(dst, us []float64) ([]float64, error) {
		n := len(us)
		if cap(xs) < 2*n {
			xs = make([]float64, 2*n)
		}
		xs = xs[:2*n]
		for i, u := range us {
			x := (1 - u) / u
			xs[i] = x
			xs[n+i] = -x
		}
		var err error
		fx, err = f(fx, xs)
		if err != nil {
			return nil, err
		}
		if cap(dst) < n {
			dst = make([]float64, n)
		}
		dst = dst[:n]
		for i, u := range us {
			dst[i] = (fx[i] + fx[n+i]) / (u * u)
		}
		return dst, nil
	}
}

type panel struct {
	a, b   float64
	value  float64
	abserr float64
}

// panelHeap is a max-heap on abserr.
type panelHeap []panel

func (h panelHeap) Len() int           { return len(h) }
func (h panelHeap) Less(i, j int) bool { return h[i].abserr > h[j].abserr }
func (h panelHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *panelHeap) Push(x any)        { *h = append(*h, x.(panel)) }
func (h *panelHeap) Pop() any {
	old := *h
	p := old[len(old)-1]
	*h = old[:len(old)-1]
	return p
}

func adapt(ctx context.Context, f Integrand, a, b float64, opts Options) (Result, error) {
	var (
		xs  = make([]float64, nodes)
		fx  = make([]float64, nodes)
		res Result
	)

	eval := func(a, b float64) (panel, error) {
		panelNodes(xs, a, b)
		var err error
		fx, err = f(fx, xs)
		if err != nil {
			return panel{}, err
		}
		res.Evaluations += nodes
		v, e := panelRule(fx, a, b)
		return panel{a: a, b: b, value: v, abserr: e}, nil
	}

	first, err := eval(a, b)
	if err != nil {
		return Result{}, err
	}
	h := &panelHeap{first}
	total, totalErr := first.value, first.abserr

	for {
		if totalErr <= math.Max(opts.AbsTol, opts.RelTol*math.Abs(total)) {
			res.Converged = true
			break
		}
		if math.IsNaN(total) || math.IsInf(total, 0) {
			res.Reason = ReasonNonFinite
			break
		}
		if h.Len() >= opts.MaxSubintervals {
			res.Reason = ReasonLimit
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		worst := heap.Pop(h).(panel)
		mid := 0.5 * (worst.a + worst.b)
		if mid <= worst.a || mid >= worst.b {
			heap.Push(h, worst)
			res.Reason = ReasonRoundoff
			break
		}
		left, err := eval(worst.a, mid)
		if err != nil {
			return Result{}, err
		}
		right, err := eval(mid, worst.b)
		if err != nil {
			return Result{}, err
		}
		heap.Push(h, left)
		heap.Push(h, right)

		total += left.value + right.value - worst.value
		totalErr += left.abserr + right.abserr - worst.abserr
	}

	// Re-sum to shed the drift of the incremental updates.
	res.Value, res.AbsError = 0, 0
	for _, p := range *h {
		res.Value += p.value
		res.AbsError += p.abserr
	}
	res.Subintervals = h.Len()
	return res, nil
}
