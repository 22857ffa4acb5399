package conv

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/sigconv/internal/model"
)

// OutputAxis returns the n-point axis spanning a.First()+b.First() to
// a.Last()+b.Last(). n <= 0 selects len(a)+len(b)-1, the discrete axis.
func OutputAxis(a, b model.Signal, n int) ([]float64, error) {
	if a.Len() < 2 || b.Len() < 2 {
		return nil, model.NewParameterError("signal", "signals need at least 2 samples")
	}
	if n <= 0 {
		n = a.Len() + b.Len() - 1
	}
	return linspace(a.First()+b.First(), a.Last()+b.Last(), n)
}

// linspace returns n evenly spaced points from lo to hi inclusive.
func linspace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, model.NewParameterError("points", fmt.Sprintf("output axis needs at least 2 points, got %d", n))
	}
	if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, model.NewParameterError("points", fmt.Sprintf("invalid axis span [%g, %g]", lo, hi))
	}
	axis := floats.Span(make([]float64, n), lo, hi)
	axis[n-1] = hi
	return axis, nil
}

// MaxAbsDiff returns the largest pointwise difference between two results
// on the same axis.
func MaxAbsDiff(a, b model.Result) (float64, error) {
	if a.Len() != b.Len() {
		return 0, fmt.Errorf("results differ in length (%d vs %d)", a.Len(), b.Len())
	}
	if a.Len() == 0 {
		return 0, nil
	}
	return floats.Distance(a.Values, b.Values, math.Inf(1)), nil
}
