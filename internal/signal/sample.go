package signal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/sigconv/internal/model"
)

// Grid returns n uniformly spaced points from xmin to xmax inclusive.
// Returns a parameter error unless xmin < xmax, both are finite and n >= 2.
func Grid(xmin, xmax float64, n int) ([]float64, error) {
	if math.IsNaN(xmin) || math.IsInf(xmin, 0) {
		return nil, model.NewParameterError("xmin", fmt.Sprintf("must be finite, got %g", xmin))
	}
	if math.IsNaN(xmax) || math.IsInf(xmax, 0) {
		return nil, model.NewParameterError("xmax", fmt.Sprintf("must be finite, got %g", xmax))
	}
	if xmin >= xmax {
		return nil, model.NewParameterError("xmin", fmt.Sprintf("xmin (%g) must be less than xmax (%g)", xmin, xmax))
	}
	if n < 2 {
		return nil, model.NewParameterError("n", fmt.Sprintf("need at least 2 points, got %d", n))
	}
	grid := floats.Span(make([]float64, n), xmin, xmax)
	// l + i*step can round below u; the last point must be xmax exactly.
	grid[n-1] = xmax
	return grid, nil
}

// Sample evaluates fn once over the n-point grid spanning [xmin, xmax].
func Sample(fn Function, xmin, xmax float64, n int) (model.Signal, error) {
	grid, err := Grid(xmin, xmax, n)
	if err != nil {
		return model.Signal{}, err
	}
	values, err := fn.Eval(nil, grid)
	if err != nil {
		return model.Signal{}, err
	}
	return model.Signal{Grid: grid, Values: values}, nil
}
