package conv

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/sigconv/internal/model"
)

// StepTolerance is the relative tolerance within which two sampling steps
// are considered equal.
const StepTolerance = 1e-9

// Discrete returns the dt-scaled full linear convolution of a and b:
//
//	y[k] = dt · Σ_i a[i]·b[k−i]
//
// Both signals must share the same sampling step.
func Discrete(a, b model.Signal) (model.Result, error) {
	start := time.Now()

	if a.Len() < 2 || b.Len() < 2 {
		return model.Result{}, model.NewParameterError("signal", "signals need at least 2 samples")
	}
	dtA, dtB := a.Step(), b.Step()
	if !sameStep(dtA, dtB) {
		return model.Result{}, model.NewIncompatibleGridError(dtA, dtB)
	}

	axis, err := OutputAxis(a, b, 0)
	if err != nil {
		return model.Result{}, err
	}

	m := b.Len()
	y := make([]float64, a.Len()+m-1)
	for i, ai := range a.Values {
		if ai == 0 {
			continue
		}
		floats.AddScaled(y[i:i+m], ai, b.Values)
	}
	floats.Scale(dtA, y)

	convolutionDuration.WithLabelValues(string(model.MethodDiscrete)).Observe(time.Since(start).Seconds())
	return model.Result{Method: model.MethodDiscrete, Axis: axis, Values: y}, nil
}

func sameStep(a, b float64) bool {
	return math.Abs(a-b) <= StepTolerance*math.Max(math.Abs(a), math.Abs(b))
}
