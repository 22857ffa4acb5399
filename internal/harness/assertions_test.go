package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/model"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// triangleOutcome is a discrete-only outcome on the axis -2..2 step 0.5.
func triangleOutcome() *engine.Outcome {
	res := model.Result{
		Method: model.MethodDiscrete,
		Axis:   []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2},
		Values: []float64{0, 0, 0.5, 1, 1.5, 1, 0.5, 0, 0},
	}
	return &engine.Outcome{Method: model.MethodDiscrete, Discrete: &res}
}

// bothOutcome adds a continuous triangle with one warning.
func bothOutcome() *engine.Outcome {
	out := triangleOutcome()
	cont := model.Result{
		Method: model.MethodContinuous,
		Axis:   out.Discrete.Axis,
		Values: []float64{0, 0, 0, 0.5, 1, 0.5, 0, 0, 0},
		Warnings: []model.IntegrationWarning{
			{Index: 4, T: 0, Value: 1, Reason: "limit"},
		},
	}
	diff := 0.5
	out.Method = model.MethodBoth
	out.Continuous = &cont
	out.MaxAbsDiff = &diff
	return out
}

func TestEvaluateAssertions_Passing(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertLength, Count: intp(9)},
		{Type: AssertAxisStart, Value: f64(-2)},
		{Type: AssertAxisEnd, Value: f64(2)},
		{Type: AssertPeakAt, T: f64(0)},
		{Type: AssertPeakValue, Value: f64(1.5)},
		{Type: AssertValueAt, T: f64(-1), Value: f64(0.5)},
		{Type: AssertValueAt, T: f64(0.6), Value: f64(1)}, // nearest is 0.5
		{Type: AssertMaxWarnings, Count: intp(0)},
	}

	errs := EvaluateAssertions(triangleOutcome(), assertions, nil)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failing(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"length", Assertion{Type: AssertLength, Count: intp(10)}, "10 output points"},
		{"axis start", Assertion{Type: AssertAxisStart, Value: f64(-3)}, "axis start -3"},
		{"axis end", Assertion{Type: AssertAxisEnd, Value: f64(3)}, "axis end 3"},
		{"peak at", Assertion{Type: AssertPeakAt, T: f64(1)}, "peak time 1"},
		{"peak value", Assertion{Type: AssertPeakValue, Value: f64(2)}, "peak value 2"},
		{"value at", Assertion{Type: AssertValueAt, T: f64(0), Value: f64(1)}, "value at t=0"},
		{"value off axis", Assertion{Type: AssertValueAt, T: f64(5), Value: f64(0)}, "axis spans [-2, 2]"},
		{"continuous missing", Assertion{Type: AssertPeakAt, T: f64(0), Method: "continuous"}, "request ran method discrete"},
		{"agree needs both", Assertion{Type: AssertMethodsAgree, Tolerance: 1}, "method both"},
		{"commutes needs runner", Assertion{Type: AssertCommutes, Tolerance: 1}, "swapped runner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(triangleOutcome(), []Assertion{tt.assertion}, nil)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_Tolerance(t *testing.T) {
	errs := EvaluateAssertions(triangleOutcome(), []Assertion{
		{Type: AssertPeakValue, Value: f64(1.4), Tolerance: 0.2},
	}, nil)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_MethodSelection(t *testing.T) {
	out := bothOutcome()

	// Primary result is continuous
	errs := EvaluateAssertions(out, []Assertion{
		{Type: AssertPeakValue, Value: f64(1)},
		{Type: AssertPeakValue, Value: f64(1.5), Method: "discrete"},
		{Type: AssertPeakValue, Value: f64(1), Method: "continuous"},
	}, nil)
	assert.Empty(t, errs)

	errs = EvaluateAssertions(out, []Assertion{
		{Type: AssertMaxWarnings, Count: intp(0)},
		{Type: AssertMaxWarnings, Count: intp(0), Method: "discrete"},
	}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "1 integration warnings")
}

func TestEvaluateAssertions_MethodsAgree(t *testing.T) {
	out := bothOutcome()

	assert.Empty(t, EvaluateAssertions(out, []Assertion{{Type: AssertMethodsAgree, Tolerance: 0.5}}, nil))

	errs := EvaluateAssertions(out, []Assertion{{Type: AssertMethodsAgree, Tolerance: 0.1}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "max |discrete - continuous| = 0.5")
}

func TestEvaluateAssertions_Commutes(t *testing.T) {
	same := &AssertionContext{
		Swapped: func(ctx context.Context) (*engine.Outcome, error) {
			return triangleOutcome(), nil
		},
	}
	assert.Empty(t, EvaluateAssertions(triangleOutcome(), []Assertion{{Type: AssertCommutes, Tolerance: 1e-12}}, same))

	shifted := &AssertionContext{
		Swapped: func(ctx context.Context) (*engine.Outcome, error) {
			out := triangleOutcome()
			out.Discrete.Values[4] = 1.25
			return out, nil
		},
	}
	errs := EvaluateAssertions(triangleOutcome(), []Assertion{{Type: AssertCommutes, Tolerance: 1e-12}}, shifted)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "max |f*g - g*f| = 0.25")

	failing := &AssertionContext{
		Swapped: func(ctx context.Context) (*engine.Outcome, error) {
			return nil, errors.New("boom")
		},
	}
	errs = EvaluateAssertions(triangleOutcome(), []Assertion{{Type: AssertCommutes, Tolerance: 1}}, failing)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "swapped request failed: boom")
}

func TestEvaluateAssertions_ReportsInOrder(t *testing.T) {
	errs := EvaluateAssertions(triangleOutcome(), []Assertion{
		{Type: AssertLength, Count: intp(1)},
		{Type: AssertLength, Count: intp(9)},
		{Type: AssertAxisEnd, Value: f64(0)},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertion 0 (length)")
	assert.Contains(t, errs[1], "assertion 2 (axis_end)")
}

func TestNearestIndex(t *testing.T) {
	axis := []float64{0, 1, 2, 3}

	tests := []struct {
		t    float64
		want int
	}{
		{0, 0},
		{-0.4, 0},
		{0.4, 0},
		{0.6, 1},
		{2.5, 2}, // ties go left
		{3.49, 3},
	}
	for _, tt := range tests {
		got, err := nearestIndex(axis, tt.t)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "t=%g", tt.t)
	}

	_, err := nearestIndex(axis, -0.6)
	assert.Error(t, err)
	_, err = nearestIndex(axis, 3.6)
	assert.Error(t, err)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "peak_at", Expected: "peak time 0", Actual: "peak time 1"}
	assert.Equal(t, "Assertion failed: peak_at\n  Expected: peak time 0\n  Actual: peak time 1", err.Error())
}
