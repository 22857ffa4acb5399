package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigconv/internal/interval"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/signal"
)

func mustSample(t *testing.T, src string, iv interval.Interval, xmin, xmax float64, n int) model.Signal {
	t.Helper()
	f, err := signal.Build(src, iv)
	require.NoError(t, err)
	s, err := signal.Sample(f, xmin, xmax, n)
	require.NoError(t, err)
	return s
}

func mustBounded(t *testing.T, x1, x2 float64) interval.Interval {
	t.Helper()
	iv, err := interval.Bounded(x1, x2)
	require.NoError(t, err)
	return iv
}

func TestDiscrete_AxisAlignment(t *testing.T) {
	a := mustSample(t, "exp(-t**2)", interval.Unbounded(), -2, 3, 51)
	b := mustSample(t, "1", interval.Unbounded(), 1, 2, 11)

	res, err := Discrete(a, b)
	require.NoError(t, err)

	n := a.Len() + b.Len() - 1
	require.Len(t, res.Axis, n)
	require.Len(t, res.Values, n)
	assert.Equal(t, model.MethodDiscrete, res.Method)
	assert.InDelta(t, a.First()+b.First(), res.Axis[0], 1e-12)
	assert.Equal(t, a.Last()+b.Last(), res.Axis[n-1])
	for i := 1; i < n; i++ {
		assert.InDelta(t, a.Step(), res.Axis[i]-res.Axis[i-1], 1e-9)
	}
}

func TestDiscrete_ScalesByStep(t *testing.T) {
	// Two constant-1 signals of length 5 at dt = 0.25: a triangular ramp of
	// overlap counts times dt. Forgetting dt would give the bare counts.
	a := mustSample(t, "1", interval.Unbounded(), 0, 1, 5)
	b := mustSample(t, "1", interval.Unbounded(), 0, 1, 5)

	res, err := Discrete(a, b)
	require.NoError(t, err)

	want := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	for i := range want {
		want[i] *= 0.25
	}
	assert.InDeltaSlice(t, want, res.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}, res.Axis, 1e-12)
}

func TestDiscrete_Commutative(t *testing.T) {
	a := mustSample(t, "sin(3*t) * exp(-t**2)", interval.Unbounded(), -4, 4, 201)
	right, err := interval.RightBounded(0)
	require.NoError(t, err)
	b := mustSample(t, "exp(-t)", right, -1, 3, 101)

	ab, err := Discrete(a, b)
	require.NoError(t, err)
	ba, err := Discrete(b, a)
	require.NoError(t, err)

	assert.InDeltaSlice(t, ab.Values, ba.Values, 1e-12)
	assert.InDeltaSlice(t, ab.Axis, ba.Axis, 1e-12)
}

func TestDiscrete_IncompatibleGrid(t *testing.T) {
	a := mustSample(t, "1", interval.Unbounded(), 0, 1, 11)
	b := mustSample(t, "1", interval.Unbounded(), 0, 1, 21)

	_, err := Discrete(a, b)
	require.Error(t, err)
	assert.True(t, model.IsIncompatibleGridError(err))
}

func TestDiscrete_ToleratesRoundingInStep(t *testing.T) {
	// Same dt reached from different spans.
	a := mustSample(t, "1", interval.Unbounded(), 0.1, 0.4, 4)
	b := mustSample(t, "1", interval.Unbounded(), -0.2, 0.1, 4)

	_, err := Discrete(a, b)
	assert.NoError(t, err)
}

func TestDiscrete_GaussianTimesRectangle(t *testing.T) {
	// f = exp(-t²) everywhere, g = 1 on [-0.5, 0.5], sampled on [-5, 5].
	f := mustSample(t, "exp(-t**2)", interval.Unbounded(), -5, 5, 1000)
	g := mustSample(t, "1", mustBounded(t, -0.5, 0.5), -5, 5, 1000)

	res, err := Discrete(f, g)
	require.NoError(t, err)

	idx, at, peak := res.Peak()
	assert.Equal(t, 999, idx)
	assert.InDelta(t, 0, at, 1e-9)
	// ∫_{-1/2}^{1/2} exp(-τ²) dτ = √π·erf(1/2)
	assert.InDelta(t, math.Sqrt(math.Pi)*math.Erf(0.5), peak, 1e-2)

	// Far from the rectangle the result vanishes.
	assert.InDelta(t, 0, res.Values[0], 1e-12)
	assert.InDelta(t, 0, res.Values[len(res.Values)-1], 1e-12)
}

func TestDiscrete_TooShort(t *testing.T) {
	_, err := Discrete(model.Signal{Grid: []float64{0}, Values: []float64{1}}, model.Signal{})
	assert.True(t, model.IsParameterError(err))
}

func TestOutputAxis(t *testing.T) {
	a := mustSample(t, "1", interval.Unbounded(), -1, 1, 5)
	b := mustSample(t, "1", interval.Unbounded(), 0, 2, 5)

	axis, err := OutputAxis(a, b, 0)
	require.NoError(t, err)
	assert.Len(t, axis, 9)
	assert.Equal(t, -1.0, axis[0])
	assert.Equal(t, 3.0, axis[8])

	axis, err = OutputAxis(a, b, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1, 3}, axis)

	_, err = OutputAxis(a, b, 1)
	assert.True(t, model.IsParameterError(err))
}

func TestMaxAbsDiff(t *testing.T) {
	a := model.Result{Axis: []float64{0, 1, 2}, Values: []float64{1, 2, 3}}
	b := model.Result{Axis: []float64{0, 1, 2}, Values: []float64{1, 2.5, 2.9}}
	d, err := MaxAbsDiff(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-15)

	_, err = MaxAbsDiff(a, model.Result{})
	assert.Error(t, err)
}
