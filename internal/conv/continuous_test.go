package conv

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigconv/internal/interval"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/quad"
	"github.com/roach88/sigconv/internal/signal"
)

func mustBuild(t *testing.T, src string, iv interval.Interval) *signal.Restricted {
	t.Helper()
	f, err := signal.Build(src, iv)
	require.NoError(t, err)
	return f
}

func TestContinuous_RectangleTimesRectangle(t *testing.T) {
	box := mustBounded(t, -0.5, 0.5)
	f := mustBuild(t, "1", box)
	g := mustBuild(t, "1", box)

	axis := []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2}
	res, err := Continuous(context.Background(), f, g, axis, Options{})
	require.NoError(t, err)

	assert.Equal(t, model.MethodContinuous, res.Method)
	assert.Equal(t, axis, res.Axis)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.5, 1, 0.5, 0, 0, 0}, res.Values, 1e-12)
	assert.Empty(t, res.Warnings)
}

func TestContinuous_CausalExponentials(t *testing.T) {
	right, err := interval.RightBounded(0)
	require.NoError(t, err)
	f := mustBuild(t, "exp(-t)", right)
	g := mustBuild(t, "exp(-t)", right)

	axis := []float64{-1, 0.5, 1, 2, 4}
	res, err := Continuous(context.Background(), f, g, axis, Options{})
	require.NoError(t, err)

	for i, x := range axis {
		want := 0.0
		if x > 0 {
			want = x * math.Exp(-x)
		}
		assert.InDelta(t, want, res.Values[i], 1e-9, "t=%g", x)
	}
}

func TestContinuous_GaussiansOverWholeLine(t *testing.T) {
	f := mustBuild(t, "exp(-t**2)", interval.Unbounded())
	g := mustBuild(t, "exp(-t**2)", interval.Unbounded())

	axis := []float64{-3, -1, 0, 0.7, 2.5}
	res, err := Continuous(context.Background(), f, g, axis, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	for i, x := range axis {
		want := math.Sqrt(math.Pi/2) * math.Exp(-x*x/2)
		assert.InDelta(t, want, res.Values[i], 1e-7, "t=%g", x)
	}
}

func TestContinuous_AgreesWithDiscrete(t *testing.T) {
	fs := mustSample(t, "exp(-t**2)", interval.Unbounded(), -5, 5, 1001)
	gs := mustSample(t, "exp(-2*(t-0.5)**2)", interval.Unbounded(), -5, 5, 1001)
	disc, err := Discrete(fs, gs)
	require.NoError(t, err)

	// Compare on every 100th point of the discrete axis.
	var axis, want []float64
	for i := 0; i < disc.Len(); i += 100 {
		axis = append(axis, disc.Axis[i])
		want = append(want, disc.Values[i])
	}

	f := mustBuild(t, "exp(-t**2)", interval.Unbounded())
	g := mustBuild(t, "exp(-2*(t-0.5)**2)", interval.Unbounded())
	cont, err := Continuous(context.Background(), f, g, axis, Options{Workers: 4})
	require.NoError(t, err)

	for i := range axis {
		if math.Abs(want[i]) < 1e-3 {
			assert.InDelta(t, want[i], cont.Values[i], 1e-5, "t=%g", axis[i])
			continue
		}
		rel := math.Abs(cont.Values[i]-want[i]) / math.Abs(want[i])
		assert.Less(t, rel, 1e-2, "t=%g", axis[i])
	}
}

func TestContinuous_EmptySupportIsExactZero(t *testing.T) {
	f := mustBuild(t, "log(t)", mustBounded(t, 1, 2))
	g := mustBuild(t, "1", mustBounded(t, 0, 1))

	// supp(f*g) = [1, 3]; log(t) is never evaluated outside [1, 2].
	res, err := Continuous(context.Background(), f, g, []float64{-5, 0.5, 1, 2, 3, 10}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, res.Values[:3])
	assert.InDelta(t, 2*math.Ln2-1, res.Values[3], 1e-10)
	assert.Equal(t, []float64{0, 0}, res.Values[4:])
}

func TestContinuous_NonConvergenceWarnsAndContinues(t *testing.T) {
	// ∫ 1·1 dτ over the whole line diverges at every point.
	f := mustBuild(t, "1", interval.Unbounded())
	g := mustBuild(t, "1", interval.Unbounded())
	box := mustBuild(t, "1", mustBounded(t, 0, 1))

	axis := []float64{-1, 0, 1}
	res, err := Continuous(context.Background(), f, g, axis, Options{Quad: quad.Options{MaxSubintervals: 10}})
	require.NoError(t, err)
	require.Len(t, res.Values, 3)
	require.Len(t, res.Warnings, 3)
	for i, w := range res.Warnings {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, axis[i], w.T)
		assert.Equal(t, res.Values[i], w.Value)
		assert.Equal(t, quad.ReasonLimit, w.Reason)
		assert.Greater(t, w.Evaluations, 0)
	}

	// A well-posed pair on the same axis produces no warnings.
	res, err = Continuous(context.Background(), box, box, axis, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.InDeltaSlice(t, []float64{0, 0, 1}, res.Values, 1e-12)
}

func TestContinuous_ExpressionErrorPropagates(t *testing.T) {
	f := mustBuild(t, "log(t)", interval.Unbounded())
	g := mustBuild(t, "exp(-t**2)", interval.Unbounded())

	_, err := Continuous(context.Background(), f, g, []float64{0, 1}, Options{})
	require.Error(t, err)
	assert.True(t, model.IsExpressionError(err))
}

func TestContinuous_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := mustBuild(t, "exp(-t**2)", interval.Unbounded())
	_, err := Continuous(ctx, f, f, []float64{0, 1, 2}, Options{})
	require.Error(t, err)
	assert.True(t, model.IsCancelled(err))
}

func TestContinuous_OrderIndependentOfWorkers(t *testing.T) {
	right, _ := interval.RightBounded(0)
	f := mustBuild(t, "sin(3*t) * exp(-t)", right)
	g := mustBuild(t, "exp(-t**2)", interval.Unbounded())

	axis, err := linspace(-2, 6, 33)
	require.NoError(t, err)

	serial, err := Continuous(context.Background(), f, g, axis, Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := Continuous(context.Background(), f, g, axis, Options{Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, serial.Values, parallel.Values)
}

func TestContinuous_InvalidAxis(t *testing.T) {
	f := mustBuild(t, "1", interval.Unbounded())

	_, err := Continuous(context.Background(), f, f, nil, Options{})
	assert.True(t, model.IsParameterError(err))

	_, err = Continuous(context.Background(), f, f, []float64{0, math.NaN()}, Options{})
	assert.True(t, model.IsParameterError(err))
}
