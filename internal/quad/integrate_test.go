package quad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate/quad"
)

// scalar lifts a scalar function to an Integrand.
func scalar(f func(float64) float64) Integrand {
	return func(dst, xs []float64) ([]float64, error) {
		if cap(dst) < len(xs) {
			dst = make([]float64, len(xs))
		}
		dst = dst[:len(xs)]
		for i, x := range xs {
			dst[i] = f(x)
		}
		return dst, nil
	}
}

func TestIntegrate_KnownIntegrals(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"x squared", func(x float64) float64 { return x * x }, 0, 1, 1.0 / 3},
		{"sin over half period", math.Sin, 0, math.Pi, 2},
		{"gaussian whole line", func(x float64) float64 { return math.Exp(-x * x) }, -inf, inf, math.Sqrt(math.Pi)},
		{"decay right half-line", func(x float64) float64 { return math.Exp(-x) }, 0, inf, 1},
		{"growth left half-line", math.Exp, -inf, 0, 1},
		{"shifted gaussian", func(x float64) float64 { return math.Exp(-(x - 3) * (x - 3)) }, -inf, inf, math.Sqrt(math.Pi)},
		{"lorentzian", func(x float64) float64 { return 1 / (1 + x*x) }, -inf, inf, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Integrate(context.Background(), scalar(tt.f), tt.a, tt.b, Options{})
			require.NoError(t, err)
			assert.True(t, r.Converged, "reason: %s", r.Reason)
			assert.InDelta(t, tt.want, r.Value, 1e-7)
			assert.LessOrEqual(t, r.AbsError, 1e-6)
			assert.Greater(t, r.Evaluations, 0)
			assert.Equal(t, 0, r.Evaluations%nodes)
		})
	}
}

func TestIntegrate_AgreesWithFixedLegendre(t *testing.T) {
	f := func(x float64) float64 { return math.Cos(3*x) * math.Exp(-x/2) }
	want := quad.Fixed(f, -1, 2, 40, quad.Legendre{}, 0)

	r, err := Integrate(context.Background(), scalar(f), -1, 2, Options{})
	require.NoError(t, err)
	assert.InDelta(t, want, r.Value, 1e-9)
}

func TestIntegrate_ReversedAndEmpty(t *testing.T) {
	f := scalar(func(x float64) float64 { return x })

	r, err := Integrate(context.Background(), f, 1, 0, Options{})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, r.Value, 1e-12)

	r, err = Integrate(context.Background(), f, 2, 2, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Value)
	assert.True(t, r.Converged)
	assert.Equal(t, 0, r.Evaluations)
}

func TestIntegrate_DivergentReportsBestEstimate(t *testing.T) {
	one := scalar(func(float64) float64 { return 1 })

	r, err := Integrate(context.Background(), one, 0, math.Inf(1), Options{MaxSubintervals: 20})
	require.NoError(t, err)
	assert.False(t, r.Converged)
	assert.Equal(t, ReasonLimit, r.Reason)
	assert.Equal(t, 20, r.Subintervals)
	assert.Greater(t, r.AbsError, 1.0)
}

func TestIntegrate_IntegrandErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	f := func(dst, xs []float64) ([]float64, error) { return nil, boom }

	_, err := Integrate(context.Background(), f, 0, 1, Options{})
	assert.ErrorIs(t, err, boom)
}

func TestIntegrate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	one := scalar(func(float64) float64 { return 1 })
	_, err := Integrate(ctx, one, 0, math.Inf(1), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIntegrate_NaNBound(t *testing.T) {
	_, err := Integrate(context.Background(), scalar(math.Sin), math.NaN(), 1, Options{})
	assert.Error(t, err)
}

func TestPanelRule_ExactForLowDegree(t *testing.T) {
	// The Kronrod rule integrates polynomials up to degree 22 exactly.
	xs := make([]float64, nodes)
	fx := make([]float64, nodes)
	panelNodes(xs, -1, 3)
	for i, x := range xs {
		fx[i] = math.Pow(x, 5)
	}
	v, _ := panelRule(fx, -1, 3)
	assert.InDelta(t, (math.Pow(3, 6)-1)/6, v, 1e-10)
}
