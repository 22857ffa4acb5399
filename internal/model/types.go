package model

import (
	"fmt"
	"math"
)

// Signal is a function sampled on a uniform grid.
//
// Grid is strictly increasing with constant spacing; Values[i] is the
// function value at Grid[i]. Both slices have the same length (at least 2).
type Signal struct {
	Grid   []float64 `json:"grid"`
	Values []float64 `json:"values"`
}

// Len returns the number of samples.
func (s Signal) Len() int {
	return len(s.Grid)
}

// Step returns the sampling step dt.
// Returns 0 for signals with fewer than two samples.
func (s Signal) Step() float64 {
	if len(s.Grid) < 2 {
		return 0
	}
	return (s.Grid[len(s.Grid)-1] - s.Grid[0]) / float64(len(s.Grid)-1)
}

// First returns the first grid point.
func (s Signal) First() float64 {
	return s.Grid[0]
}

// Last returns the last grid point.
func (s Signal) Last() float64 {
	return s.Grid[len(s.Grid)-1]
}

// Result is the output of a convolution: values on a strictly increasing
// time axis, plus any non-fatal integration warnings.
type Result struct {
	Method   Method               `json:"method"`
	Axis     []float64            `json:"time_axis"`
	Values   []float64            `json:"values"`
	Warnings []IntegrationWarning `json:"warnings,omitempty"`
}

// Len returns the number of output points.
func (r Result) Len() int {
	return len(r.Axis)
}

// Peak returns the index, time and value of the largest output value.
// Returns index -1 for an empty result.
func (r Result) Peak() (idx int, t, v float64) {
	idx = -1
	v = math.Inf(-1)
	for i, y := range r.Values {
		if y > v {
			idx, v = i, y
		}
	}
	if idx < 0 {
		return -1, 0, 0
	}
	return idx, r.Axis[idx], v
}

// Method selects the convolution algorithm.
type Method string

const (
	// MethodDiscrete is the dt-scaled linear convolution of sampled signals.
	MethodDiscrete Method = "discrete"

	// MethodContinuous integrates f(τ)·g(t−τ) with adaptive quadrature.
	MethodContinuous Method = "continuous"

	// MethodBoth runs both engines on the same axis.
	MethodBoth Method = "both"
)

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodDiscrete, MethodContinuous, MethodBoth:
		return Method(s), nil
	case "":
		return MethodDiscrete, nil
	default:
		return "", NewParameterError("method", fmt.Sprintf("unknown method %q (want discrete, continuous or both)", s))
	}
}

// IntegrationWarning reports an output point whose quadrature did not reach
// the requested tolerance. Value holds the best estimate, which is kept in
// the result.
type IntegrationWarning struct {
	Index       int     `json:"index"`
	T           float64 `json:"t"`
	Value       float64 `json:"value"`
	AbsError    float64 `json:"abs_error"`
	Evaluations int     `json:"evaluations"`
	Reason      string  `json:"reason"`
}

func (w IntegrationWarning) String() string {
	return fmt.Sprintf("point %d (t=%g): %s, estimate %g ± %g after %d evaluations",
		w.Index, w.T, w.Reason, w.Value, w.AbsError, w.Evaluations)
}
