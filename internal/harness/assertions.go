package harness

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/sigconv/internal/conv"
	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/model"
)

// defaultTolerance applies when an assertion does not set one.
const defaultTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides what assertions need beyond the outcome itself.
type AssertionContext struct {
	Ctx context.Context

	// Swapped executes the same request with f and g exchanged.
	// Required by commutes; nil disables it.
	Swapped func(ctx context.Context) (*engine.Outcome, error)
}

// EvaluateAssertions runs every assertion against the outcome and returns
// the failure messages, in assertion order.
func EvaluateAssertions(out *engine.Outcome, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(out, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(out *engine.Outcome, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertMethodsAgree:
		return assertMethodsAgree(out, a)
	case AssertCommutes:
		return assertCommutes(out, a, actx)
	}

	res, err := selectResult(out, a.Method)
	if err != nil {
		return err
	}

	switch a.Type {
	case AssertLength:
		return assertLength(res, a)
	case AssertAxisStart:
		return assertNumber(a.Type, "axis start", res.Axis[0], *a.Value, tolerance(a))
	case AssertAxisEnd:
		return assertNumber(a.Type, "axis end", res.Axis[res.Len()-1], *a.Value, tolerance(a))
	case AssertPeakAt:
		_, t, _ := res.Peak()
		return assertNumber(a.Type, "peak time", t, *a.T, tolerance(a))
	case AssertPeakValue:
		_, _, v := res.Peak()
		return assertNumber(a.Type, "peak value", v, *a.Value, tolerance(a))
	case AssertValueAt:
		return assertValueAt(res, a)
	case AssertMaxWarnings:
		return assertMaxWarnings(res, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// selectResult picks the result an assertion looks at.
func selectResult(out *engine.Outcome, method string) (model.Result, error) {
	var res *model.Result
	switch model.Method(method) {
	case "":
		r := out.Result()
		res = &r
	case model.MethodDiscrete:
		res = out.Discrete
	case model.MethodContinuous:
		res = out.Continuous
	}
	if res == nil || res.Len() == 0 {
		return model.Result{}, &AssertionError{
			Type:     "result",
			Expected: fmt.Sprintf("a %s result", method),
			Actual:   fmt.Sprintf("request ran method %s", out.Method),
		}
	}
	return *res, nil
}

func tolerance(a Assertion) float64 {
	if a.Tolerance == 0 {
		return defaultTolerance
	}
	return a.Tolerance
}

func assertNumber(typ, what string, got, want, tol float64) error {
	if math.Abs(got-want) <= tol {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s %g (±%g)", what, want, tol),
		Actual:   fmt.Sprintf("%s %g", what, got),
	}
}

func assertLength(res model.Result, a Assertion) error {
	if res.Len() != *a.Count {
		return &AssertionError{
			Type:     AssertLength,
			Expected: fmt.Sprintf("%d output points", *a.Count),
			Actual:   fmt.Sprintf("%d output points", res.Len()),
		}
	}
	return nil
}

// assertValueAt compares the output at the axis point nearest to a.T.
// a.T must lie within half a step of some axis point.
func assertValueAt(res model.Result, a Assertion) error {
	idx, err := nearestIndex(res.Axis, *a.T)
	if err != nil {
		return &AssertionError{
			Type:     AssertValueAt,
			Expected: fmt.Sprintf("t=%g on the output axis", *a.T),
			Actual:   err.Error(),
		}
	}
	return assertNumber(AssertValueAt, fmt.Sprintf("value at t=%g", res.Axis[idx]), res.Values[idx], *a.Value, tolerance(a))
}

func nearestIndex(axis []float64, t float64) (int, error) {
	n := len(axis)
	if n < 2 {
		return 0, fmt.Errorf("axis has %d points", n)
	}
	half := (axis[n-1] - axis[0]) / float64(n-1) / 2
	if t < axis[0]-half || t > axis[n-1]+half {
		return 0, fmt.Errorf("axis spans [%g, %g]", axis[0], axis[n-1])
	}

	i := sort.SearchFloat64s(axis, t)
	switch {
	case i == 0:
		return 0, nil
	case i == n:
		return n - 1, nil
	case t-axis[i-1] <= axis[i]-t:
		return i - 1, nil
	default:
		return i, nil
	}
}

func assertMaxWarnings(res model.Result, a Assertion) error {
	if len(res.Warnings) > *a.Count {
		return &AssertionError{
			Type:     AssertMaxWarnings,
			Expected: fmt.Sprintf("at most %d integration warnings", *a.Count),
			Actual:   fmt.Sprintf("%d integration warnings", len(res.Warnings)),
		}
	}
	return nil
}

func assertMethodsAgree(out *engine.Outcome, a Assertion) error {
	if out.MaxAbsDiff == nil {
		return &AssertionError{
			Type:     AssertMethodsAgree,
			Expected: "method both",
			Actual:   fmt.Sprintf("method %s", out.Method),
		}
	}
	if *out.MaxAbsDiff > a.Tolerance {
		return &AssertionError{
			Type:     AssertMethodsAgree,
			Expected: fmt.Sprintf("max |discrete - continuous| <= %g", a.Tolerance),
			Actual:   fmt.Sprintf("max |discrete - continuous| = %g", *out.MaxAbsDiff),
		}
	}
	return nil
}

// assertCommutes checks f*g against g*f on the same axis.
func assertCommutes(out *engine.Outcome, a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Swapped == nil {
		return fmt.Errorf("commutes needs a swapped runner")
	}
	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	swapped, err := actx.Swapped(ctx)
	if err != nil {
		return fmt.Errorf("swapped request failed: %w", err)
	}

	d, err := conv.MaxAbsDiff(out.Result(), swapped.Result())
	if err != nil {
		return err
	}
	if d > a.Tolerance {
		return &AssertionError{
			Type:     AssertCommutes,
			Expected: fmt.Sprintf("max |f*g - g*f| <= %g", a.Tolerance),
			Actual:   fmt.Sprintf("max |f*g - g*f| = %g", d),
		}
	}
	return nil
}
