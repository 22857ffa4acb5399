package interval

import (
	"fmt"
	"math"

	"github.com/roach88/sigconv/internal/model"
)

// Kind tags the interval variant.
type Kind string

const (
	// KindUnbounded is active on (-∞, +∞).
	KindUnbounded Kind = "unbounded"

	// KindLeftBounded is active on (-∞, x2].
	KindLeftBounded Kind = "left-bounded"

	// KindRightBounded is active on [x1, +∞).
	KindRightBounded Kind = "right-bounded"

	// KindBounded is active on [x1, x2].
	KindBounded Kind = "bounded"
)

// Kinds lists every interval kind in display order.
var Kinds = []Kind{KindUnbounded, KindLeftBounded, KindRightBounded, KindBounded}

// ParseKind converts a kind name to a Kind. An empty name means unbounded.
// Unknown names are a parameter error, never a silent fallback.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindUnbounded, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", model.NewParameterError("kind", fmt.Sprintf("unknown interval kind %q (want one of %v)", s, Kinds))
}

// NeedsX1 reports whether the kind requires a lower bound.
func (k Kind) NeedsX1() bool {
	return k == KindRightBounded || k == KindBounded
}

// NeedsX2 reports whether the kind requires an upper bound.
func (k Kind) NeedsX2() bool {
	return k == KindLeftBounded || k == KindBounded
}

// Interval describes where a function is active. Construct it with
// Unbounded, LeftBounded, RightBounded, Bounded or Parse; the fields are
// unexported so every value satisfies x1 <= x2.
type Interval struct {
	kind Kind
	x1   float64
	x2   float64
}

// Unbounded returns the interval active everywhere.
func Unbounded() Interval {
	return Interval{kind: KindUnbounded}
}

// LeftBounded returns the interval active on (-∞, x2].
func LeftBounded(x2 float64) (Interval, error) {
	if err := checkBound("x2", x2); err != nil {
		return Interval{}, err
	}
	return Interval{kind: KindLeftBounded, x2: x2}, nil
}

// RightBounded returns the interval active on [x1, +∞).
func RightBounded(x1 float64) (Interval, error) {
	if err := checkBound("x1", x1); err != nil {
		return Interval{}, err
	}
	return Interval{kind: KindRightBounded, x1: x1}, nil
}

// Bounded returns the interval active on [x1, x2].
// Returns a parameter error if x1 > x2.
func Bounded(x1, x2 float64) (Interval, error) {
	if err := checkBound("x1", x1); err != nil {
		return Interval{}, err
	}
	if err := checkBound("x2", x2); err != nil {
		return Interval{}, err
	}
	if x1 > x2 {
		return Interval{}, model.NewParameterError("x1", fmt.Sprintf("lower bound %g exceeds upper bound %g", x1, x2))
	}
	return Interval{kind: KindBounded, x1: x1, x2: x2}, nil
}

func checkBound(field string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return model.NewParameterError(field, fmt.Sprintf("bound must be finite, got %g", x))
	}
	return nil
}

// Kind returns the interval variant. The zero Interval reports KindUnbounded.
func (iv Interval) Kind() Kind {
	if iv.kind == "" {
		return KindUnbounded
	}
	return iv.kind
}

// Lo returns the lower end of the active set (-Inf when unbounded below).
func (iv Interval) Lo() float64 {
	switch iv.Kind() {
	case KindRightBounded, KindBounded:
		return iv.x1
	default:
		return math.Inf(-1)
	}
}

// Hi returns the upper end of the active set (+Inf when unbounded above).
func (iv Interval) Hi() float64 {
	switch iv.Kind() {
	case KindLeftBounded, KindBounded:
		return iv.x2
	default:
		return math.Inf(1)
	}
}

// Contains reports whether t is in the active set. NaN is never contained.
func (iv Interval) Contains(t float64) bool {
	switch iv.Kind() {
	case KindUnbounded:
		return !math.IsNaN(t)
	case KindLeftBounded:
		return t <= iv.x2
	case KindRightBounded:
		return t >= iv.x1
	case KindBounded:
		return t >= iv.x1 && t <= iv.x2
	default:
		panic(fmt.Sprintf("interval: unhandled kind %q", iv.kind))
	}
}

// Active applies Contains element-wise, writing into dst (allocated when
// nil or too short) and returning it.
func (iv Interval) Active(dst []bool, ts []float64) []bool {
	if cap(dst) < len(ts) {
		dst = make([]bool, len(ts))
	}
	dst = dst[:len(ts)]
	for i, t := range ts {
		dst[i] = iv.Contains(t)
	}
	return dst
}

// Mask overwrites values[i] with exactly 0 wherever ts[i] is outside the
// interval. Values inside are left untouched, including non-finite ones.
func (iv Interval) Mask(values, ts []float64) {
	if iv.Kind() == KindUnbounded {
		return
	}
	for i, t := range ts {
		if !iv.Contains(t) {
			values[i] = 0
		}
	}
}

// Intersect returns the overlap [lo, hi] of iv with the closed range
// [lo0, hi0] (either end may be infinite). ok is false if they are disjoint.
func (iv Interval) Intersect(lo0, hi0 float64) (lo, hi float64, ok bool) {
	lo = math.Max(iv.Lo(), lo0)
	hi = math.Min(iv.Hi(), hi0)
	return lo, hi, lo <= hi
}

// Reflect returns the active set of τ ↦ t−τ, that is {t−s : s ∈ iv},
// as a closed range with possibly infinite ends.
func (iv Interval) Reflect(t float64) (lo, hi float64) {
	return t - iv.Hi(), t - iv.Lo()
}

// String renders the interval in mathematical notation.
func (iv Interval) String() string {
	switch iv.Kind() {
	case KindLeftBounded:
		return fmt.Sprintf("(-inf, %g]", iv.x2)
	case KindRightBounded:
		return fmt.Sprintf("[%g, +inf)", iv.x1)
	case KindBounded:
		return fmt.Sprintf("[%g, %g]", iv.x1, iv.x2)
	default:
		return "(-inf, +inf)"
	}
}
