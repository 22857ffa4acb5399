package interval

import (
	"strconv"
	"strings"

	"github.com/roach88/sigconv/internal/model"
)

// Parse builds an Interval from its text form as entered by a user.
//
// kind selects the variant. x1 and x2 are consulted only when the variant
// needs them; a required bound that is blank is a parameter error, one that
// is not a number is a parse error. Bounds the variant does not use are
// ignored.
func Parse(kind, x1, x2 string) (Interval, error) {
	k, err := ParseKind(strings.TrimSpace(kind))
	if err != nil {
		return Interval{}, err
	}

	var lo, hi float64
	if k.NeedsX1() {
		if lo, err = ParseBound("x1", x1, k); err != nil {
			return Interval{}, err
		}
	}
	if k.NeedsX2() {
		if hi, err = ParseBound("x2", x2, k); err != nil {
			return Interval{}, err
		}
	}

	switch k {
	case KindUnbounded:
		return Unbounded(), nil
	case KindLeftBounded:
		return LeftBounded(hi)
	case KindRightBounded:
		return RightBounded(lo)
	case KindBounded:
		return Bounded(lo, hi)
	default:
		return Interval{}, model.NewParameterError("kind", "unhandled interval kind "+string(k))
	}
}

// ParseBound parses one required bound.
func ParseBound(field, text string, k Kind) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, model.NewParameterError(field, "required by "+string(k)+" interval but missing")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, model.NewParseError(field, text, err)
	}
	return v, nil
}
