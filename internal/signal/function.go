package signal

import (
	"fmt"
	"math"

	"github.com/roach88/sigconv/internal/expr"
	"github.com/roach88/sigconv/internal/interval"
	"github.com/roach88/sigconv/internal/model"
)

// Function is a pure, real-valued function of one variable that is exactly
// zero outside Support.
type Function interface {
	// Eval writes the function value at each point of ts into dst
	// (allocated when nil or too short) and returns it.
	Eval(dst, ts []float64) ([]float64, error)

	// Support returns the interval outside which the function is zero.
	Support() interval.Interval
}

// Restricted is an expression masked by an interval.
// It is immutable and safe for concurrent use.
type Restricted struct {
	prog *expr.Program
	iv   interval.Interval
}

// Build parses src and restricts it to iv.
// Returns an expression error if src does not parse or references a
// symbol outside the builtin vocabulary.
func Build(src string, iv interval.Interval) (*Restricted, error) {
	prog, err := expr.Parse(src)
	if err != nil {
		return nil, model.NewExpressionError(fmt.Sprintf("cannot parse %q", src), err)
	}
	return &Restricted{prog: prog, iv: iv}, nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or with literal expressions known to be valid.
func MustBuild(src string, iv interval.Interval) *Restricted {
	f, err := Build(src, iv)
	if err != nil {
		panic(err)
	}
	return f
}

// Eval implements Function.
//
// The expression is evaluated over all of ts, then points outside the
// interval are overwritten with 0. A non-finite value at a point inside
// the interval is an expression error.
func (f *Restricted) Eval(dst, ts []float64) ([]float64, error) {
	dst = f.prog.Eval(dst, ts)
	f.iv.Mask(dst, ts)
	for i, v := range dst {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, model.NewExpressionError(
				fmt.Sprintf("%q evaluates to %g at t=%g inside %s", f.prog.Source(), v, ts[i], f.iv), nil)
		}
	}
	return dst, nil
}

// Support implements Function.
func (f *Restricted) Support() interval.Interval {
	return f.iv
}

// Source returns the expression text.
func (f *Restricted) Source() string {
	return f.prog.Source()
}

// Tree returns the parenthesized form of the parsed expression.
func (f *Restricted) Tree() string {
	return f.prog.String()
}

func (f *Restricted) String() string {
	return fmt.Sprintf("%s on %s", f.prog.Source(), f.iv)
}
