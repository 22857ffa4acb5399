package expr

import (
	"fmt"
	"math"
)

// Program is a parsed expression ready for evaluation.
type Program struct {
	source   string
	variable string
	root     Node
}

// Source returns the text the program was parsed from.
func (p *Program) Source() string { return p.source }

// Variable returns the free variable name.
func (p *Program) Variable() string { return p.variable }

// Root returns the expression tree.
func (p *Program) Root() Node { return p.root }

// String returns the fully parenthesized form of the expression.
func (p *Program) String() string { return p.root.String() }

// Eval evaluates the program at every point of ts and writes the results
// into dst, which is allocated when nil or too short. The returned slice
// always has len(ts) elements; constant expressions are broadcast.
func (p *Program) Eval(dst, ts []float64) []float64 {
	if cap(dst) < len(ts) {
		dst = make([]float64, len(ts))
	}
	dst = dst[:len(ts)]
	v := evalNode(p.root, ts)
	if v.vec == nil {
		for i := range dst {
			dst[i] = v.scalar
		}
		return dst
	}
	copy(dst, v.vec)
	return dst
}

// At evaluates the program at a single point.
func (p *Program) At(t float64) float64 {
	var buf [1]float64
	return p.Eval(buf[:0], []float64{t})[0]
}

// value is either a scalar (vec == nil) or one value per sample point.
type value struct {
	scalar float64
	vec    []float64
}

func (v value) at(i int) float64 {
	if v.vec == nil {
		return v.scalar
	}
	return v.vec[i]
}

func evalNode(n Node, ts []float64) value {
	switch n := n.(type) {
	case *Number:
		return value{scalar: n.Value}
	case *Var:
		return value{vec: ts}
	case *Unary:
		x := evalNode(n.X, ts)
		return apply1(unaryOp(n.Op), x, len(ts))
	case *Binary:
		l := evalNode(n.L, ts)
		r := evalNode(n.R, ts)
		return apply2(binaryOp(n.Op), l, r, len(ts))
	case *Call:
		fn := builtins[n.Fn]
		args := make([]value, len(n.Args))
		for i, a := range n.Args {
			args[i] = evalNode(a, ts)
		}
		switch {
		case fn.f1 != nil:
			return apply1(fn.f1, args[0], len(ts))
		case fn.f2 != nil:
			return apply2(fn.f2, args[0], args[1], len(ts))
		default:
			return apply3(fn.f3, args[0], args[1], args[2], len(ts))
		}
	default:
		panic(fmt.Sprintf("expr: unhandled node %T", n))
	}
}

func apply1(f func(float64) float64, x value, n int) value {
	if x.vec == nil {
		return value{scalar: f(x.scalar)}
	}
	out := make([]float64, n)
	for i, xi := range x.vec {
		out[i] = f(xi)
	}
	return value{vec: out}
}

func apply2(f func(float64, float64) float64, x, y value, n int) value {
	if x.vec == nil && y.vec == nil {
		return value{scalar: f(x.scalar, y.scalar)}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = f(x.at(i), y.at(i))
	}
	return value{vec: out}
}

func apply3(f func(float64, float64, float64) float64, x, y, z value, n int) value {
	if x.vec == nil && y.vec == nil && z.vec == nil {
		return value{scalar: f(x.scalar, y.scalar, z.scalar)}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = f(x.at(i), y.at(i), z.at(i))
	}
	return value{vec: out}
}

func unaryOp(op string) func(float64) float64 {
	switch op {
	case "-":
		return func(x float64) float64 { return -x }
	case "+":
		return func(x float64) float64 { return x }
	case "!":
		return func(x float64) float64 { return boolf(!truthy(x)) }
	default:
		panic("expr: unhandled unary operator " + op)
	}
}

func binaryOp(op string) func(float64, float64) float64 {
	switch op {
	case "+":
		return func(a, b float64) float64 { return a + b }
	case "-":
		return func(a, b float64) float64 { return a - b }
	case "*":
		return func(a, b float64) float64 { return a * b }
	case "/":
		return func(a, b float64) float64 { return a / b }
	case "%":
		return math.Mod
	case "**":
		return math.Pow
	case "<":
		return func(a, b float64) float64 { return boolf(a < b) }
	case "<=":
		return func(a, b float64) float64 { return boolf(a <= b) }
	case ">":
		return func(a, b float64) float64 { return boolf(a > b) }
	case ">=":
		return func(a, b float64) float64 { return boolf(a >= b) }
	case "==":
		return func(a, b float64) float64 { return boolf(a == b) }
	case "!=":
		return func(a, b float64) float64 { return boolf(a != b) }
	case "&":
		return func(a, b float64) float64 { return boolf(truthy(a) && truthy(b)) }
	case "|":
		return func(a, b float64) float64 { return boolf(truthy(a) || truthy(b)) }
	default:
		panic("expr: unhandled binary operator " + op)
	}
}
