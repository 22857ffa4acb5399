package expr

import (
	"fmt"
	"math"
	"sort"
)

// builtin is one entry of the function table. Exactly one of f1, f2, f3 is
// set, matching maxArgs. Omitted trailing arguments take their value from
// defaults.
type builtin struct {
	minArgs, maxArgs int
	defaults         []float64
	f1               func(x float64) float64
	f2               func(x, y float64) float64
	f3               func(x, y, z float64) float64
}

func (b builtin) arity() string {
	if b.minArgs == b.maxArgs {
		return fmt.Sprint(b.minArgs)
	}
	return fmt.Sprintf("%d-%d", b.minArgs, b.maxArgs)
}

var builtins = map[string]builtin{
	"sin":   {minArgs: 1, maxArgs: 1, f1: math.Sin},
	"cos":   {minArgs: 1, maxArgs: 1, f1: math.Cos},
	"tan":   {minArgs: 1, maxArgs: 1, f1: math.Tan},
	"asin":  {minArgs: 1, maxArgs: 1, f1: math.Asin},
	"acos":  {minArgs: 1, maxArgs: 1, f1: math.Acos},
	"atan":  {minArgs: 1, maxArgs: 1, f1: math.Atan},
	"sinh":  {minArgs: 1, maxArgs: 1, f1: math.Sinh},
	"cosh":  {minArgs: 1, maxArgs: 1, f1: math.Cosh},
	"tanh":  {minArgs: 1, maxArgs: 1, f1: math.Tanh},
	"exp":   {minArgs: 1, maxArgs: 1, f1: math.Exp},
	"log":   {minArgs: 1, maxArgs: 1, f1: math.Log},
	"log10": {minArgs: 1, maxArgs: 1, f1: math.Log10},
	"log2":  {minArgs: 1, maxArgs: 1, f1: math.Log2},
	"sqrt":  {minArgs: 1, maxArgs: 1, f1: math.Sqrt},
	"abs":   {minArgs: 1, maxArgs: 1, f1: math.Abs},
	"sign":  {minArgs: 1, maxArgs: 1, f1: sign},
	"sinc":  {minArgs: 1, maxArgs: 1, f1: sinc},
	"floor": {minArgs: 1, maxArgs: 1, f1: math.Floor},
	"ceil":  {minArgs: 1, maxArgs: 1, f1: math.Ceil},
	"round": {minArgs: 1, maxArgs: 1, f1: math.RoundToEven},
	"pow":   {minArgs: 2, maxArgs: 2, f2: math.Pow},
	"atan2": {minArgs: 2, maxArgs: 2, f2: math.Atan2},
	"min":   {minArgs: 2, maxArgs: 2, f2: math.Min},
	"max":   {minArgs: 2, maxArgs: 2, f2: math.Max},
	"mod":   {minArgs: 2, maxArgs: 2, f2: math.Mod},
	"where": {minArgs: 3, maxArgs: 3, f3: where},
	// heaviside(x) steps to 1 at x = 0; heaviside(x, h0) uses h0 there.
	"heaviside": {minArgs: 1, maxArgs: 2, defaults: []float64{1}, f2: heaviside},
}

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"inf": math.Inf(1),
}

// Functions returns the sorted names of all builtin functions.
func Functions() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constants returns the sorted names of all builtin constants.
func Constants() []string {
	names := make([]string, 0, len(constants))
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	default:
		return math.NaN()
	}
}

// sinc is the normalized sinc, sin(πx)/(πx), with sinc(0) = 1.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func where(c, a, b float64) float64 {
	if truthy(c) {
		return a
	}
	return b
}

func heaviside(x, h0 float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return 0
	case x == 0:
		return h0
	default:
		return math.NaN()
	}
}

// truthy treats any non-zero, non-NaN value as true.
func truthy(x float64) bool {
	return x != 0 && !math.IsNaN(x)
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
