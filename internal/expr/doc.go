// Package expr parses and evaluates the scalar formulas that define signals.
//
// The grammar is small and closed: numbers, the free variable t, the
// constants pi, e and inf, arithmetic and comparison operators, boolean
// combinators and a fixed table of numeric functions. Anything else is
// rejected at parse time, so evaluating a Program can never reach outside
// that vocabulary.
//
// Precedence, lowest first:
//
//	|  ||               logical or
//	&  &&               logical and
//	< <= > >= == !=     comparison (non-associative)
//	+ -                 additive
//	* / %               multiplicative
//	- + ! ~             unary prefix
//	** ^                power (right-associative, binds tighter than unary minus)
//
// Booleans are represented as 1 and 0. Evaluation is element-wise over a
// slice of sample points; domain errors such as log of a negative number
// produce NaN or ±Inf rather than failing, and it is up to the caller to
// decide where non-finite values are acceptable.
//
// Function and constant names may carry an optional "np." prefix so that
// formulas written for array libraries (np.exp(-t**2)) parse unchanged.
package expr
