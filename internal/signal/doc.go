// Package signal builds restricted functions from an expression and an
// interval, and samples them on uniform grids.
//
// A restricted function evaluates its expression over the whole input
// first and then zeroes every point outside its interval, so values the
// expression produces where it is undefined (log(t) for t <= 0, 1/t at 0)
// never leak into the output.
package signal
