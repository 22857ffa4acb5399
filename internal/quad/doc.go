// Package quad implements globally adaptive Gauss–Kronrod quadrature.
//
// Integrate accepts finite, half-infinite and infinite ranges. Infinite
// ends are mapped onto [0, 1] with x = a + (1-u)/u, and the doubly
// infinite case folds both halves into one integrand. Each panel uses the
// 7-point Gauss / 15-point Kronrod pair; the panel with the largest error
// estimate is bisected until the global estimate meets the tolerance or
// the subdivision limit is reached.
//
// Failing to converge is not an error: the Result carries the best
// estimate, its error bound and Converged=false, and the caller decides
// how to report it. Errors are returned only when the integrand itself
// fails or the context is done.
package quad
