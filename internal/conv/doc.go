// Package conv computes the convolution (f*g)(t) = ∫ f(τ)·g(t−τ) dτ of two
// signals by two independent methods.
//
// Discrete convolves two sampled Signals: the full linear convolution of
// their values scaled by the shared step dt, which is the Riemann-sum
// approximation of the integral. Its time axis runs from A.grid[0]+B.grid[0]
// to A.grid[-1]+B.grid[-1] with len(A)+len(B)-1 points.
//
// Continuous evaluates the integral independently at every point of an
// output axis with adaptive quadrature applied to the restricted functions
// themselves. The integration range is narrowed to supp(f) ∩ (t − supp(g)),
// outside of which the integrand is exactly zero. Points are computed in
// parallel; a point that misses the tolerance keeps its best estimate and
// is reported as an IntegrationWarning instead of failing the request.
//
// OutputAxis derives the axis used by both methods from the input grids,
// so results of the two methods line up point for point.
package conv
