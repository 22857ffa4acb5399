// Package engine executes convolution requests.
//
// A request is parsed into a plan, both signals are sampled on the shared
// grid, and the requested methods run:
//
//   - discrete: the dt-scaled full convolution of the two sample vectors
//   - continuous: adaptive quadrature of the convolution integral at every
//     point of the output axis, fanned out over a bounded worker pool
//   - both: each of the above on the same axis, plus max |discrete -
//     continuous|
//
// Executions share nothing. With a store attached every request becomes a
// run, successful or not, identified by a run id from the RunIDGenerator
// (UUIDv7 in production, fixed ids in tests) and keyed by the request's
// content hash.
package engine
