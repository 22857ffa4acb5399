// Package harness runs convolution scenarios described in YAML.
//
// A scenario names a request (optionally built on a catalog example), then
// either expects the request to fail with a given error code or asserts
// numeric properties of the result: output length, axis ends, peak
// location and value, values at given times, warning counts, agreement of
// the two methods, and commutativity.
//
// Each scenario runs against a fresh in-memory store with a fixed run id,
// so the recorded run and the golden summary are reproducible:
//
//	name: rect_rect
//	description: "Two unit boxes give a triangle"
//	request:
//	  f: {expr: "1", interval: {kind: bounded, x1: "-0.5", x2: "0.5"}}
//	  g: {expr: "1", interval: {kind: bounded, x1: "-0.5", x2: "0.5"}}
//	  domain: {xmin: "-1", xmax: "1", n: "5"}
//	assertions:
//	  - type: peak_value
//	    value: 1.5
//
// Summaries are compared against testdata/golden/<name>.golden with goldie.
package harness
