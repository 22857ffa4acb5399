// Package request defines the immutable input of one convolution.
//
// A Request holds every user-supplied field as text, exactly as it was typed
// or written in a request file. Parse turns it into a Plan whose numbers,
// intervals and expressions have been validated; failures carry the dotted
// path of the offending field ("f.interval.x1", "domain.n").
//
// Requests are read from YAML or CUE files, or taken from the embedded
// catalog of worked examples.
package request
