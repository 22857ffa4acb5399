// Package model holds the value types shared by every sigconv package:
// sampled signals, convolution results, integration warnings and the typed
// error taxonomy.
//
// model imports nothing internal. Signals and results are produced once and
// never mutated afterwards, so they may be shared between goroutines freely.
package model
