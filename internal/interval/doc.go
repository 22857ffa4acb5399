// Package interval implements the domain restriction attached to every
// signal: the closed set of interval kinds, the element-wise active
// predicate, and parsing of interval bounds from text.
//
// An Interval is immutable. The zero value is Unbounded.
package interval
