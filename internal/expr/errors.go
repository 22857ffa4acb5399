package expr

import "fmt"

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// SymbolError reports a reference to a name outside the allowed vocabulary.
type SymbolError struct {
	Pos  int
	Name string
	Kind string // "symbol" or "function"
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("undefined %s %q at offset %d", e.Kind, e.Name, e.Pos)
}

// ArityError reports a builtin called with the wrong number of arguments.
type ArityError struct {
	Pos  int
	Fn   string
	Want string
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %s argument(s), got %d (offset %d)", e.Fn, e.Want, e.Got, e.Pos)
}
