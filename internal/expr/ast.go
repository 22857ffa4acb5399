package expr

import (
	"strconv"
	"strings"
)

// Node is an expression tree node. The set of node types is closed:
// Number, Var, Unary, Binary and Call.
type Node interface {
	String() string
	node()
}

// Number is a numeric literal or a named constant folded to its value.
type Number struct {
	Value float64
	Name  string // constant name, "" for literals
}

// Var is a reference to the free variable.
type Var struct {
	Name string
}

// Unary is a prefix operator applied to X.
type Unary struct {
	Op string
	X  Node
}

// Binary is an infix operator.
type Binary struct {
	Op   string
	L, R Node
}

// Call is an application of a function from the builtin table.
type Call struct {
	Fn   string
	Args []Node
}

func (*Number) node() {}
func (*Var) node()    {}
func (*Unary) node()  {}
func (*Binary) node() {}
func (*Call) node()   {}

func (n *Number) String() string {
	if n.Name != "" {
		return n.Name
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (v *Var) String() string { return v.Name }

func (u *Unary) String() string { return "(" + u.Op + u.X.String() + ")" }

func (b *Binary) String() string {
	return "(" + b.L.String() + " " + b.Op + " " + b.R.String() + ")"
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Fn + "(" + strings.Join(args, ", ") + ")"
}
