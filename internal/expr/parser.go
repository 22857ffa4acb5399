package expr

import (
	"fmt"
	"strings"
)

// DefaultVariable is the free variable name used by Parse.
const DefaultVariable = "t"

// Parse parses src with t as the free variable.
func Parse(src string) (*Program, error) {
	return ParseWithVariable(src, DefaultVariable)
}

// ParseWithVariable parses src with the given free variable name.
// The returned Program is immutable and safe for concurrent use.
func ParseWithVariable(src, variable string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, variable: variable}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s %q", tok.kind, tok.text)}
	}
	return &Program{source: src, variable: variable, root: root}, nil
}

type parser struct {
	toks     []token
	i        int
	variable string
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

// acceptOp consumes the next token if it is one of ops.
func (p *parser) acceptOp(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			p.i++
			return op, true
		}
	}
	return "", false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected %s, found %s %q", kind, tok.kind, tok.text)}
	}
	return tok, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("|", "||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "|", L: left, R: right}
	}
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&", "&&"); !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "&", L: left, R: right}
	}
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("<", "<=", ">", ">=", "==", "!=")
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind == tokOp && isComparison(tok.text) {
		return nil, &SyntaxError{Pos: tok.pos, Msg: "chained comparisons need parentheses or &"}
	}
	return &Binary{Op: op, L: left, R: right}, nil
}

func isComparison(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	}
	return false
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if op, ok := p.acceptOp("-", "+", "!", "~"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "~" {
			op = "!"
		}
		return &Unary{Op: op, X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("**", "^"); ok {
		// The exponent may carry its own sign: 2**-t.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: "**", L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &Number{Value: tok.num}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		return p.resolveName(tok)
	default:
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s %q", tok.kind, tok.text)}
	}
}

func (p *parser) resolveName(tok token) (Node, error) {
	if tok.text == p.variable {
		return &Var{Name: tok.text}, nil
	}
	name := strings.TrimPrefix(tok.text, "np.")
	if v, ok := constants[name]; ok {
		return &Number{Value: v, Name: name}, nil
	}
	if _, ok := builtins[name]; ok {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("function %s must be called with parentheses", name)}
	}
	return nil, &SymbolError{Pos: tok.pos, Name: tok.text, Kind: "symbol"}
}

func (p *parser) parseCall(nameTok token) (Node, error) {
	name := strings.TrimPrefix(nameTok.text, "np.")
	fn, ok := builtins[name]
	if !ok {
		return nil, &SymbolError{Pos: nameTok.pos, Name: nameTok.text, Kind: "function"}
	}
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	var args []Node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	if len(args) < fn.minArgs || len(args) > fn.maxArgs {
		return nil, &ArityError{Pos: nameTok.pos, Fn: name, Want: fn.arity(), Got: len(args)}
	}
	for i := len(args); i < fn.maxArgs; i++ {
		args = append(args, &Number{Value: fn.defaults[i-fn.minArgs]})
	}
	return &Call{Fn: name, Args: args}, nil
}
