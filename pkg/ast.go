package kaleido

import (
	"strconv"
	"strings"
)

// Expr is a closed set of expression nodes. Each child is owned by exactly
// one parent and nodes are not modified after the parser builds them.
type Expr interface {
	String() string
	exprNode()
}

type NumberExpr struct {
	Value float64
}

type VariableExpr struct {
	Name string
}

type BinaryExpr struct {
	Op  rune
	LHS Expr
	RHS Expr
}

type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*NumberExpr) exprNode()   {}
func (*VariableExpr) exprNode() {}
func (*BinaryExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}

// Prototype is a function signature. An empty name with no parameters wraps
// an anonymous top-level expression.
type Prototype struct {
	Name   string
	Params []string
}

func (p *Prototype) IsAnonymous() bool {
	return p.Name == ""
}

type Function struct {
	Proto *Prototype
	Body  Expr
}

// The String methods render nodes as S-expressions, e.g.
// (binary "+" 1 (call "f" (var "x"))).

func (e *NumberExpr) String() string {
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

func (e *VariableExpr) String() string {
	return "(var " + strconv.Quote(e.Name) + ")"
}

func (e *BinaryExpr) String() string {
	return "(binary " + strconv.Quote(string(e.Op)) + " " + e.LHS.String() + " " + e.RHS.String() + ")"
}

func (e *CallExpr) String() string {
	var str strings.Builder
	str.WriteString("(call ")
	str.WriteString(strconv.Quote(e.Callee))

	for _, arg := range e.Args {
		str.WriteString(" ")
		str.WriteString(arg.String())
	}
	str.WriteString(")")

	return str.String()
}

func (p *Prototype) String() string {
	var str strings.Builder
	str.WriteString("(proto ")
	str.WriteString(strconv.Quote(p.Name))

	for _, param := range p.Params {
		str.WriteString(" ")
		str.WriteString(strconv.Quote(param))
	}
	str.WriteString(")")

	return str.String()
}

func (f *Function) String() string {
	return "(def " + f.Proto.String() + " " + f.Body.String() + ")"
}
