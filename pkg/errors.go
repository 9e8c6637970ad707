package kaleido

import (
	"fmt"

	"github.com/pkg/errors"
)

// Syntax errors.
var (
	ErrUnknownToken         = errors.New("unknown token when expecting an expression")
	ErrExpectedArgListDelim = errors.New("expected ')' or ',' in arg list")
	ErrExpectedCloseParen   = errors.New("expected ')'")
	ErrExpectedFuncName     = errors.New("expected function name in prototype")
	ErrExpectedOpenParen    = errors.New("expected '(' in prototype")
	ErrExpectedProtoClose   = errors.New("expected ')' in prototype")
)

// Code generation errors.
var (
	ErrUnknownVariable = errors.New("unknown variable name")
	ErrInvalidBinaryOp = errors.New("invalid binary operator")
	ErrUnknownFunction = errors.New("unknown function referenced")
	ErrArgCount        = errors.New("incorrect number of args passed")
	ErrRedefinition    = errors.New("function cannot be redefined")
	ErrDuplicateParam  = errors.New("duplicate parameter name")
	ErrSignature       = errors.New("function redeclared with a different number of args")
)

type CompileError interface {
	error
	fmt.Stringer
}

// ParseError is reported by the parser. Error returns only the message of
// the wrapped kind; String adds the location.
type ParseError struct {
	Loc *Location
	Tok Token
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) String() string {
	return fmt.Sprintf("%s syntax error: %s (got %s)", e.Loc, e.Err, e.Tok)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CodegenError is reported while lowering to IR. Name is the variable,
// function or operator the error is about.
type CodegenError struct {
	Name string
	Err  error
}

func (e *CodegenError) Error() string {
	return e.Err.Error()
}

func (e *CodegenError) String() string {
	if e.Name == "" {
		return fmt.Sprintf("codegen error: %s", e.Err)
	}

	return fmt.Sprintf("codegen error: %s: %s", e.Err, e.Name)
}

func (e *CodegenError) Unwrap() error {
	return e.Err
}
