package kaleido

import (
	"fmt"
	"strconv"
)

type TokenType uint64

const (
	TokenError TokenType = iota
	TokenEOF
	TokenDef
	TokenExtern
	TokenIdentifier
	TokenNumber

	// TokenChar is any other single character; Value holds it.
	TokenChar
)

var tokenNames = map[TokenType]string{
	TokenError:      "Error",
	TokenEOF:        "EOF",
	TokenDef:        "Def",
	TokenExtern:     "Extern",
	TokenIdentifier: "Identifier",
	TokenNumber:     "Number",
	TokenChar:       "Char",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "TokenType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

var keywordTable = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
}

type Location struct {
	Filename string
	Line     int
	Col      int
}

func (l *Location) String() string {
	if l == nil {
		return "<unknown>"
	}

	if l.Filename == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}

	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Col)
}

type Token struct {
	Typ   TokenType
	Value string
	Num   float64
	Loc   *Location
}

// Char returns the raw character of a TokenChar, or 0 for every other token.
func (t Token) Char() rune {
	if t.Typ != TokenChar {
		return 0
	}

	for _, r := range t.Value {
		return r
	}

	return 0
}

func (t Token) is(r rune) bool {
	return t.Typ == TokenChar && t.Char() == r
}

func (t Token) String() string {
	switch t.Typ {
	case TokenNumber, TokenIdentifier, TokenChar, TokenError:
		return fmt.Sprintf("%s(%q)", t.Typ, t.Value)
	default:
		return t.Typ.String()
	}
}
