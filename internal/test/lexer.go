package test

import (
	"math/rand"
	"strings"
)

const validTokens = "def;extern;foo;bar;x;y;(;);,;+;-;*;<;1;2.5;0.125;42;# comment\n;\n"

// GetRandomTokens returns size source fragments joined by spaces. The result
// always lexes but seldom parses.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}

var operators = []string{"+", "-", "*", "<"}

// GetRandomExpr returns a well formed expression with the given number of
// binary operators over numbers, variables from vars and parentheses.
func GetRandomExpr(ops int, vars ...string) string {
	var str strings.Builder
	str.WriteString(randomOperand(vars))

	for i := 0; i < ops; i++ {
		str.WriteString(" ")
		str.WriteString(operators[rand.Intn(len(operators))])
		str.WriteString(" ")

		if rand.Intn(4) == 0 {
			str.WriteString("(")
			str.WriteString(randomOperand(vars))
			str.WriteString(" + ")
			str.WriteString(randomOperand(vars))
			str.WriteString(")")
			continue
		}

		str.WriteString(randomOperand(vars))
	}

	return str.String()
}

func randomOperand(vars []string) string {
	if len(vars) != 0 && rand.Intn(2) == 0 {
		return vars[rand.Intn(len(vars))]
	}

	return []string{"1", "2", "3", "0.5", "10"}[rand.Intn(5)]
}
