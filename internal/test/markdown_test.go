package test

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const sample = "# Arithmetic\n" +
	"\n" +
	"Plain code blocks are ignored:\n" +
	"\n" +
	"```\n" +
	"not a test\n" +
	"```\n" +
	"\n" +
	"## Test: addition\n" +
	"\n" +
	"```kaleido\n" +
	"1 + 2\n" +
	"```\n" +
	"\n" +
	"```ast\n" +
	"(def (proto \"\") (binary \"+\" 1 2))\n" +
	"```\n" +
	"\n" +
	"```diagnostics\n" +
	"parsed a top-level expr\n" +
	"```\n" +
	"\n" +
	"## Test: empty input\n" +
	"\n" +
	"```kaleido\n" +
	"```\n" +
	"\n" +
	"```diagnostics\n" +
	"```\n"

func TestExtractTestCases(t *testing.T) {
	cases, err := ExtractTestCases([]byte(sample))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	add := cases[0]
	be.Equal(t, add.Name, "addition")
	be.Equal(t, add.Input, "1 + 2\n")
	be.Equal(t, len(add.Assertions), 2)
	be.Equal(t, add.Assertions[0].Type, AssertionAST)
	be.Equal(t, add.Assertions[0].Content, "(def (proto \"\") (binary \"+\" 1 2))")
	be.Equal(t, add.Assertions[1].Type, AssertionDiagnostics)
	be.Equal(t, add.Assertions[1].Lines(), []string{"parsed a top-level expr"})

	empty := cases[1]
	be.Equal(t, empty.Name, "empty input")
	be.Equal(t, empty.Input, "")
	be.True(t, empty.HasInput)
	be.Equal(t, len(empty.Assertions[0].Lines()), 0)
}

func TestExtractTestCasesErrors(t *testing.T) {
	cases := []struct {
		name     string
		markdown string
		contains string
	}{
		{
			"fence outside test",
			"```kaleido\n1\n```\n",
			"outside of test case",
		},
		{
			"unknown fence",
			"## Test: x\n\n```kaleido\n1\n```\n\n```python\nprint()\n```\n",
			"unknown fence language 'python'",
		},
		{
			"no assertions",
			"## Test: x\n\n```kaleido\n1\n```\n",
			"has no assertion fences",
		},
		{
			"no input",
			"## Test: x\n\n```ast\n1\n```\n",
			"has no input fence",
		},
		{
			"two inputs",
			"## Test: x\n\n```kaleido\n1\n```\n\n```kaleido\n2\n```\n",
			"multiple input fences",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ExtractTestCases([]byte(c.markdown))
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), c.contains))
		})
	}
}

func TestGetRandomExpr(t *testing.T) {
	for i := 0; i < 20; i++ {
		expr := GetRandomExpr(5, "x")
		be.True(t, strings.Count(expr, "(") == strings.Count(expr, ")"))
		be.True(t, len(strings.Fields(expr)) >= 11)
	}
}
