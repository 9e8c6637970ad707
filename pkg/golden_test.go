package kaleido

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.kaleido.dev/internal/test"
)

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*_test.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)

		cases, err := test.ExtractTestCases(data)
		require.NoError(t, err, file)

		for _, tc := range cases {
			t.Run(filepath.Base(file)+"/"+tc.Name, func(t *testing.T) {
				for _, a := range tc.Assertions {
					checkAssertion(t, file, tc, a)
				}
			})
		}
	}
}

func checkAssertion(t *testing.T, file string, tc test.TestCase, a test.Assertion) {
	t.Helper()
	where := file + ":" + strconv.Itoa(a.Line)

	switch a.Type {
	case test.AssertionAST:
		_, _, out := runSession(tc.Input, Options{ParseOnly: true, DumpAST: true})
		assert.Equal(t, a.Lines(), splitLines(out), where)
	case test.AssertionDiagnostics:
		_, diag, _ := runSession(tc.Input, Options{Eval: hasOutput(tc)})
		assert.Equal(t, a.Lines(), diag, where)
	case test.AssertionOutput:
		_, _, out := runSession(tc.Input, Options{Eval: true})
		assert.Equal(t, a.Content, strings.TrimRight(out, "\n"), where)
	case test.AssertionIR:
		s, _, _ := runSession(tc.Input, Options{})
		assertLinesInOrder(t, a.Lines(), s.Module().String(), where)
	default:
		t.Fatalf("%s: unhandled assertion %s", where, a.Type)
	}
}

func hasOutput(tc test.TestCase) bool {
	for _, a := range tc.Assertions {
		if a.Type == test.AssertionOutput {
			return true
		}
	}

	return false
}

// assertLinesInOrder checks that every expected line, trimmed, matches a line
// of the module in the given order. Other module lines may come in between.
func assertLinesInOrder(t *testing.T, expect []string, module string, where string) {
	t.Helper()

	got := strings.Split(module, "\n")
	i := 0
	for _, line := range expect {
		line = strings.TrimSpace(line)
		for i < len(got) && strings.TrimSpace(got[i]) != line {
			i++
		}

		if i == len(got) {
			assert.Failf(t, "missing IR line", "%s: %q not found in order in\n%s", where, line, module)
			return
		}
		i++
	}
}
