package test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the language of the fence holding a test's source.
const InputFence = "kaleido"

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	// AssertionAST lists the S-expression of every parsed construct, one per
	// line.
	AssertionAST AssertionType = "ast"

	// AssertionDiagnostics lists the diagnostic lines, one per line.
	AssertionDiagnostics AssertionType = "diagnostics"

	// AssertionIR lists lines that must appear, in order, in the module.
	AssertionIR AssertionType = "ir"

	// AssertionOutput is the exact output of evaluating the input.
	AssertionOutput AssertionType = "output"
)

type Assertion struct {
	Type    AssertionType
	Content string
	Line    int
}

// Lines returns the non-blank lines of the assertion.
func (a Assertion) Lines() []string {
	var lines []string
	for _, line := range strings.Split(a.Content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

type TestCase struct {
	Name       string
	Input      string
	HasInput   bool
	Line       int
	Assertions []Assertion
}

// ExtractTestCases reads the test cases of a Markdown document. Every heading
// of the form "Test: <name>" starts a case, which is made of one kaleido
// fence and at least one assertion fence.
func ExtractTestCases(markdown []byte) ([]TestCase, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}

			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}

			current = &TestCase{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, markdown),
			}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)

			if current == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, lang)
				}

				return ast.WalkContinue, nil
			}

			content := fenceContent(n, markdown)
			switch {
			case lang == InputFence:
				if current.HasInput {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = content
				current.HasInput = true
			case isAssertion(lang):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(lang),
					Content: strings.TrimRight(content, "\n"),
					Line:    line,
				})
			case lang != "":
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown: %w", err)
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}

	return cases, nil
}

func isAssertion(lang string) bool {
	switch AssertionType(lang) {
	case AssertionAST, AssertionDiagnostics, AssertionIR, AssertionOutput:
		return true
	}

	return false
}

// validate allows an empty input fence, which is how end-of-input is tested.
func validate(tc *TestCase) error {
	if !tc.HasInput {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}

	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}

	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}

		return ast.WalkContinue, nil
	})

	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}

	return bytes.Count(source[:node.Lines().At(0).Start], []byte("\n")) + 1
}
