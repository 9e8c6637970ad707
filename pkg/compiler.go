package kaleido

import (
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
)

type Options struct {
	// Precedence of the binary operators; nil selects DefaultPrecedence.
	Precedence PrecedenceTable

	// ParseOnly skips code generation.
	ParseOnly bool

	// DumpAST prints the S-expression of every parsed construct.
	DumpAST bool

	// EmitIR prints every function and extern as soon as it is lowered.
	EmitIR bool

	// Eval evaluates top-level expressions after lowering them.
	Eval bool

	// Diagnostics receives one line per top-level construct and per error.
	// Defaults to os.Stderr.
	Diagnostics io.Writer

	// Output receives IR, evaluation results and builtin output. Defaults to
	// os.Stdout.
	Output io.Writer
}

type Result struct {
	Module *ir.Module
	Errors []error
}

type Compiler struct {
	opts Options
}

func NewCompiler(opts Options) *Compiler {
	if opts.Diagnostics == nil {
		opts.Diagnostics = os.Stderr
	}

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Compiler{opts: opts}
}

func (c *Compiler) Compile(filename string) (*Result, error) {
	lexer, err := NewLexerFromFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return c.compile(NewParser(lexer, c.opts.Precedence)), nil
}

func (c *Compiler) CompileFromReader(reader io.Reader) *Result {
	lexer := NewLexer(reader)
	return c.compile(NewParser(lexer, c.opts.Precedence))
}

func (c *Compiler) compile(p *Parser) *Result {
	s := NewSession(p, c.opts)
	s.Run()

	return &Result{
		Module: s.Module(),
		Errors: s.Errors(),
	}
}

// Session runs the top-level loop over one token stream. It owns the
// generator, so every session produces its own module.
type Session struct {
	parser *Parser
	gen    *Generator
	eval   *Evaluator
	opts   Options

	errs []error
}

func NewSession(p *Parser, opts Options) *Session {
	s := &Session{
		parser: p,
		opts:   opts,
	}

	if s.opts.Diagnostics == nil {
		s.opts.Diagnostics = io.Discard
	}

	if s.opts.Output == nil {
		s.opts.Output = io.Discard
	}

	if !opts.ParseOnly {
		s.gen = NewGenerator()

		if opts.Eval {
			s.eval = NewEvaluator(s.opts.Output)
		}
	}

	return s
}

// Module returns the module built so far, or nil when code generation is
// disabled.
func (s *Session) Module() *ir.Module {
	if s.gen == nil {
		return nil
	}

	return s.gen.Module()
}

func (s *Session) Errors() []error {
	return s.errs
}

// Run handles top-level constructs until the end of input. A construct that
// fails to parse is reported and exactly one token is skipped.
func (s *Session) Run() {
	for {
		switch tok := s.parser.Current(); {
		case tok.Typ == TokenEOF:
			return
		case tok.is(';'):
			s.parser.Advance()
		case tok.Typ == TokenDef:
			s.handleDefinition()
		case tok.Typ == TokenExtern:
			s.handleExtern()
		default:
			s.handleTopLevelExpression()
		}
	}
}

func (s *Session) handleDefinition() {
	fn, err := s.parser.ParseDefinition()
	if err != nil {
		s.discard(err)
		return
	}

	s.diagf("parsed a function definition")
	s.dump(fn)

	if s.gen == nil {
		return
	}

	f, err := s.gen.DefineFunction(fn)
	if err != nil {
		s.report(err)
		return
	}

	s.emit(f)
}

func (s *Session) handleExtern() {
	proto, err := s.parser.ParseExtern()
	if err != nil {
		s.discard(err)
		return
	}

	s.diagf("parsed an extern")
	s.dump(proto)

	if s.gen == nil {
		return
	}

	f, err := s.gen.DeclareExtern(proto)
	if err != nil {
		s.report(err)
		return
	}

	s.emit(f)
}

func (s *Session) handleTopLevelExpression() {
	fn, err := s.parser.ParseTopLevelExpr()
	if err != nil {
		s.discard(err)
		return
	}

	s.diagf("parsed a top-level expr")
	s.dump(fn)

	if s.gen == nil {
		return
	}

	f, err := s.gen.DefineFunction(fn)
	if err != nil {
		s.report(err)
		return
	}

	s.emit(f)

	if s.eval == nil {
		return
	}

	v, err := s.eval.Eval(f)
	if err != nil {
		s.report(err)
		return
	}

	fmt.Fprintf(s.opts.Output, "evaluated to %g\n", v)
}

func (s *Session) dump(node fmt.Stringer) {
	if s.opts.DumpAST {
		fmt.Fprintln(s.opts.Output, node)
	}
}

func (s *Session) emit(f *ir.Func) {
	if s.opts.EmitIR {
		fmt.Fprintln(s.opts.Output, f.LLString())
	}
}

// discard reports a parse error and skips the token it stopped at.
func (s *Session) discard(err error) {
	s.report(err)
	s.parser.Advance()
}

func (s *Session) report(err error) {
	s.errs = append(s.errs, err)
	s.diagf("Error: %s", err)
}

func (s *Session) diagf(format string, args ...interface{}) {
	fmt.Fprintf(s.opts.Diagnostics, format+"\n", args...)
}
