package kaleido

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

const anonFuncName = "__anon_expr"

// Scope binds the names visible inside one function body. A new Scope is
// built for every function that is lowered.
type Scope struct {
	vals map[string]value.Value
}

func NewScope() *Scope {
	return &Scope{
		vals: make(map[string]value.Value),
	}
}

// NewFuncScope returns a scope holding one binding per parameter of f.
func NewFuncScope(f *ir.Func) *Scope {
	s := NewScope()
	for _, param := range f.Params {
		s.Set(param.Name(), param)
	}

	return s
}

func (s *Scope) Get(id string) (value.Value, bool) {
	val, ok := s.vals[id]
	return val, ok
}

func (s *Scope) Set(id string, val value.Value) {
	s.vals[id] = val
}

func (s *Scope) Len() int {
	return len(s.vals)
}

// Generator lowers prototypes and functions into a single LLVM module. It is
// not safe for concurrent use.
type Generator struct {
	mod       *ir.Module
	anonCount int
}

func NewGenerator() *Generator {
	return &Generator{
		mod: ir.NewModule(),
	}
}

func (g *Generator) Module() *ir.Module {
	return g.mod
}

// LookupFunc returns the function declared under name, or nil.
func (g *Generator) LookupFunc(name string) *ir.Func {
	for _, f := range g.mod.Funcs {
		if f.Name() == name {
			return f
		}
	}

	return nil
}

// DeclarePrototype adds `declare double @name(double %p, ...)` to the module.
// Anonymous prototypes get a fresh name that the lexer can never produce.
func (g *Generator) DeclarePrototype(proto *Prototype) (*ir.Func, error) {
	seen := make(map[string]bool, len(proto.Params))
	params := make([]*ir.Param, 0, len(proto.Params))
	for _, name := range proto.Params {
		if seen[name] {
			return nil, &CodegenError{Name: name, Err: ErrDuplicateParam}
		}
		seen[name] = true

		params = append(params, ir.NewParam(name, types.Double))
	}

	name := proto.Name
	if proto.IsAnonymous() {
		name = g.anonName()
	}

	return g.mod.NewFunc(name, types.Double, params...), nil
}

// DeclareExtern declares proto unless a function of the same name and arity
// already exists, in which case that function is returned.
func (g *Generator) DeclareExtern(proto *Prototype) (*ir.Func, error) {
	if proto.IsAnonymous() {
		return g.DeclarePrototype(proto)
	}

	f := g.LookupFunc(proto.Name)
	if f == nil {
		return g.DeclarePrototype(proto)
	}

	if len(f.Params) != len(proto.Params) {
		return nil, &CodegenError{Name: proto.Name, Err: ErrSignature}
	}

	return f, nil
}

func renameParams(f *ir.Func, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return &CodegenError{Name: name, Err: ErrDuplicateParam}
		}
		seen[name] = true
	}

	for i, param := range f.Params {
		param.SetName(names[i])
	}

	return nil
}

func (g *Generator) anonName() string {
	for {
		name := anonFuncName
		if g.anonCount > 0 {
			name += "." + strconv.Itoa(g.anonCount)
		}
		g.anonCount++

		if g.LookupFunc(name) == nil {
			return name
		}
	}
}

// DefineFunction attaches the lowered body of fn to its declaration, declaring
// it first when no earlier extern exists. If the body cannot be lowered the
// declaration is erased from the module, including one that pre-existed.
func (g *Generator) DefineFunction(fn *Function) (*ir.Func, error) {
	var f *ir.Func
	if !fn.Proto.IsAnonymous() {
		f = g.LookupFunc(fn.Proto.Name)
	}

	if f == nil {
		var err error
		if f, err = g.DeclarePrototype(fn.Proto); err != nil {
			return nil, err
		}
	}

	if len(f.Blocks) != 0 {
		return nil, &CodegenError{Name: fn.Proto.Name, Err: ErrRedefinition}
	}

	if len(f.Params) != len(fn.Proto.Params) {
		return nil, &CodegenError{Name: fn.Proto.Name, Err: ErrSignature}
	}

	// The body refers to parameters by the names of this definition, not of
	// an earlier extern.
	if !fn.Proto.IsAnonymous() {
		if err := renameParams(f, fn.Proto.Params); err != nil {
			return nil, err
		}
	}

	b := newFuncBuilder(g, f)

	ret, err := b.expr(fn.Body)
	if err != nil {
		g.eraseFunc(f)
		return nil, err
	}

	b.block.NewRet(ret)

	if err := VerifyFunc(f); err != nil {
		g.eraseFunc(f)
		return nil, errors.Wrapf(err, "verifying %s", f.Name())
	}

	return f, nil
}

// eraseFunc drops f and whatever part of its body was lowered. Calls lowered
// earlier may still point at f, so it must stay a plain declaration.
func (g *Generator) eraseFunc(f *ir.Func) {
	f.Blocks = nil

	for i, f2 := range g.mod.Funcs {
		if f2 == f {
			g.mod.Funcs = append(g.mod.Funcs[:i], g.mod.Funcs[i+1:]...)
			return
		}
	}
}

// funcBuilder emits the body of a single function into its entry block.
type funcBuilder struct {
	gen   *Generator
	block *ir.Block
	scope *Scope
	names map[string]bool
}

func newFuncBuilder(g *Generator, f *ir.Func) *funcBuilder {
	b := &funcBuilder{
		gen:   g,
		scope: NewFuncScope(f),
		names: make(map[string]bool),
	}

	for _, param := range f.Params {
		b.names[param.Name()] = true
	}

	b.block = f.NewBlock(b.name("entry"))

	return b
}

// name returns base, or base followed by the first counter that makes it
// unique within the function.
func (b *funcBuilder) name(base string) string {
	name := base
	for i := 1; b.names[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	b.names[name] = true

	return name
}

func (b *funcBuilder) expr(expr Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *NumberExpr:
		return constant.NewFloat(types.Double, e.Value), nil
	case *VariableExpr:
		return b.variable(e)
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *CallExpr:
		return b.functionCall(e)
	default:
		return nil, errors.Errorf("unexpected expression %T", expr)
	}
}

func (b *funcBuilder) variable(expr *VariableExpr) (value.Value, error) {
	v, ok := b.scope.Get(expr.Name)
	if !ok {
		return nil, &CodegenError{Name: expr.Name, Err: ErrUnknownVariable}
	}

	return v, nil
}

func (b *funcBuilder) binaryExpression(expr *BinaryExpr) (value.Value, error) {
	l, err := b.expr(expr.LHS)
	if err != nil {
		return nil, err
	}

	r, err := b.expr(expr.RHS)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case '+':
		op := b.block.NewFAdd(l, r)
		op.SetName(b.name("addtmp"))
		return op, nil
	case '-':
		op := b.block.NewFSub(l, r)
		op.SetName(b.name("subtmp"))
		return op, nil
	case '*':
		op := b.block.NewFMul(l, r)
		op.SetName(b.name("multmp"))
		return op, nil
	case '<':
		cmp := b.block.NewFCmp(enum.FPredULT, l, r)
		cmp.SetName(b.name("cmptmp"))

		// Comparisons yield 0.0 or 1.0
		op := b.block.NewUIToFP(cmp, types.Double)
		op.SetName(b.name("booltmp"))
		return op, nil
	default:
		return nil, &CodegenError{Name: string(expr.Op), Err: ErrInvalidBinaryOp}
	}
}

func (b *funcBuilder) functionCall(expr *CallExpr) (value.Value, error) {
	callee := b.gen.LookupFunc(expr.Callee)
	if callee == nil {
		return nil, &CodegenError{Name: expr.Callee, Err: ErrUnknownFunction}
	}

	if len(callee.Params) != len(expr.Args) {
		return nil, &CodegenError{Name: expr.Callee, Err: ErrArgCount}
	}

	args := make([]value.Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v, err := b.expr(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	call := b.block.NewCall(callee, args...)
	call.SetName(b.name("calltmp"))

	return call, nil
}
