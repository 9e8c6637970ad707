package kaleido

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

type localValue interface {
	Name() string
	IsUnnamed() bool
}

// VerifyFunc checks the structure of a completed function: it must have a
// body, every block must be terminated, returns must match the signature,
// calls must match their callee's arity and local names must be unique.
func VerifyFunc(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return errors.Errorf("function %s has no body", f.Name())
	}

	if len(f.Params) != len(f.Sig.Params) {
		return errors.Errorf("function %s declares %d parameters but its signature has %d", f.Name(), len(f.Params), len(f.Sig.Params))
	}

	names := make(map[string]bool)
	define := func(v localValue) error {
		if v.IsUnnamed() {
			return nil
		}

		if names[v.Name()] {
			return errors.Errorf("local %%%s defined more than once", v.Name())
		}
		names[v.Name()] = true

		return nil
	}

	for _, param := range f.Params {
		if err := define(param); err != nil {
			return err
		}
	}

	for _, block := range f.Blocks {
		if err := define(block); err != nil {
			return err
		}

		for _, inst := range block.Insts {
			if v, ok := inst.(localValue); ok {
				if err := define(v); err != nil {
					return err
				}
			}

			if err := verifyInst(inst); err != nil {
				return err
			}
		}

		if block.Term == nil {
			return errors.Errorf("block %%%s has no terminator", block.Name())
		}

		if err := verifyTerm(f, block.Term); err != nil {
			return err
		}
	}

	return nil
}

func verifyInst(inst ir.Instruction) error {
	switch i := inst.(type) {
	case *ir.InstFAdd:
		return verifyOperands("fadd", i.X, i.Y)
	case *ir.InstFSub:
		return verifyOperands("fsub", i.X, i.Y)
	case *ir.InstFMul:
		return verifyOperands("fmul", i.X, i.Y)
	case *ir.InstFCmp:
		return verifyOperands("fcmp", i.X, i.Y)
	case *ir.InstUIToFP:
		if !i.From.Type().Equal(types.I1) {
			return errors.Errorf("uitofp from %s, expected i1", i.From.Type())
		}
	case *ir.InstCall:
		callee, ok := i.Callee.(*ir.Func)
		if !ok {
			return errors.Errorf("call to non-function %s", i.Callee.Ident())
		}

		if !callee.Sig.Variadic && len(i.Args) != len(callee.Sig.Params) {
			return errors.Errorf("call to %s passes %d arguments, expected %d", callee.Name(), len(i.Args), len(callee.Sig.Params))
		}
	}

	return nil
}

func verifyOperands(op string, operands ...value.Value) error {
	for _, v := range operands {
		if !v.Type().Equal(types.Double) {
			return errors.Errorf("%s operand %s has type %s, expected double", op, v.Ident(), v.Type())
		}
	}

	return nil
}

func verifyTerm(f *ir.Func, term ir.Terminator) error {
	ret, ok := term.(*ir.TermRet)
	if !ok {
		return errors.Errorf("unexpected terminator %T in %s", term, f.Name())
	}

	if ret.X == nil {
		if !f.Sig.RetType.Equal(types.Void) {
			return errors.Errorf("ret void in %s, which returns %s", f.Name(), f.Sig.RetType)
		}

		return nil
	}

	if !ret.X.Type().Equal(f.Sig.RetType) {
		return errors.Errorf("ret %s in %s, which returns %s", ret.X.Type(), f.Name(), f.Sig.RetType)
	}

	return nil
}
