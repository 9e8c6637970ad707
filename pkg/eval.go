package kaleido

import (
	"io"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

const maxCallDepth = 1000

var (
	ErrUnresolvedExternal = errors.New("unresolved external function")
	ErrCallDepth          = errors.New("maximum call depth exceeded")
)

// Evaluator interprets functions produced by the Generator. Bodiless
// declarations are resolved against the builtin table by name.
type Evaluator struct {
	out      io.Writer
	builtins map[string]Builtin
}

// NewEvaluator returns an evaluator whose builtins write to out.
func NewEvaluator(out io.Writer) *Evaluator {
	return &Evaluator{
		out:      out,
		builtins: defaultBuiltins(),
	}
}

func (e *Evaluator) Define(name string, b Builtin) {
	e.builtins[name] = b
}

func (e *Evaluator) Eval(f *ir.Func, args ...float64) (float64, error) {
	return e.call(f, args, 0)
}

func (e *Evaluator) call(f *ir.Func, args []float64, depth int) (float64, error) {
	if depth > maxCallDepth {
		return 0, errors.Wrap(ErrCallDepth, f.Name())
	}

	if len(args) != len(f.Params) {
		return 0, errors.Wrapf(ErrArgCount, "%s takes %d, got %d", f.Name(), len(f.Params), len(args))
	}

	if len(f.Blocks) == 0 {
		b, ok := e.builtins[f.Name()]
		if !ok || b.Arity != len(args) {
			return 0, errors.Wrap(ErrUnresolvedExternal, f.Name())
		}

		return b.Fn(e.out, args), nil
	}

	frame := make(map[value.Value]float64, len(f.Params))
	for i, param := range f.Params {
		frame[param] = args[i]
	}

	// Without control flow every function is a single block
	block := f.Blocks[0]
	for _, inst := range block.Insts {
		v, err := e.inst(frame, inst, depth)
		if err != nil {
			return 0, err
		}

		frame[inst.(value.Value)] = v
	}

	ret, ok := block.Term.(*ir.TermRet)
	if !ok || ret.X == nil {
		return 0, errors.Errorf("%s: unsupported terminator %T", f.Name(), block.Term)
	}

	return operand(frame, ret.X)
}

func (e *Evaluator) inst(frame map[value.Value]float64, inst ir.Instruction, depth int) (float64, error) {
	switch i := inst.(type) {
	case *ir.InstFAdd:
		return binaryOperands(frame, i.X, i.Y, func(x, y float64) float64 { return x + y })
	case *ir.InstFSub:
		return binaryOperands(frame, i.X, i.Y, func(x, y float64) float64 { return x - y })
	case *ir.InstFMul:
		return binaryOperands(frame, i.X, i.Y, func(x, y float64) float64 { return x * y })
	case *ir.InstFCmp:
		if i.Pred != enum.FPredULT {
			return 0, errors.Errorf("unsupported fcmp predicate %s", i.Pred)
		}

		return binaryOperands(frame, i.X, i.Y, func(x, y float64) float64 {
			if math.IsNaN(x) || math.IsNaN(y) || x < y {
				return 1
			}

			return 0
		})
	case *ir.InstUIToFP:
		return operand(frame, i.From)
	case *ir.InstCall:
		callee, ok := i.Callee.(*ir.Func)
		if !ok {
			return 0, errors.Errorf("call to non-function %s", i.Callee.Ident())
		}

		args := make([]float64, 0, len(i.Args))
		for _, arg := range i.Args {
			v, err := operand(frame, arg)
			if err != nil {
				return 0, err
			}

			args = append(args, v)
		}

		return e.call(callee, args, depth+1)
	default:
		return 0, errors.Errorf("unsupported instruction %T", inst)
	}
}

func binaryOperands(frame map[value.Value]float64, x, y value.Value, fn func(x, y float64) float64) (float64, error) {
	a, err := operand(frame, x)
	if err != nil {
		return 0, err
	}

	b, err := operand(frame, y)
	if err != nil {
		return 0, err
	}

	return fn(a, b), nil
}

func operand(frame map[value.Value]float64, v value.Value) (float64, error) {
	if c, ok := v.(*constant.Float); ok {
		f, _ := c.X.Float64()
		return f, nil
	}

	f, ok := frame[v]
	if !ok {
		return 0, errors.Errorf("use of undefined value %s", v.Ident())
	}

	return f, nil
}
