package kaleido

import (
	"fmt"
	"io"
	"math"
)

// Builtin is a native implementation of a function that programs declare
// with extern, e.g. `extern sin(x)`.
type Builtin struct {
	Arity int
	Fn    func(out io.Writer, args []float64) float64
}

func defaultBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"sin":      unaryBuiltin(math.Sin),
		"cos":      unaryBuiltin(math.Cos),
		"tan":      unaryBuiltin(math.Tan),
		"sqrt":     unaryBuiltin(math.Sqrt),
		"exp":      unaryBuiltin(math.Exp),
		"log":      unaryBuiltin(math.Log),
		"fabs":     unaryBuiltin(math.Abs),
		"atan2":    binaryBuiltin(math.Atan2),
		"pow":      binaryBuiltin(math.Pow),
		"putchard": {Arity: 1, Fn: builtinPutchard},
		"printd":   {Arity: 1, Fn: builtinPrintd},
	}
}

func unaryBuiltin(fn func(float64) float64) Builtin {
	return Builtin{
		Arity: 1,
		Fn: func(_ io.Writer, args []float64) float64 {
			return fn(args[0])
		},
	}
}

func binaryBuiltin(fn func(float64, float64) float64) Builtin {
	return Builtin{
		Arity: 2,
		Fn: func(_ io.Writer, args []float64) float64 {
			return fn(args[0], args[1])
		},
	}
}

func builtinPutchard(out io.Writer, args []float64) float64 {
	fmt.Fprintf(out, "%c", rune(args[0]))
	return 0
}

func builtinPrintd(out io.Writer, args []float64) float64 {
	fmt.Fprintf(out, "%f\n", args[0])
	return 0
}
