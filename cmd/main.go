package main

import (
	"flag"
	"fmt"
	"os"

	"go.kaleido.dev/pkg"
)

func main() {
	dumpAST := flag.Bool("dump-ast", false, "print every parsed construct as an S-expression")
	emitIR := flag.Bool("emit-ir", false, "print the IR of every function as it is generated")
	eval := flag.Bool("eval", false, "evaluate top-level expressions")
	parseOnly := flag.Bool("parse-only", false, "stop after parsing")
	outPath := flag.String("o", "", "write the final module to this file")
	verbose := flag.Bool("v", false, "print a located summary of every error")
	flag.Parse()

	c := kaleido.NewCompiler(kaleido.Options{
		ParseOnly: *parseOnly,
		DumpAST:   *dumpAST,
		EmitIR:    *emitIR,
		Eval:      *eval,
	})

	var res *kaleido.Result
	if flag.NArg() > 0 {
		var err error
		res, err = c.Compile(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		res = c.CompileFromReader(os.Stdin)
	}

	if *verbose && len(res.Errors) != 0 {
		printErrors(res.Errors)
	}

	if *outPath != "" && res.Module != nil {
		if err := os.WriteFile(*outPath, []byte(res.Module.String()), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if len(res.Errors) != 0 {
		os.Exit(1)
	}
}

func printErrors(errors []error) {
	for _, err := range errors {
		switch e := err.(type) {
		case *kaleido.ParseError:
			fmt.Fprintln(os.Stderr, "Syntax error:", e.Err, "at", e.Loc, "near", e.Tok)
		case *kaleido.CodegenError:
			fmt.Fprintln(os.Stderr, "Codegen error:", e.Err, "for", e.Name)
		default:
			fmt.Fprintln(os.Stderr, "Error:", e)
		}
	}
}
