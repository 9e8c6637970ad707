package kaleido

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator(t *testing.T) {
	g := NewGenerator()
	var out bytes.Buffer
	e := NewEvaluator(&out)

	for _, src := range []string{
		"extern sqrt(x)",
		"extern putchard(c)",
		"def square(x) x * x",
		"def hyp(a b) sqrt(square(a) + square(b))",
		"def less(a b) a < b",
	} {
		_, err := lower(t, g, src)
		require.NoError(t, err, src)
	}

	cases := []struct {
		src    string
		expect float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"hyp(3, 4)", 5},
		{"less(1, 2)", 1},
		{"less(2, 1)", 0},
		{"less(2, 2)", 0},
		{"1 < 2 < 3", 1},
		{"square(0.5) + 1 < 2", 1},
	}

	for _, c := range cases {
		f, err := lower(t, g, c.src)
		require.NoError(t, err, c.src)

		got, err := e.Eval(f)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.expect, got, c.src)
	}

	f, err := lower(t, g, "putchard(72) + putchard(105)")
	require.NoError(t, err)

	got, err := e.Eval(f)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, "Hi", out.String())
}

func TestEvaluatorArguments(t *testing.T) {
	g := NewGenerator()
	e := NewEvaluator(io.Discard)

	f, err := lower(t, g, "def mix(a b t) a + (b - a) * t")
	require.NoError(t, err)

	got, err := e.Eval(f, 2, 4, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	_, err = e.Eval(f, 1)
	assert.True(t, errors.Is(err, ErrArgCount))
}

func TestEvaluatorExternals(t *testing.T) {
	g := NewGenerator()
	e := NewEvaluator(io.Discard)

	for _, src := range []string{"extern mystery(x)", "extern sin(a b)", "extern cos(x)"} {
		_, err := lower(t, g, src)
		require.NoError(t, err, src)
	}

	f, err := lower(t, g, "mystery(1)")
	require.NoError(t, err)
	_, err = e.Eval(f)
	assert.True(t, errors.Is(err, ErrUnresolvedExternal))

	// A builtin declared with the wrong arity does not resolve
	f, err = lower(t, g, "sin(1, 2)")
	require.NoError(t, err)
	_, err = e.Eval(f)
	assert.True(t, errors.Is(err, ErrUnresolvedExternal))

	e.Define("mystery", Builtin{
		Arity: 1,
		Fn: func(_ io.Writer, args []float64) float64 {
			return args[0] * 100
		},
	})

	f, err = lower(t, g, "mystery(2) + cos(0)")
	require.NoError(t, err)
	got, err := e.Eval(f)
	require.NoError(t, err)
	assert.Equal(t, 201.0, got)
}

func TestEvaluatorCallDepth(t *testing.T) {
	g := NewGenerator()
	e := NewEvaluator(io.Discard)

	_, err := lower(t, g, "def forever(x) forever(x + 1)")
	require.NoError(t, err)

	f, err := lower(t, g, "forever(0)")
	require.NoError(t, err)

	_, err = e.Eval(f)
	assert.True(t, errors.Is(err, ErrCallDepth))
}

func TestBuiltins(t *testing.T) {
	var out bytes.Buffer
	builtins := defaultBuiltins()

	assert.Equal(t, 3.0, builtins["sqrt"].Fn(&out, []float64{9}))
	assert.Equal(t, 8.0, builtins["pow"].Fn(&out, []float64{2, 3}))
	assert.InDelta(t, math.Pi/4, builtins["atan2"].Fn(&out, []float64{1, 1}), 1e-12)
	assert.Equal(t, 2.0, builtins["fabs"].Fn(&out, []float64{-2}))

	builtins["printd"].Fn(&out, []float64{1.5})
	assert.Equal(t, "1.500000\n", out.String())

	for name, b := range builtins {
		assert.NotNil(t, b.Fn, name)
		assert.True(t, b.Arity == 1 || b.Arity == 2, name)
	}
}
