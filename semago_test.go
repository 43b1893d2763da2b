package semago

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semago/algebra"
	"github.com/hupe1980/semago/ast"
	"github.com/hupe1980/semago/graph"
	"github.com/hupe1980/semago/vocab"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := HRR().RandomSeed(42).Build()
	require.NoError(t, err)
	return c
}

func countKind(g *graph.Graph, kind graph.OpKind) int {
	n := 0
	for _, node := range g.Nodes() {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

func TestBuilder(t *testing.T) {
	t.Run("HRR", func(t *testing.T) {
		c, err := HRR().RandomSeed(1).Build()
		require.NoError(t, err)
		v, err := c.Vocabulary(10)
		require.NoError(t, err)
		assert.Equal(t, "hrr", v.AlgebraName())
	})

	t.Run("VTB", func(t *testing.T) {
		c, err := VTB().RandomSeed(1).Build()
		require.NoError(t, err)

		v, err := c.Vocabulary(16)
		require.NoError(t, err)
		assert.Equal(t, "vtb", v.AlgebraName())

		_, err = c.Vocabulary(12)
		var invalid *algebra.ErrInvalidDimension
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("BuilderIsImmutable", func(t *testing.T) {
		base := HRR().RandomSeed(1)
		strict := base.Strict(true)
		lax := base.Strict(false)

		cs, err := strict.Build()
		require.NoError(t, err)
		cl, err := lax.Build()
		require.NoError(t, err)

		vs, err := cs.Vocabulary(16)
		require.NoError(t, err)
		vl, err := cl.Vocabulary(16)
		require.NoError(t, err)
		assert.True(t, vs.Strict())
		assert.False(t, vl.Strict())
	})
}

func TestCompiler(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultVocabularyIsCached", func(t *testing.T) {
		c := newTestCompiler(t)
		a, err := c.Vocabulary(64)
		require.NoError(t, err)
		b, err := c.Vocabulary(64)
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Equal(t, "default64", a.Label())
	})

	t.Run("NewVocabularyRejectsDuplicateLabels", func(t *testing.T) {
		c := newTestCompiler(t)
		_, err := c.NewVocabulary("colors", 32)
		require.NoError(t, err)

		_, err = c.NewVocabulary("colors", 64)
		var exists *ErrVocabExists
		require.ErrorAs(t, err, &exists)
		assert.Equal(t, "colors", exists.Label)
	})

	t.Run("RegisterVocabulary", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := vocab.New("external", 16)
		require.NoError(t, err)
		require.NoError(t, c.RegisterVocabulary(v))

		got, ok := c.LookupVocabulary("external")
		require.True(t, ok)
		assert.Same(t, v, got)

		var exists *ErrVocabExists
		require.ErrorAs(t, c.RegisterVocabulary(v), &exists)
	})

	t.Run("SinkRejectsDuplicates", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(16)
		require.NoError(t, err)

		require.NoError(t, c.Sink("state", v))
		var exists *ErrSinkExists
		require.ErrorAs(t, c.Sink("state", v), &exists)
		assert.Equal(t, "state", exists.Name)
	})

	t.Run("ConnectMatchesDirectEvaluation", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Blue; Circle; Square"))
		require.NoError(t, c.Sink("state", v))

		const src = "Red * Circle + 0.5 * Blue * Square"
		expr, err := c.Parse(src, v)
		require.NoError(t, err)
		require.NoError(t, c.Connect(expr, "state"))

		out, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)

		want, err := v.Parse(src)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.Values(), out["state"], 1e-10)
	})

	t.Run("ConnectSuperposesStatements", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Blue"))
		require.NoError(t, c.Sink("state", v))

		require.NoError(t, c.Connect(c.MustParse("Red", v), "state"))
		require.NoError(t, c.Connect(c.MustParse("Blue", v), "state"))

		out, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)
		want, err := v.Parse("Red + Blue")
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.Values(), out["state"], 1e-10)
	})

	t.Run("ConnectRejectsVocabMismatch", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red"))
		w, err := c.NewVocabulary("other", 64)
		require.NoError(t, err)
		require.NoError(t, w.Populate("Blau"))
		require.NoError(t, c.Sink("state", v))

		before := len(c.Graph().Nodes())
		expr := c.MustParse("Blau", w)
		err = c.Connect(expr, "state")
		var mismatch *ast.ErrVocabMismatch
		require.ErrorAs(t, err, &mismatch)

		// The failed statement leaves no trace.
		assert.Equal(t, before, len(c.Graph().Nodes()))
		assert.Empty(t, c.Graph().Edges())
	})

	t.Run("ConnectRejectsScalarIntoVectorSink", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, c.Sink("state", v))

		err = c.Connect(ast.Num(1), "state")
		var mismatch *ast.ErrTypeMismatch
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("ScalarSink", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red"))
		require.NoError(t, c.Sink("utility", nil))

		require.NoError(t, c.Connect(c.MustParse("dot(Red, Red)", v), "utility"))
		out, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out["utility"][0], 1e-10)
	})

	t.Run("UnknownSink", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red"))

		err = c.Connect(c.MustParse("Red", v), "nowhere")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sink")
	})

	t.Run("SharedNodesLowerOnce", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Circle"))
		require.NoError(t, c.Sink("a", v))
		require.NoError(t, c.Sink("b", v))

		expr := c.MustParse("Red * Circle", v)
		require.NoError(t, c.Connect(expr, "a"))
		require.NoError(t, c.Connect(expr, "b"))

		// The second statement reuses the lowered fragment and only
		// adds an edge.
		assert.Equal(t, 1, countKind(c.Graph(), graph.OpBind))
		assert.Equal(t, 2, countKind(c.Graph(), graph.OpConst))
		assert.Len(t, c.Graph().Edges(), 2)
	})

	t.Run("IndependentNodesLowerIndependently", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Circle"))
		require.NoError(t, c.Sink("a", v))
		require.NoError(t, c.Sink("b", v))

		require.NoError(t, c.Connect(c.MustParse("Red * Circle", v), "a"))
		require.NoError(t, c.Connect(c.MustParse("Red * Circle", v), "b"))

		// Textually identical but independently parsed expressions do
		// not share structure.
		assert.Equal(t, 2, countKind(c.Graph(), graph.OpBind))
	})

	t.Run("InputFlowsThrough", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Rotate"))
		require.NoError(t, c.Sink("state", v))

		in, err := c.Input("stimulus", v)
		require.NoError(t, err)
		require.NoError(t, c.Connect(ast.Mul(in, ast.Sym("Rotate")), "state"))

		stim, err := v.Parse("Rotate")
		require.NoError(t, err)
		out, err := c.Graph().Evaluate(ctx, map[string][]float64{
			"stimulus": stim.Values(),
		})
		require.NoError(t, err)

		want, err := stim.Bind(stim)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.Values(), out["state"], 1e-10)
	})

	t.Run("ReinterpretIsBitExact", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Blue"))

		sub, err := v.Subset("warm", "Red")
		require.NoError(t, err)
		require.NoError(t, c.RegisterVocabulary(sub))
		require.NoError(t, c.Sink("state", sub))

		require.NoError(t, c.Connect(c.MustParse("reinterpret(Red, warm)", v), "state"))
		out, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)

		red, _ := v.Get("Red")
		assert.Equal(t, red.Values(), out["state"])
	})

	t.Run("TranslateMapsBetweenVocabularies", func(t *testing.T) {
		c := newTestCompiler(t)
		src, err := c.NewVocabulary("src", 64)
		require.NoError(t, err)
		require.NoError(t, src.Populate("Red"))
		dst, err := c.NewVocabulary("dst", 64)
		require.NoError(t, err)
		require.NoError(t, dst.Populate("Red"))
		require.NoError(t, c.Sink("state", dst))

		require.NoError(t, c.Connect(c.MustParse("translate(Red, dst)", src), "state"))
		out, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)

		want, _ := dst.Get("Red")
		sim := cosineSlice(want.Values(), out["state"])
		assert.Greater(t, sim, 0.99)
	})

	t.Run("TranslateIntoStrictTargetFailsAtomically", func(t *testing.T) {
		c := newTestCompiler(t)
		src, err := c.NewVocabulary("src", 64)
		require.NoError(t, err)
		require.NoError(t, src.Populate("Red; Blue"))
		dst, err := c.NewVocabulary("dst", 64)
		require.NoError(t, err)
		require.NoError(t, dst.Populate("Red"))
		require.NoError(t, c.Sink("state", dst))

		before := len(c.Graph().Nodes())
		err = c.Connect(c.MustParse("translate(Red + Blue, dst)", src), "state")
		var missing *vocab.ErrMissingKeys
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, before, len(c.Graph().Nodes()))
	})

	t.Run("ExportedGraphSurvivesRoundTrip", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red; Circle"))
		require.NoError(t, c.Sink("state", v))
		require.NoError(t, c.Connect(c.MustParse("Red * Circle", v), "state"))

		var buf bytes.Buffer
		require.NoError(t, c.Graph().Export(&buf))
		loaded, err := graph.Read(&buf)
		require.NoError(t, err)

		want, err := c.Graph().Evaluate(ctx, nil)
		require.NoError(t, err)
		got, err := loaded.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want["state"], got["state"], 1e-12)
	})

	t.Run("MustParsePanics", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		assert.Panics(t, func() { c.MustParse("A +", v) })
	})

	t.Run("ClosedCompilerRejectsStatements", func(t *testing.T) {
		c := newTestCompiler(t)
		v, err := c.Vocabulary(64)
		require.NoError(t, err)
		require.NoError(t, v.Populate("Red"))
		require.NoError(t, c.Sink("state", v))
		expr := c.MustParse("Red", v)
		require.NoError(t, c.Close())

		require.ErrorIs(t, c.Connect(expr, "state"), ErrCompilerClosed)
		require.ErrorIs(t, c.Sink("other", v), ErrCompilerClosed)
		_, err = c.Vocabulary(32)
		require.ErrorIs(t, err, ErrCompilerClosed)
		_, err = c.ActionSelection()
		require.ErrorIs(t, err, ErrCompilerClosed)
		require.ErrorIs(t, c.Close(), ErrCompilerClosed)
	})

	t.Run("CloseWithOpenSelectionFails", func(t *testing.T) {
		c := newTestCompiler(t)
		_, err := c.ActionSelection()
		require.NoError(t, err)
		require.ErrorIs(t, c.Close(), ErrSelectionOpen)
	})
}

func cosineSlice(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
