package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semago/algebra"
	"github.com/hupe1980/semago/pointer"
)

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("SumScaleAndSinkSuperposition", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		a := f.AddConst([]float64{1, 0}, "v", "A")
		b := f.AddConst([]float64{0, 1}, "v", "B")
		sum, err := f.AddSum([]PortID{a, b})
		require.NoError(t, err)
		scaled, err := f.AddScale(sum, 2, "v", "")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(scaled, "out"))
		// A second edge into the same sink superposes.
		require.NoError(t, f.ConnectSink(a, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{3, 2}, out["out"], 1e-12)
	})

	t.Run("BindAndInvert", func(t *testing.T) {
		alg := algebra.HRR{}
		gen := pointer.NewGenerator(alg, 5)
		pa, err := gen.Unit(64)
		require.NoError(t, err)
		pbRaw, err := gen.Unit(64)
		require.NoError(t, err)
		pb, err := pbRaw.Unitary()
		require.NoError(t, err)

		g := New()
		require.NoError(t, g.DeclareSink("out", 64, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 64, "hrr")
		a := f.AddConst(pa.Values(), "v", "A")
		b := f.AddConst(pb.Values(), "v", "B")
		bound, err := f.AddBind(a, b, "v")
		require.NoError(t, err)
		bInv, err := f.AddInvert(b)
		require.NoError(t, err)
		recovered, err := f.AddBind(bound, bInv, "v")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(recovered, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, pa.Values(), out["out"], 1e-9)
	})

	t.Run("DotAndDynamicScale", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		a := f.AddConst([]float64{3, 4}, "v", "A")
		d, err := f.AddDot(a, a)
		require.NoError(t, err)
		scaled, err := f.AddScaleBy(a, d)
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(scaled, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{75, 100}, out["out"], 1e-12)
	})

	t.Run("TransformScale", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 3, "w"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		f.EnsureVocab("w", 3, "hrr")
		a := f.AddConst([]float64{1, 2}, "v", "A")
		mapped, err := f.AddTransform(a, [][]float64{{1, 0}, {0, 1}, {1, 1}}, "w")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(mapped, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 2, 3}, out["out"], 1e-12)
	})

	t.Run("Inputs", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		in := f.AddInput("stimulus", 2, "v")
		scaled, err := f.AddScale(in, -1, "v", "")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(scaled, "out"))
		f.Commit()

		_, err = g.Evaluate(ctx, nil)
		require.Error(t, err, "missing input must fail")

		_, err = g.Evaluate(ctx, map[string][]float64{"stimulus": {1}})
		require.Error(t, err, "wrong input dimension must fail")

		out, err := g.Evaluate(ctx, map[string][]float64{"stimulus": {1, -2}})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{-1, 2}, out["out"], 1e-12)
	})

	t.Run("GateDominance", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		uA := f.AddScalarConst(0.9, "")
		uB := f.AddScalarConst(0.1, "")
		gates, err := f.AddGate([]PortID{uA, uB})
		require.NoError(t, err)

		effA := f.AddConst([]float64{1, 0}, "v", "")
		effB := f.AddConst([]float64{0, 1}, "v", "")
		combined, err := f.AddCombine([][2]PortID{{gates[0], effA}, {gates[1], effB}}, 2, "v")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(combined, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		// Utilities separated by 0.8 leave the loser's gate negligible.
		assert.Greater(t, out["out"][0], 0.99)
		assert.Less(t, out["out"][1], 1e-6)
	})

	t.Run("GateBlendsNearTies", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		f.EnsureVocab("v", 2, "hrr")
		uA := f.AddScalarConst(0.5, "")
		uB := f.AddScalarConst(0.5, "")
		gates, err := f.AddGate([]PortID{uA, uB})
		require.NoError(t, err)
		effA := f.AddConst([]float64{1, 0}, "v", "")
		effB := f.AddConst([]float64{0, 1}, "v", "")
		combined, err := f.AddCombine([][2]PortID{{gates[0], effA}, {gates[1], effB}}, 2, "v")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(combined, "out"))
		f.Commit()

		out, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, out["out"][0], 1e-12)
		assert.InDelta(t, 0.5, out["out"][1], 1e-12)
	})

	t.Run("GateSharpnessOption", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 1, ""))

		f := g.NewFragment()
		uA := f.AddScalarConst(0.6, "")
		uB := f.AddScalarConst(0.4, "")
		gates, err := f.AddGate([]PortID{uA, uB})
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(gates[0], "out"))
		f.Commit()

		sharp, err := g.Evaluate(ctx, nil)
		require.NoError(t, err)
		soft, err := g.Evaluate(ctx, nil, func(o *EvalOptions) {
			o.GateSharpness = 1
		})
		require.NoError(t, err)
		assert.Greater(t, sharp["out"][0], soft["out"][0])
	})

	t.Run("UnknownVocabularyFails", func(t *testing.T) {
		g := New()
		require.NoError(t, g.DeclareSink("out", 2, "v"))

		f := g.NewFragment()
		// The vocab spec is deliberately missing.
		a := f.AddConst([]float64{1, 0}, "v", "A")
		b := f.AddConst([]float64{0, 1}, "v", "B")
		bound, err := f.AddBind(a, b, "v")
		require.NoError(t, err)
		require.NoError(t, f.ConnectSink(bound, "out"))
		f.Commit()

		_, err = g.Evaluate(ctx, nil)
		require.Error(t, err)
	})
}
