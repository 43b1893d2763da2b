package algebra

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randUnit(rng *rand.Rand, d int) []float64 {
	v := make([]float64, d)
	var norm float64
	for i := range v {
		v[i] = rng.NormFloat64()
		norm += v[i] * v[i]
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func l2(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func cosine(a, b []float64) float64 {
	var d float64
	for i := range a {
		d += a[i] * b[i]
	}
	return d / (l2(a) * l2(b))
}

func TestHRR(t *testing.T) {
	alg := HRR{}
	rng := rand.New(rand.NewSource(1))

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "hrr", alg.Name())

		byName, ok := ByName("hrr")
		require.True(t, ok)
		assert.Equal(t, alg, byName)
	})

	t.Run("IsValidDimension", func(t *testing.T) {
		assert.True(t, alg.IsValidDimension(1))
		assert.True(t, alg.IsValidDimension(17))
		assert.False(t, alg.IsValidDimension(0))
		assert.False(t, alg.IsValidDimension(-4))
	})

	t.Run("BindWithIdentity", func(t *testing.T) {
		a := randUnit(rng, 64)
		id, err := alg.Identity(64)
		require.NoError(t, err)

		out, err := alg.Bind(a, id)
		require.NoError(t, err)
		assert.InDeltaSlice(t, a, out, 1e-12)
	})

	t.Run("BindCommutes", func(t *testing.T) {
		a := randUnit(rng, 64)
		b := randUnit(rng, 64)

		ab, err := alg.Bind(a, b)
		require.NoError(t, err)
		ba, err := alg.Bind(b, a)
		require.NoError(t, err)
		assert.InDeltaSlice(t, ab, ba, 1e-12)
	})

	t.Run("BindDissimilar", func(t *testing.T) {
		a := randUnit(rng, 256)
		b := randUnit(rng, 256)

		ab, err := alg.Bind(a, b)
		require.NoError(t, err)
		assert.Less(t, math.Abs(cosine(ab, a)), 0.3)
		assert.Less(t, math.Abs(cosine(ab, b)), 0.3)
	})

	t.Run("UnbindRecoversUnitaryBinding", func(t *testing.T) {
		a := randUnit(rng, 64)
		b, err := alg.MakeUnitary(randUnit(rng, 64))
		require.NoError(t, err)

		ab, err := alg.Bind(a, b)
		require.NoError(t, err)
		bInv, err := alg.Invert(b)
		require.NoError(t, err)
		recovered, err := alg.Bind(ab, bInv)
		require.NoError(t, err)
		assert.InDeltaSlice(t, a, recovered, 1e-10)
	})

	t.Run("InvertIsInvolution", func(t *testing.T) {
		a := randUnit(rng, 33)
		inv, err := alg.Invert(a)
		require.NoError(t, err)
		again, err := alg.Invert(inv)
		require.NoError(t, err)
		assert.InDeltaSlice(t, a, again, 1e-15)
	})

	t.Run("UnitaryPreservesNormUnderSelfBinding", func(t *testing.T) {
		u, err := alg.MakeUnitary(randUnit(rng, 64))
		require.NoError(t, err)

		v := u
		for i := 0; i < 4; i++ {
			var err error
			v, err = alg.Bind(v, u)
			require.NoError(t, err)
		}
		assert.InDelta(t, l2(u), l2(v), 1e-10)
	})

	t.Run("IdentityIsUnitary", func(t *testing.T) {
		id, err := alg.Identity(32)
		require.NoError(t, err)
		u, err := alg.MakeUnitary(id)
		require.NoError(t, err)
		assert.InDeltaSlice(t, id, u, 1e-12)
	})

	t.Run("AbsorbingCollapsesStructure", func(t *testing.T) {
		abs, err := alg.Absorbing(64)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, l2(abs), 1e-12)

		a := randUnit(rng, 64)
		out, err := alg.Bind(abs, a)
		require.NoError(t, err)
		// The result is a constant vector, parallel to the absorbing
		// element.
		assert.InDelta(t, 1.0, math.Abs(cosine(out, abs)), 1e-10)
	})

	t.Run("ZeroAnnihilates", func(t *testing.T) {
		zero, err := alg.Zero(64)
		require.NoError(t, err)
		a := randUnit(rng, 64)

		out, err := alg.Bind(zero, a)
		require.NoError(t, err)
		assert.InDeltaSlice(t, zero, out, 1e-15)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := alg.Bind(make([]float64, 8), make([]float64, 16))
		var mismatch *ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 8, mismatch.Expected)
		assert.Equal(t, 16, mismatch.Actual)
	})

	t.Run("InvalidDimension", func(t *testing.T) {
		_, err := alg.Identity(0)
		var invalid *ErrInvalidDimension
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "hrr", invalid.Algebra)
	})
}
