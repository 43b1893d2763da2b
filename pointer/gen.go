package pointer

import (
	"math/rand"

	"github.com/hupe1980/semago/algebra"
)

// Generator produces random unit-length pointers. Generation is
// deterministic given an explicit seed; a Generator is not safe for
// concurrent use.
type Generator struct {
	alg algebra.Algebra
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded with seed.
func NewGenerator(alg algebra.Algebra, seed int64) *Generator {
	return &Generator{alg: alg, rng: rand.New(rand.NewSource(seed))}
}

// Unit returns a random pointer of dimensionality d drawn uniformly
// from the unit hypersphere.
func (g *Generator) Unit(d int) (Pointer, error) {
	if !g.alg.IsValidDimension(d) {
		return Pointer{}, &algebra.ErrInvalidDimension{Dimension: d, Algebra: g.alg.Name()}
	}

	v := make([]float64, d)
	for {
		for i := range v {
			v[i] = g.rng.NormFloat64()
		}
		p := Pointer{alg: g.alg, v: v}
		if n := p.Norm(); n != 0 {
			return p.Scale(1 / n), nil
		}
		// All-zero draw; resample.
	}
}
