package pointer

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/semago/algebra"
)

// ErrZeroVector is returned when an operation requires a non-zero
// vector (normalization, cosine similarity).
var ErrZeroVector = errors.New("zero vector")

// Pointer is an immutable fixed-dimension real vector bound to a
// binding algebra. Operations never mutate their receiver; they
// return freshly allocated Pointers.
type Pointer struct {
	alg algebra.Algebra
	v   []float64
}

// New creates a Pointer from data. The slice is copied.
func New(alg algebra.Algebra, data []float64) (Pointer, error) {
	if !alg.IsValidDimension(len(data)) {
		return Pointer{}, &algebra.ErrInvalidDimension{Dimension: len(data), Algebra: alg.Name()}
	}
	return Pointer{alg: alg, v: append([]float64(nil), data...)}, nil
}

// Dim returns the dimensionality of the pointer.
func (p Pointer) Dim() int { return len(p.v) }

// Algebra returns the binding algebra the pointer is bound to.
func (p Pointer) Algebra() algebra.Algebra { return p.alg }

// Values returns a copy of the underlying vector.
func (p Pointer) Values() []float64 { return append([]float64(nil), p.v...) }

// Norm returns the L2 norm of the pointer.
func (p Pointer) Norm() float64 { return floats.Norm(p.v, 2) }

// Superpose returns the elementwise sum p + q.
func (p Pointer) Superpose(q Pointer) (Pointer, error) {
	if p.Dim() != q.Dim() {
		return Pointer{}, &algebra.ErrDimensionMismatch{Expected: p.Dim(), Actual: q.Dim()}
	}
	out := make([]float64, p.Dim())
	floats.AddTo(out, p.v, q.v)
	return Pointer{alg: p.alg, v: out}, nil
}

// Scale returns s * p.
func (p Pointer) Scale(s float64) Pointer {
	out := append([]float64(nil), p.v...)
	floats.Scale(s, out)
	return Pointer{alg: p.alg, v: out}
}

// Bind combines p and q under the pointer's algebra. The operand
// order matters for non-commutative algebras.
func (p Pointer) Bind(q Pointer) (Pointer, error) {
	out, err := p.alg.Bind(p.v, q.v)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: p.alg, v: out}, nil
}

// Inverse returns the approximate inverse of p under Bind.
func (p Pointer) Inverse() (Pointer, error) {
	out, err := p.alg.Invert(p.v)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: p.alg, v: out}, nil
}

// Unitary returns the unitary projection of p: repeated self-binding
// of the result never changes its magnitude.
func (p Pointer) Unitary() (Pointer, error) {
	out, err := p.alg.MakeUnitary(p.v)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: p.alg, v: out}, nil
}

// Normalize returns p scaled to unit length.
func (p Pointer) Normalize() (Pointer, error) {
	n := p.Norm()
	if n == 0 {
		return Pointer{}, ErrZeroVector
	}
	return p.Scale(1 / n), nil
}

// Dot returns the dot product of p and q.
func (p Pointer) Dot(q Pointer) (float64, error) {
	if p.Dim() != q.Dim() {
		return 0, &algebra.ErrDimensionMismatch{Expected: p.Dim(), Actual: q.Dim()}
	}
	return floats.Dot(p.v, q.v), nil
}

// Cosine returns the cosine similarity of p and q. Both pointers must
// have non-zero norm.
func (p Pointer) Cosine(q Pointer) (float64, error) {
	d, err := p.Dot(q)
	if err != nil {
		return 0, err
	}
	np, nq := p.Norm(), q.Norm()
	if np == 0 || nq == 0 {
		return 0, ErrZeroVector
	}
	return d / (np * nq), nil
}

// Identity returns the identity element of the algebra for
// dimensionality d.
func Identity(alg algebra.Algebra, d int) (Pointer, error) {
	v, err := alg.Identity(d)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: alg, v: v}, nil
}

// Absorbing returns the absorbing element of the algebra for
// dimensionality d, if the algebra has one.
func Absorbing(alg algebra.Algebra, d int) (Pointer, error) {
	v, err := alg.Absorbing(d)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: alg, v: v}, nil
}

// Zero returns the zero element of the algebra for dimensionality d.
func Zero(alg algebra.Algebra, d int) (Pointer, error) {
	v, err := alg.Zero(d)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{alg: alg, v: v}, nil
}
