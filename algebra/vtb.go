package algebra

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// VTB implements vector-derived transformation binding: the right
// operand induces a structured d×d transform that is applied to the
// left operand (O(d^2)).
//
// VTB requires the dimensionality to be a square number. Binding is
// neither commutative nor associative.
type VTB struct{}

// Name returns "vtb".
func (VTB) Name() string { return "vtb" }

// IsValidDimension reports whether d is a positive square number.
func (VTB) IsValidDimension(d int) bool {
	if d < 1 {
		return false
	}
	sub := int(math.Sqrt(float64(d)))
	return sub*sub == d
}

func (v VTB) subDim(d int) (int, error) {
	if !v.IsValidDimension(d) {
		return 0, &ErrInvalidDimension{Dimension: d, Algebra: v.Name()}
	}
	return int(math.Sqrt(float64(d))), nil
}

// Bind applies the binding matrix of b to a blockwise: each length-d'
// block of a is multiplied by sqrt(d') times the d'×d' reshape of b.
func (v VTB) Bind(a, b []float64) ([]float64, error) {
	if err := checkPair(v, a, b); err != nil {
		return nil, err
	}
	d := len(a)
	sub, err := v.subDim(d)
	if err != nil {
		return nil, err
	}

	bm := mat.NewDense(sub, sub, b)
	scale := math.Sqrt(float64(sub))
	out := make([]float64, d)
	var y mat.VecDense
	for blk := 0; blk < sub; blk++ {
		x := mat.NewVecDense(sub, a[blk*sub:(blk+1)*sub])
		y.MulVec(bm, x)
		for j := 0; j < sub; j++ {
			out[blk*sub+j] = scale * y.AtVec(j)
		}
	}
	return out, nil
}

// Invert permutes v so that its binding matrix becomes the transpose
// of the original: the d'×d' reshape of v is transposed and
// re-flattened.
func (v VTB) Invert(p []float64) ([]float64, error) {
	sub, err := v.subDim(len(p))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(p))
	for i := 0; i < sub; i++ {
		for j := 0; j < sub; j++ {
			out[j*sub+i] = p[i*sub+j]
		}
	}
	return out, nil
}

// MakeUnitary orthogonalizes the d'×d' reshape of p row by row and
// rescales it so that binding with the result preserves magnitude.
func (v VTB) MakeUnitary(p []float64) ([]float64, error) {
	sub, err := v.subDim(len(p))
	if err != nil {
		return nil, err
	}

	m := mat.NewDense(sub, sub, append([]float64(nil), p...))
	for i := 1; i < sub; i++ {
		// Choose m[i,:i] so that row i is orthogonal to rows 0..i-1:
		// solve m[:i,:i] x = -m[:i,i:] * m[i,i:].
		top := m.Slice(0, i, i, sub)
		row := mat.NewVecDense(sub-i, mat.Row(nil, i, m)[i:])
		y := mat.NewVecDense(i, nil)
		y.MulVec(top, row)
		y.ScaleVec(-1, y)

		var x mat.VecDense
		if err := x.SolveVec(m.Slice(0, i, 0, i), y); err != nil {
			return nil, fmt.Errorf("make unitary: %w", err)
		}
		for j := 0; j < i; j++ {
			m.Set(i, j, x.AtVec(j))
		}
	}

	scale := math.Sqrt(float64(sub))
	for i := 0; i < sub; i++ {
		row := m.RawRowView(i)
		n := floats.Norm(row, 2)
		if n == 0 {
			return nil, fmt.Errorf("make unitary: zero row %d", i)
		}
		floats.Scale(1/(n*scale), row)
	}

	out := make([]float64, len(p))
	for i := 0; i < sub; i++ {
		copy(out[i*sub:(i+1)*sub], m.RawRowView(i))
	}
	return out, nil
}

// Identity returns the flattened d'×d' identity matrix scaled by
// d^(-1/4).
func (v VTB) Identity(d int) ([]float64, error) {
	sub, err := v.subDim(d)
	if err != nil {
		return nil, err
	}
	out := make([]float64, d)
	c := 1 / math.Pow(float64(d), 0.25)
	for i := 0; i < sub; i++ {
		out[i*sub+i] = c
	}
	return out, nil
}

// Absorbing returns ErrNoAbsorbingElement: VTB has no absorbing
// element other than the zero vector.
func (v VTB) Absorbing(d int) ([]float64, error) {
	if !v.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: v.Name()}
	}
	return nil, ErrNoAbsorbingElement
}

// Zero returns the zero vector.
func (v VTB) Zero(d int) ([]float64, error) {
	if !v.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: v.Name()}
	}
	return make([]float64, d), nil
}

// BindingMatrix returns the d×d matrix M such that Bind(x, p) == M x.
// With swapInputs, the returned matrix instead satisfies
// Bind(p, x) == M x.
func (v VTB) BindingMatrix(p []float64, swapInputs bool) (*mat.Dense, error) {
	sub, err := v.subDim(len(p))
	if err != nil {
		return nil, err
	}
	d := len(p)

	scale := math.Sqrt(float64(sub))
	m := mat.NewDense(d, d, nil)
	for blk := 0; blk < sub; blk++ {
		for i := 0; i < sub; i++ {
			for j := 0; j < sub; j++ {
				m.Set(blk*sub+i, blk*sub+j, scale*p[i*sub+j])
			}
		}
	}

	if swapInputs {
		inv, err := v.InversionMatrix(d)
		if err != nil {
			return nil, err
		}
		var swapped mat.Dense
		swapped.Mul(inv, m)
		return &swapped, nil
	}
	return m, nil
}

// InversionMatrix returns the permutation matrix P with
// Invert(p) == P p. The same matrix swaps the operands of a bound
// state.
func (v VTB) InversionMatrix(d int) (*mat.Dense, error) {
	sub, err := v.subDim(d)
	if err != nil {
		return nil, err
	}
	m := mat.NewDense(d, d, nil)
	for i := 0; i < sub; i++ {
		for j := 0; j < sub; j++ {
			m.Set(j*sub+i, i*sub+j, 1)
		}
	}
	return m, nil
}
