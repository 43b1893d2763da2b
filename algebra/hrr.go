package algebra

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// HRR implements holographic reduced representations: binding is
// circular convolution, computed as an elementwise product in the
// Fourier domain (O(d log d)).
//
// HRR binding is commutative and associative up to floating-point
// tolerance.
type HRR struct{}

// Name returns "hrr".
func (HRR) Name() string { return "hrr" }

// IsValidDimension reports whether d is positive. HRR places no other
// constraint on the dimensionality.
func (HRR) IsValidDimension(d int) bool { return d > 0 }

// Bind computes the circular convolution of a and b.
func (h HRR) Bind(a, b []float64) ([]float64, error) {
	if err := checkPair(h, a, b); err != nil {
		return nil, err
	}

	d := len(a)
	fft := fourier.NewFFT(d)
	ca := fft.Coefficients(nil, a)
	cb := fft.Coefficients(nil, b)
	for i := range ca {
		ca[i] *= cb[i]
	}

	out := fft.Sequence(nil, ca)
	// Sequence(Coefficients(x)) scales by d.
	floats.Scale(1/float64(d), out)
	return out, nil
}

// Invert returns the involution of v: the first coefficient is kept
// and the remaining ones are reversed. This is the exact inverse under
// Bind only when v is unitary, and an approximate inverse otherwise.
func (h HRR) Invert(v []float64) ([]float64, error) {
	d := len(v)
	if !h.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: h.Name()}
	}

	out := make([]float64, d)
	out[0] = v[0]
	for i := 1; i < d; i++ {
		out[i] = v[d-i]
	}
	return out, nil
}

// MakeUnitary rescales every Fourier coefficient of v to unit
// magnitude while preserving its phase. The result keeps its length
// under repeated self-binding.
func (h HRR) MakeUnitary(v []float64) ([]float64, error) {
	d := len(v)
	if !h.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: h.Name()}
	}

	fft := fourier.NewFFT(d)
	c := fft.Coefficients(nil, v)
	for i, x := range c {
		m := cmplx.Abs(x)
		if m == 0 {
			// A zero bin has no phase; give it unit gain.
			c[i] = 1
			continue
		}
		c[i] = x / complex(m, 0)
	}

	out := fft.Sequence(nil, c)
	floats.Scale(1/float64(d), out)
	return out, nil
}

// Identity returns the unit impulse, which convolves with any vector
// to give that vector back.
func (h HRR) Identity(d int) ([]float64, error) {
	if !h.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: h.Name()}
	}
	out := make([]float64, d)
	out[0] = 1
	return out, nil
}

// Absorbing returns the constant vector 1/sqrt(d). Binding any vector
// with it collapses all structure except a constant offset.
func (h HRR) Absorbing(d int) ([]float64, error) {
	if !h.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: h.Name()}
	}
	out := make([]float64, d)
	c := 1 / math.Sqrt(float64(d))
	for i := range out {
		out[i] = c
	}
	return out, nil
}

// Zero returns the zero vector.
func (h HRR) Zero(d int) ([]float64, error) {
	if !h.IsValidDimension(d) {
		return nil, &ErrInvalidDimension{Dimension: d, Algebra: h.Name()}
	}
	return make([]float64, d), nil
}
