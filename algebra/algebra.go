package algebra

import (
	"errors"
	"fmt"
)

// Algebra defines the binding operations a vocabulary is parameterized
// with. All operations are pure: inputs are never mutated and every
// result is freshly allocated.
//
// Implementations must be safe for concurrent use.
type Algebra interface {
	// Name returns the stable name of the algebra ("hrr", "vtb").
	// Compiled graphs record this name so the execution substrate can
	// select a matching bind primitive.
	Name() string

	// IsValidDimension reports whether d is a usable vector
	// dimensionality for this algebra.
	IsValidDimension(d int) bool

	// Bind combines two vectors into a structured composite.
	// Both inputs must have the same, valid dimensionality.
	Bind(a, b []float64) ([]float64, error)

	// Invert returns the approximate inverse of v under Bind. The
	// inverse is exact only for unitary vectors.
	Invert(v []float64) ([]float64, error)

	// MakeUnitary projects v onto the closest vector whose repeated
	// self-binding preserves magnitude.
	MakeUnitary(v []float64) ([]float64, error)

	// Identity returns the element that acts as a no-op under Bind.
	Identity(d int) ([]float64, error)

	// Absorbing returns the element that collapses all structure under
	// repeated Bind. Algebras without one return ErrNoAbsorbingElement.
	Absorbing(d int) ([]float64, error)

	// Zero returns the element that produces itself when bound to any
	// other vector.
	Zero(d int) ([]float64, error)
}

// ErrNoAbsorbingElement is returned by algebras that have no absorbing
// element other than the zero vector.
var ErrNoAbsorbingElement = errors.New("algebra has no absorbing element")

// ErrDimensionMismatch indicates that two operand vectors have
// different dimensionalities.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates a dimensionality the algebra cannot
// operate on.
type ErrInvalidDimension struct {
	Dimension int
	Algebra   string
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension for %s algebra: %d", e.Algebra, e.Dimension)
}

// ByName returns a built-in algebra by its stable name.
//
// Compiled graphs are self-describing: they store the algebra name per
// vocabulary, and consumers resolve it through ByName.
func ByName(name string) (Algebra, bool) {
	switch name {
	case "hrr":
		return HRR{}, true
	case "vtb":
		return VTB{}, true
	default:
		return nil, false
	}
}

func checkPair(alg Algebra, a, b []float64) error {
	if len(a) != len(b) {
		return &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	if !alg.IsValidDimension(len(a)) {
		return &ErrInvalidDimension{Dimension: len(a), Algebra: alg.Name()}
	}
	return nil
}
