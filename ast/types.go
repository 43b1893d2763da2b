package ast

import (
	"fmt"

	"github.com/hupe1980/semago/pointer"
)

// Vocab is the view of a vocabulary the expression layer needs. It is
// implemented by *vocab.Vocabulary.
//
// Type compatibility is decided by identity: two operands are
// compatible only when they carry the same Vocab value, not merely
// vocabularies of equal dimensionality.
type Vocab interface {
	// Label returns the vocabulary's unique label.
	Label() string
	// Dim returns the vector dimensionality of the vocabulary.
	Dim() int
	// AlgebraName returns the name of the vocabulary's binding algebra.
	AlgebraName() string
	// Resolve returns the pointer for name, applying the vocabulary's
	// strictness policy to unknown names.
	Resolve(name string) (pointer.Pointer, error)
}

// Type is the resolved type of an expression node: a specific
// vocabulary, or scalar.
type Type interface {
	fmt.Stringer
	isType()
}

// ScalarType is the type of numeric expressions.
type ScalarType struct{}

func (ScalarType) isType()        {}
func (ScalarType) String() string { return "scalar" }

// Scalar is the single ScalarType value.
var Scalar Type = ScalarType{}

// VocabType is the type of vector expressions. Two VocabTypes are
// equal only if they reference the identical vocabulary.
type VocabType struct {
	Vocab Vocab
}

func (VocabType) isType() {}

func (t VocabType) String() string {
	if t.Vocab == nil {
		return "vocab(?)"
	}
	return fmt.Sprintf("vocab(%s)", t.Vocab.Label())
}

// ErrVocabMismatch indicates an operation across two distinct
// vocabularies without an explicit cast.
type ErrVocabMismatch struct {
	Op    string
	Left  string
	Right string
}

func (e *ErrVocabMismatch) Error() string {
	return fmt.Sprintf(
		"vocabulary mismatch in %s: %q and %q are distinct vocabularies; cast one operand with reinterpret or translate",
		e.Op, e.Left, e.Right,
	)
}

// ErrTypeMismatch indicates an operand of the wrong type (for
// example, a vector where a scalar utility is required).
type ErrTypeMismatch struct {
	Op   string
	Want string
	Got  string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch in %s: want %s, got %s", e.Op, e.Want, e.Got)
}

// ErrDimensionMismatch indicates a reinterpret cast across
// vocabularies of unequal dimensionality.
type ErrDimensionMismatch struct {
	Op       string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch in %s: expected %d, got %d", e.Op, e.Expected, e.Actual)
}
