package vocab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for pointer names that are not valid
// identifiers starting with an uppercase letter.
var ErrInvalidKey = errors.New("pointer names must be identifiers starting with an uppercase letter")

// ErrDuplicateKey indicates an insertion under a name that already
// exists. Entries are never silently overwritten.
type ErrDuplicateKey struct {
	Key   string
	Vocab string
}

func (e *ErrDuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key %q in vocabulary %q", e.Key, e.Vocab)
}

// ErrUnknownPointer indicates a strict-mode reference to a name the
// vocabulary does not contain.
type ErrUnknownPointer struct {
	Key   string
	Vocab string
}

func (e *ErrUnknownPointer) Error() string {
	return fmt.Sprintf("unknown pointer %q in strict vocabulary %q", e.Key, e.Vocab)
}

// ErrUndefinedKey indicates a forward or external reference inside a
// populate expression. Right-hand sides may only reference names
// defined earlier in the same vocabulary.
type ErrUndefinedKey struct {
	Key   string
	Vocab string
}

func (e *ErrUndefinedKey) Error() string {
	return fmt.Sprintf("undefined key %q in populate expression for vocabulary %q", e.Key, e.Vocab)
}

// ErrMissingKeys indicates a translate transform into a strict target
// vocabulary that lacks keys present in the source.
type ErrMissingKeys struct {
	Keys   []string
	Source string
	Target string
}

func (e *ErrMissingKeys) Error() string {
	return fmt.Sprintf(
		"target vocabulary %q is missing keys [%s] present in %q; translate with populate to add them",
		e.Target, strings.Join(e.Keys, ", "), e.Source,
	)
}

// ErrSimilarityConstraint indicates that random generation exhausted
// its retry budget without finding a vector within the pairwise
// similarity limit. It is non-fatal by default (logged as a warning)
// and only returned when the vocabulary is configured to fail on it.
type ErrSimilarityConstraint struct {
	Key        string
	Vocab      string
	Similarity float64
	Limit      float64
}

func (e *ErrSimilarityConstraint) Error() string {
	return fmt.Sprintf(
		"similarity constraint exceeded for %q in vocabulary %q: best candidate at %.4f, limit %.4f",
		e.Key, e.Vocab, e.Similarity, e.Limit,
	)
}
