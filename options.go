package semago

import (
	"github.com/hupe1980/semago/algebra"
)

// Options configures a Compiler. The vocabulary-related settings are
// forwarded to every vocabulary the compiler creates; explicitly
// constructed vocabularies keep their own settings.
type Options struct {
	// Algebra is the binding algebra for compiler-created
	// vocabularies. Default: algebra.HRR.
	Algebra algebra.Algebra

	// Seed seeds random pointer generation. If nil, a time-based seed
	// is used and results are not reproducible across runs. Each
	// dimensionality derives its own deterministic seed from this
	// value.
	Seed *int64

	// Strict rejects references to unknown pointer names instead of
	// auto-generating them. Default: true.
	Strict bool

	// MaxSimilarity is the maximum allowed absolute pairwise
	// similarity between generated pointers. Default: 0.1.
	MaxSimilarity float64

	// MaxRetries is the pointer-generation retry budget per entry.
	// Default: 100.
	MaxRetries int

	// FailOnSimilarity turns the similarity-constraint warning into a
	// fatal error. Default: false.
	FailOnSimilarity bool

	// Logger receives structured warnings and debug output. Default:
	// NoopLogger().
	Logger *Logger
}

// DefaultOptions returns the default compiler options.
func DefaultOptions() Options {
	return Options{
		Algebra:       algebra.HRR{},
		Strict:        true,
		MaxSimilarity: 0.1,
		MaxRetries:    100,
	}
}

// WithAlgebra configures the binding algebra for compiler-created
// vocabularies.
//
// If nil is passed, algebra.HRR is used.
func WithAlgebra(a algebra.Algebra) func(*Options) {
	return func(o *Options) {
		if a == nil {
			a = algebra.HRR{}
		}
		o.Algebra = a
	}
}

// WithSeed configures a deterministic base seed for random pointer
// generation.
func WithSeed(seed int64) func(*Options) {
	return func(o *Options) {
		o.Seed = &seed
	}
}

// WithStrict configures whether unknown pointer names are rejected
// (true) or auto-generated (false).
func WithStrict(strict bool) func(*Options) {
	return func(o *Options) {
		o.Strict = strict
	}
}

// WithMaxSimilarity configures the pairwise similarity limit for
// generated pointers.
func WithMaxSimilarity(limit float64) func(*Options) {
	return func(o *Options) {
		o.MaxSimilarity = limit
	}
}

// WithMaxRetries configures the pointer-generation retry budget.
func WithMaxRetries(retries int) func(*Options) {
	return func(o *Options) {
		o.MaxRetries = retries
	}
}

// WithFailOnSimilarity makes an exhausted similarity retry budget a
// fatal error instead of a warning.
func WithFailOnSimilarity(fail bool) func(*Options) {
	return func(o *Options) {
		o.FailOnSimilarity = fail
	}
}

// WithLogger configures the compiler's logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) {
		if l == nil {
			l = NoopLogger()
		}
		o.Logger = l
	}
}
