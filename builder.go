// This file implements the fluent builder API for creating and configuring
// Compiler instances. Builders are immutable - each method returns a new
// builder with the updated configuration.
package semago

import (
	"github.com/hupe1980/semago/algebra"
)

// HRR creates a compiler builder using circular convolution as the
// binding algebra. HRR works for every dimensionality and is the
// common default.
//
// The builder is immutable - each method returns a new builder with
// the updated configuration.
//
// Example:
//
//	c, err := semago.HRR().
//	    RandomSeed(42).
//	    Strict(false).
//	    Build()
func HRR() Builder {
	return Builder{opts: DefaultOptions()}
}

// VTB creates a compiler builder using vector-derived transformation
// binding. VTB requires square dimensionalities (d = k*k) and does not
// commute.
func VTB() Builder {
	b := Builder{opts: DefaultOptions()}
	b.opts.Algebra = algebra.VTB{}
	return b
}

// Builder is an immutable fluent builder for creating Compiler
// instances. Each method returns a new builder with the updated
// configuration.
type Builder struct {
	opts Options
}

// Algebra sets the binding algebra for compiler-created vocabularies.
func (b Builder) Algebra(a algebra.Algebra) Builder {
	if a == nil {
		a = algebra.HRR{}
	}
	b.opts.Algebra = a
	return b
}

// RandomSeed sets a deterministic base seed for pointer generation.
// Without a seed, pointers differ across runs.
func (b Builder) RandomSeed(seed int64) Builder {
	b.opts.Seed = &seed
	return b
}

// Strict configures whether unknown pointer names are rejected (true)
// or auto-generated on first use (false).
// Default: true.
func (b Builder) Strict(strict bool) Builder {
	b.opts.Strict = strict
	return b
}

// MaxSimilarity sets the maximum allowed absolute pairwise similarity
// between generated pointers.
// Default: 0.1.
func (b Builder) MaxSimilarity(limit float64) Builder {
	b.opts.MaxSimilarity = limit
	return b
}

// MaxRetries sets the pointer-generation retry budget per entry.
// Default: 100.
func (b Builder) MaxRetries(retries int) Builder {
	b.opts.MaxRetries = retries
	return b
}

// FailOnSimilarity makes an exhausted similarity retry budget a fatal
// error instead of a logged warning.
// Default: false.
func (b Builder) FailOnSimilarity(fail bool) Builder {
	b.opts.FailOnSimilarity = fail
	return b
}

// Logger sets the compiler's logger.
func (b Builder) Logger(l *Logger) Builder {
	b.opts.Logger = l
	return b
}

// Build creates the Compiler.
func (b Builder) Build() (*Compiler, error) {
	opts := b.opts
	return newCompiler(opts)
}
