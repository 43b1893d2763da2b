package vocab

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/hupe1980/semago/algebra"
	"github.com/hupe1980/semago/pointer"
)

// Options configures a Vocabulary.
type Options struct {
	// Algebra is the binding algebra all pointers in the vocabulary
	// share. Default: algebra.HRR.
	Algebra algebra.Algebra

	// Seed seeds random pointer generation. If nil, a time-based seed
	// is used and results are not reproducible across runs.
	Seed *int64

	// Strict rejects references to unknown names instead of
	// auto-generating them. Default: true.
	Strict bool

	// MaxSimilarity is the maximum allowed absolute pairwise
	// similarity between a generated pointer and the existing
	// entries. Default: 0.1.
	MaxSimilarity float64

	// MaxRetries is the generation retry budget per entry.
	// Default: 100.
	MaxRetries int

	// FailOnSimilarity turns the similarity-constraint warning into a
	// fatal error. Default: false (best candidate is kept and a
	// warning is logged).
	FailOnSimilarity bool

	// Logger receives structured warnings and debug output.
	Logger *slog.Logger
}

// DefaultOptions returns the default vocabulary options.
func DefaultOptions() Options {
	return Options{
		Algebra:       algebra.HRR{},
		Strict:        true,
		MaxSimilarity: 0.1,
		MaxRetries:    100,
	}
}

// Vocabulary is a named, dimension-homogeneous, insertion-ordered
// symbol table of pointers, bound to one binding algebra for its
// lifetime. It acts as a type in the expression type system:
// compatibility is decided by vocabulary identity, never by
// dimensionality alone.
//
// A Vocabulary only grows; entries are never removed or overwritten.
// It is not safe for concurrent mutation.
type Vocabulary struct {
	label   string
	dim     int
	alg     algebra.Algebra
	strict  bool
	maxSim  float64
	retries int
	failSim bool
	gen     *pointer.Generator
	log     *slog.Logger

	keys    []string
	entries map[string]pointer.Pointer
}

// New creates a Vocabulary with the given label and dimensionality.
func New(label string, d int, optFns ...func(*Options)) (*Vocabulary, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Algebra == nil {
		opts.Algebra = algebra.HRR{}
	}
	if !opts.Algebra.IsValidDimension(d) {
		return nil, &algebra.ErrInvalidDimension{Dimension: d, Algebra: opts.Algebra.Name()}
	}

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Vocabulary{
		label:   label,
		dim:     d,
		alg:     opts.Algebra,
		strict:  opts.Strict,
		maxSim:  opts.MaxSimilarity,
		retries: opts.MaxRetries,
		failSim: opts.FailOnSimilarity,
		gen:     pointer.NewGenerator(opts.Algebra, seed),
		log:     log,
		entries: make(map[string]pointer.Pointer),
	}, nil
}

// Label returns the vocabulary's label.
func (v *Vocabulary) Label() string { return v.label }

// Dim returns the vector dimensionality of the vocabulary.
func (v *Vocabulary) Dim() int { return v.dim }

// Algebra returns the vocabulary's binding algebra.
func (v *Vocabulary) Algebra() algebra.Algebra { return v.alg }

// AlgebraName returns the name of the vocabulary's binding algebra.
func (v *Vocabulary) AlgebraName() string { return v.alg.Name() }

// Strict reports whether unknown references are rejected.
func (v *Vocabulary) Strict() bool { return v.strict }

// Len returns the number of entries.
func (v *Vocabulary) Len() int { return len(v.keys) }

// Keys returns the entry names in insertion order.
func (v *Vocabulary) Keys() []string { return append([]string(nil), v.keys...) }

// Get returns the pointer stored under name.
func (v *Vocabulary) Get(name string) (pointer.Pointer, bool) {
	p, ok := v.entries[name]
	return p, ok
}

// Add inserts a pointer under name. No similarity check is applied.
// Inserting under an existing name fails with ErrDuplicateKey.
func (v *Vocabulary) Add(name string, p pointer.Pointer) error {
	if !validKey(name) {
		return ErrInvalidKey
	}
	if _, ok := v.entries[name]; ok {
		return &ErrDuplicateKey{Key: name, Vocab: v.label}
	}
	if p.Dim() != v.dim {
		return &algebra.ErrDimensionMismatch{Expected: v.dim, Actual: p.Dim()}
	}
	v.keys = append(v.keys, name)
	v.entries[name] = p
	return nil
}

// Resolve returns the pointer for name, applying the strictness
// policy: in strict mode an unknown name fails with
// ErrUnknownPointer; otherwise it is auto-generated and added.
func (v *Vocabulary) Resolve(name string) (pointer.Pointer, error) {
	if p, ok := v.entries[name]; ok {
		return p, nil
	}
	if v.strict {
		return pointer.Pointer{}, &ErrUnknownPointer{Key: name, Vocab: v.label}
	}
	v.log.Debug("auto-adding unknown pointer", "vocabulary", v.label, "key", name)
	return v.addGenerated(name)
}

// addGenerated creates a random pointer for name under the similarity
// policy and inserts it.
func (v *Vocabulary) addGenerated(name string) (pointer.Pointer, error) {
	if !validKey(name) {
		return pointer.Pointer{}, ErrInvalidKey
	}
	if _, ok := v.entries[name]; ok {
		return pointer.Pointer{}, &ErrDuplicateKey{Key: name, Vocab: v.label}
	}

	p, err := v.generate(name)
	if err != nil {
		return pointer.Pointer{}, err
	}
	v.keys = append(v.keys, name)
	v.entries[name] = p
	return p, nil
}

// generate draws random unit vectors until the maximum pairwise
// similarity against all existing entries is within the limit, or the
// retry budget is exhausted. On exhaustion the best candidate found
// is kept; this is a warning by default and an error only with
// FailOnSimilarity.
func (v *Vocabulary) generate(name string) (pointer.Pointer, error) {
	var best pointer.Pointer
	bestSim := math.Inf(1)

	for attempt := 0; attempt <= v.retries; attempt++ {
		p, err := v.gen.Unit(v.dim)
		if err != nil {
			return pointer.Pointer{}, err
		}
		sim := v.maxAbsSimilarity(p)
		if sim < bestSim {
			best, bestSim = p, sim
		}
		if sim <= v.maxSim {
			return best, nil
		}
	}

	if v.failSim {
		return pointer.Pointer{}, &ErrSimilarityConstraint{
			Key: name, Vocab: v.label, Similarity: bestSim, Limit: v.maxSim,
		}
	}
	v.log.Warn("similarity constraint exceeded, keeping best candidate",
		"vocabulary", v.label,
		"key", name,
		"similarity", bestSim,
		"limit", v.maxSim,
		"retries", v.retries,
	)
	return best, nil
}

func (v *Vocabulary) maxAbsSimilarity(p pointer.Pointer) float64 {
	worst := 0.0
	for _, key := range v.keys {
		sim, err := p.Dot(v.entries[key])
		if err != nil {
			continue // entries are dimension-homogeneous by invariant
		}
		if s := math.Abs(sim); s > worst {
			worst = s
		}
	}
	return worst
}

// Subset creates a vocabulary containing aliases of the given entries.
// The aliased vectors are bit-identical to the originals, which makes
// a reinterpret cast between the two vocabularies exact.
func (v *Vocabulary) Subset(label string, keys ...string) (*Vocabulary, error) {
	sub, err := New(label, v.dim, func(o *Options) {
		o.Algebra = v.alg
		o.Strict = v.strict
		o.MaxSimilarity = v.maxSim
		o.MaxRetries = v.retries
		o.FailOnSimilarity = v.failSim
		o.Logger = v.log
	})
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		p, ok := v.entries[key]
		if !ok {
			return nil, &ErrUnknownPointer{Key: key, Vocab: v.label}
		}
		if err := sub.Add(key, p); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

func validKey(name string) bool {
	if name == "" {
		return false
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
