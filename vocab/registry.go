package vocab

import (
	"fmt"
	"sort"
)

// Registry caches one default vocabulary per dimensionality. It is
// owned by a single builder instance and must not be shared across
// concurrent construction threads.
type Registry struct {
	optFns []func(*Options)
	vocabs map[int]*Vocabulary
}

// NewRegistry creates a Registry whose vocabularies are created with
// the given option functions. When a base seed is configured, each
// dimensionality derives its own deterministic seed from it.
func NewRegistry(optFns ...func(*Options)) *Registry {
	return &Registry{
		optFns: optFns,
		vocabs: make(map[int]*Vocabulary),
	}
}

// GetOrCreate returns the default vocabulary for dimensionality d,
// creating and caching it on first use under the label "default<d>".
func (r *Registry) GetOrCreate(d int) (*Vocabulary, error) {
	if v, ok := r.vocabs[d]; ok {
		return v, nil
	}

	v, err := New(fmt.Sprintf("default%d", d), d, append(r.optFns, func(o *Options) {
		if o.Seed != nil {
			derived := *o.Seed + int64(d)
			o.Seed = &derived
		}
	})...)
	if err != nil {
		return nil, err
	}
	r.vocabs[d] = v
	return v, nil
}

// Dimensions returns the dimensionalities with cached defaults, in
// ascending order.
func (r *Registry) Dimensions() []int {
	dims := make([]int, 0, len(r.vocabs))
	for d := range r.vocabs {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	return dims
}
