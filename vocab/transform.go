package vocab

import (
	"gonum.org/v1/gonum/mat"
)

// TransformOptions configures TransformTo.
type TransformOptions struct {
	// Keys restricts the transform to a subset of the source keys.
	// Default: all source keys.
	Keys []string

	// Populate adds keys missing from the target vocabulary to it
	// (mutating the target) using its normal generation policy.
	// Default: false.
	Populate bool

	// Scale overrides the normalization constant applied to the
	// transform. The default 0 means 1/n where n is the number of
	// keys entering the transform.
	Scale float64
}

// TransformTo builds the translate transform from v into target: a
// target.Dim() × v.Dim() matrix formed as the scaled sum of outer
// products target[key] ⊗ source[key] over the shared keys.
//
// Missing-key policy:
//   - Populate set: missing keys are generated into the target first.
//   - strict target: fails with ErrMissingKeys.
//   - non-strict target: proceeds on the intersection and logs a
//     warning.
//
// Applying the transform is lossy in general; translating and
// translating back does not recover the original vector.
func (v *Vocabulary) TransformTo(target *Vocabulary, optFns ...func(*TransformOptions)) (*mat.Dense, error) {
	var opts TransformOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	keys := opts.Keys
	if keys == nil {
		keys = v.keys
	}
	for _, key := range keys {
		if _, ok := v.entries[key]; !ok {
			return nil, &ErrUnknownPointer{Key: key, Vocab: v.label}
		}
	}

	var missing []string
	for _, key := range keys {
		if _, ok := target.entries[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		switch {
		case opts.Populate:
			for _, key := range missing {
				if _, err := target.addGenerated(key); err != nil {
					return nil, err
				}
			}
		case target.strict:
			return nil, &ErrMissingKeys{Keys: missing, Source: v.label, Target: target.label}
		default:
			v.log.Warn("translate transform restricted to shared keys",
				"source", v.label,
				"target", target.label,
				"missing", missing,
			)
			shared := keys[:0:0]
			for _, key := range keys {
				if _, ok := target.entries[key]; ok {
					shared = append(shared, key)
				}
			}
			keys = shared
		}
	}

	t := mat.NewDense(target.dim, v.dim, nil)
	if len(keys) == 0 {
		return t, nil
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1 / float64(len(keys))
	}
	for _, key := range keys {
		src := v.entries[key].Values()
		dst := target.entries[key].Values()
		for i := 0; i < target.dim; i++ {
			row := t.RawRowView(i)
			for j := 0; j < v.dim; j++ {
				row[j] += scale * dst[i] * src[j]
			}
		}
	}
	return t, nil
}
