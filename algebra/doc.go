// Package algebra provides the pluggable binding algebras used by
// vocabularies: HRR (holographic reduced representations, circular
// convolution in the transform domain) and VTB (vector-derived
// transformation binding).
//
// The algebra determines how two vectors are combined into a
// structured composite (Bind), how that composite is approximately
// taken apart again (Invert), and which special elements exist
// (identity, absorbing, zero). HRR binding is commutative and
// associative up to floating-point tolerance; VTB binding is neither.
package algebra
