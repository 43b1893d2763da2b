// Package pointer provides the immutable semantic pointer value type:
// a fixed-dimension real vector bound to a binding algebra, combined
// through superposition, binding, scaling and similarity operations.
package pointer
