// Package vocab provides vocabularies: named, dimension-homogeneous,
// insertion-ordered symbol tables of semantic pointers, each bound to
// one binding algebra for its lifetime.
//
// A vocabulary doubles as a type in the expression type system.
// Cross-vocabulary operations are rejected unless cast explicitly:
// a reinterpret cast relabels a same-dimension vector without
// changing it, while a translate cast applies the key-matched linear
// transform built by TransformTo.
//
// Random pointer generation enforces a maximum pairwise similarity
// with a bounded retry budget; exhausting the budget keeps the best
// candidate and logs a warning unless the vocabulary is configured to
// fail instead.
package vocab
