// Package ast represents semantic pointer expressions as typed
// abstract syntax trees: construction through builder functions or
// the text parser, eager bottom-up type inference against an ambient
// vocabulary context, and position-carrying parse errors.
//
// The type system is vocabulary-scoped: every vector expression is
// typed by the identical vocabulary its operands came from, and
// operations across distinct vocabularies are rejected unless an
// explicit reinterpret or translate cast is present.
package ast
