// Package graph holds the compiled dataflow graph: typed ports,
// operator nodes (sum, scale, bind, invert, dot, gate, combine, plus
// const and input sources) and sink-assignment edges.
//
// The graph is an inert description. Statements stage their additions
// in a Fragment and commit atomically, so a failed statement never
// leaves a partially wired fragment behind. Evaluate provides a
// reference feedforward interpretation of the handoff contract for
// tests; real execution belongs to the external substrate.
package graph
