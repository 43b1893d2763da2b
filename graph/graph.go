package graph

import (
	"fmt"
)

// PortID identifies a typed value channel in the graph.
type PortID int

// NodeID identifies an operator node in the graph.
type NodeID int

// OpKind enumerates the operator kinds of the handoff contract.
type OpKind uint8

const (
	OpConst OpKind = iota
	OpInput
	OpSum
	OpScale
	OpBind
	OpInvert
	OpDot
	OpGate
	OpCombine
)

var opNames = map[OpKind]string{
	OpConst:   "const",
	OpInput:   "input",
	OpSum:     "sum",
	OpScale:   "scale",
	OpBind:    "bind",
	OpInvert:  "invert",
	OpDot:     "dot",
	OpGate:    "gate",
	OpCombine: "combine",
}

func (k OpKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// MarshalText encodes the operator kind as its stable name.
func (k OpKind) MarshalText() ([]byte, error) {
	s, ok := opNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown op kind %d", uint8(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes an operator kind from its stable name.
func (k *OpKind) UnmarshalText(text []byte) error {
	for kind, name := range opNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown op kind %q", string(text))
}

// Port is a typed value channel. A port with an empty Vocab is
// scalar-typed and has dimension 1.
type Port struct {
	ID    PortID `json:"id"`
	Dim   int    `json:"dimension"`
	Vocab string `json:"vocabulary,omitempty"`
}

// Scalar reports whether the port carries a scalar signal.
func (p Port) Scalar() bool { return p.Vocab == "" }

// Node is an operator node. Inputs and Outputs reference ports.
//
// Payload fields by kind:
//   - OpConst: Const holds the emitted vector.
//   - OpInput: Label holds the external handle.
//   - OpScale: Transform holds a linear map, or Factor a constant
//     factor; with two inputs the second input is a dynamic scalar
//     factor instead.
//   - OpGate: one output gate signal per input utility, winner take
//     most.
//   - OpCombine: inputs are (gate, effect) pairs in order; the output
//     is the sum of the gated effects.
type Node struct {
	ID        NodeID      `json:"id"`
	Kind      OpKind      `json:"kind"`
	Inputs    []PortID    `json:"inputs,omitempty"`
	Outputs   []PortID    `json:"outputs"`
	Const     []float64   `json:"const,omitempty"`
	Factor    float64     `json:"factor,omitempty"`
	Transform [][]float64 `json:"transform,omitempty"`
	Label     string      `json:"label,omitempty"`
}

// VocabSpec describes a vocabulary referenced by ports so the
// substrate can select a matching bind primitive.
type VocabSpec struct {
	ID      string `json:"id"`
	Dim     int    `json:"dimension"`
	Algebra string `json:"algebra"`
}

// SinkSpec is a declared, typed sink the substrate must provide.
type SinkSpec struct {
	Name  string `json:"name"`
	Dim   int    `json:"dimension"`
	Vocab string `json:"vocabulary,omitempty"`
}

// Edge assigns the value of a port to a sink. A sink with several
// assignment edges receives their superposition.
type Edge struct {
	From PortID `json:"from"`
	Sink string `json:"sink"`
}

// Spec is the complete handoff contract consumed by the execution
// substrate.
type Spec struct {
	Ports  []Port      `json:"ports"`
	Nodes  []Node      `json:"nodes"`
	Vocabs []VocabSpec `json:"vocabularies,omitempty"`
	Sinks  []SinkSpec  `json:"sinks,omitempty"`
	Edges  []Edge      `json:"edges,omitempty"`
}

// Graph is an inert, append-only description of a dataflow
// computation. Nodes are appended in issuance order, which is also a
// valid topological order: a node only references ports created
// before it.
//
// Mutation goes through fragments (see NewFragment), which stage a
// statement's worth of ports, nodes and edges and commit them
// atomically.
type Graph struct {
	ports  []Port
	nodes  []Node
	vocabs []VocabSpec
	sinks  []SinkSpec
	edges  []Edge

	vocabIndex map[string]int
	sinkIndex  map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		vocabIndex: make(map[string]int),
		sinkIndex:  make(map[string]int),
	}
}

// Ports returns the graph's ports in creation order.
func (g *Graph) Ports() []Port { return append([]Port(nil), g.ports...) }

// Nodes returns the graph's operator nodes in issuance order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Vocabs returns the vocabularies referenced by the graph.
func (g *Graph) Vocabs() []VocabSpec { return append([]VocabSpec(nil), g.vocabs...) }

// Sinks returns the declared sinks.
func (g *Graph) Sinks() []SinkSpec { return append([]SinkSpec(nil), g.sinks...) }

// Edges returns the sink-assignment edges.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Spec returns the handoff contract for the graph.
func (g *Graph) Spec() *Spec {
	return &Spec{
		Ports:  g.Ports(),
		Nodes:  g.Nodes(),
		Vocabs: g.Vocabs(),
		Sinks:  g.Sinks(),
		Edges:  g.Edges(),
	}
}

// DeclareSink registers a typed sink. Redeclaring a name fails.
func (g *Graph) DeclareSink(name string, dim int, vocabID string) error {
	if _, ok := g.sinkIndex[name]; ok {
		return fmt.Errorf("sink %q already declared", name)
	}
	g.sinkIndex[name] = len(g.sinks)
	g.sinks = append(g.sinks, SinkSpec{Name: name, Dim: dim, Vocab: vocabID})
	return nil
}

// Sink returns the spec of a declared sink.
func (g *Graph) Sink(name string) (SinkSpec, bool) {
	i, ok := g.sinkIndex[name]
	if !ok {
		return SinkSpec{}, false
	}
	return g.sinks[i], true
}

// Port returns the port with the given ID.
func (g *Graph) Port(id PortID) (Port, bool) {
	if id < 0 || int(id) >= len(g.ports) {
		return Port{}, false
	}
	return g.ports[int(id)], true
}

// FromSpec rebuilds a graph from a handoff spec, validating that port
// and node IDs are dense and in order.
func FromSpec(spec *Spec) (*Graph, error) {
	g := New()
	for i, p := range spec.Ports {
		if int(p.ID) != i {
			return nil, fmt.Errorf("port %d has non-sequential id %d", i, p.ID)
		}
	}
	for i, n := range spec.Nodes {
		if int(n.ID) != i {
			return nil, fmt.Errorf("node %d has non-sequential id %d", i, n.ID)
		}
		for _, in := range n.Inputs {
			if int(in) < 0 || int(in) >= len(spec.Ports) {
				return nil, fmt.Errorf("node %d references unknown input port %d", i, in)
			}
		}
		for _, out := range n.Outputs {
			if int(out) < 0 || int(out) >= len(spec.Ports) {
				return nil, fmt.Errorf("node %d references unknown output port %d", i, out)
			}
		}
	}
	g.ports = append(g.ports, spec.Ports...)
	g.nodes = append(g.nodes, spec.Nodes...)
	for _, v := range spec.Vocabs {
		g.vocabIndex[v.ID] = len(g.vocabs)
		g.vocabs = append(g.vocabs, v)
	}
	for _, s := range spec.Sinks {
		if err := g.DeclareSink(s.Name, s.Dim, s.Vocab); err != nil {
			return nil, err
		}
	}
	for _, e := range spec.Edges {
		if _, ok := g.sinkIndex[e.Sink]; !ok {
			return nil, fmt.Errorf("edge references unknown sink %q", e.Sink)
		}
		if int(e.From) < 0 || int(e.From) >= len(spec.Ports) {
			return nil, fmt.Errorf("edge references unknown port %d", e.From)
		}
	}
	g.edges = append(g.edges, spec.Edges...)
	return g, nil
}
