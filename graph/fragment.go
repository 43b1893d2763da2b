package graph

import (
	"fmt"
)

// Fragment stages one statement's worth of graph construction. All
// additions are invisible to the graph until Commit; dropping a
// fragment without committing leaves the graph untouched, which gives
// statement-level atomicity.
type Fragment struct {
	g      *Graph
	ports  []Port
	nodes  []Node
	vocabs []VocabSpec
	edges  []Edge
}

// NewFragment starts a staged construction unit on the graph.
func (g *Graph) NewFragment() *Fragment {
	return &Fragment{g: g}
}

// Commit appends everything staged in the fragment to the graph.
// The fragment must not be used afterwards.
func (f *Fragment) Commit() {
	f.g.ports = append(f.g.ports, f.ports...)
	f.g.nodes = append(f.g.nodes, f.nodes...)
	for _, v := range f.vocabs {
		if _, ok := f.g.vocabIndex[v.ID]; ok {
			continue
		}
		f.g.vocabIndex[v.ID] = len(f.g.vocabs)
		f.g.vocabs = append(f.g.vocabs, v)
	}
	f.g.edges = append(f.g.edges, f.edges...)
	f.ports, f.nodes, f.vocabs, f.edges = nil, nil, nil, nil
}

// EnsureVocab stages a vocabulary spec unless the graph already
// carries it.
func (f *Fragment) EnsureVocab(id string, dim int, algebraName string) {
	if _, ok := f.g.vocabIndex[id]; ok {
		return
	}
	for _, v := range f.vocabs {
		if v.ID == id {
			return
		}
	}
	f.vocabs = append(f.vocabs, VocabSpec{ID: id, Dim: dim, Algebra: algebraName})
}

// Port returns a staged or committed port by ID.
func (f *Fragment) Port(id PortID) (Port, bool) {
	if p, ok := f.g.Port(id); ok {
		return p, true
	}
	i := int(id) - len(f.g.ports)
	if i < 0 || i >= len(f.ports) {
		return Port{}, false
	}
	return f.ports[i], true
}

func (f *Fragment) addPort(dim int, vocabID string) PortID {
	id := PortID(len(f.g.ports) + len(f.ports))
	f.ports = append(f.ports, Port{ID: id, Dim: dim, Vocab: vocabID})
	return id
}

func (f *Fragment) addNode(n Node) NodeID {
	n.ID = NodeID(len(f.g.nodes) + len(f.nodes))
	f.nodes = append(f.nodes, n)
	return n.ID
}

// AddConst stages a constant-vector node and returns its output port.
func (f *Fragment) AddConst(vec []float64, vocabID, label string) PortID {
	out := f.addPort(len(vec), vocabID)
	f.addNode(Node{
		Kind:    OpConst,
		Outputs: []PortID{out},
		Const:   append([]float64(nil), vec...),
		Label:   label,
	})
	return out
}

// AddScalarConst stages a constant scalar node.
func (f *Fragment) AddScalarConst(x float64, label string) PortID {
	out := f.addPort(1, "")
	f.addNode(Node{
		Kind:    OpConst,
		Outputs: []PortID{out},
		Const:   []float64{x},
		Label:   label,
	})
	return out
}

// AddInput stages an externally driven input port. A vocabID of ""
// creates a scalar input of dimension 1.
func (f *Fragment) AddInput(handle string, dim int, vocabID string) PortID {
	out := f.addPort(dim, vocabID)
	f.addNode(Node{
		Kind:    OpInput,
		Outputs: []PortID{out},
		Label:   handle,
	})
	return out
}

// AddSum stages an elementwise sum over same-dimension inputs.
func (f *Fragment) AddSum(inputs []PortID) (PortID, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("sum requires at least one input")
	}
	first, ok := f.Port(inputs[0])
	if !ok {
		return 0, fmt.Errorf("unknown port %d", inputs[0])
	}
	for _, id := range inputs[1:] {
		p, ok := f.Port(id)
		if !ok {
			return 0, fmt.Errorf("unknown port %d", id)
		}
		if p.Dim != first.Dim {
			return 0, fmt.Errorf("sum inputs disagree on dimension: %d vs %d", first.Dim, p.Dim)
		}
	}
	out := f.addPort(first.Dim, first.Vocab)
	f.addNode(Node{Kind: OpSum, Inputs: append([]PortID(nil), inputs...), Outputs: []PortID{out}})
	return out, nil
}

// AddScale stages a constant-factor scale of in. The output keeps the
// input's type; label distinguishes relabeling casts.
func (f *Fragment) AddScale(in PortID, factor float64, vocabID, label string) (PortID, error) {
	p, ok := f.Port(in)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", in)
	}
	out := f.addPort(p.Dim, vocabID)
	f.addNode(Node{Kind: OpScale, Inputs: []PortID{in}, Outputs: []PortID{out}, Factor: factor, Label: label})
	return out, nil
}

// AddScaleBy stages a scale of in by a dynamic scalar signal.
func (f *Fragment) AddScaleBy(in, scalar PortID) (PortID, error) {
	p, ok := f.Port(in)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", in)
	}
	s, ok := f.Port(scalar)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", scalar)
	}
	if !s.Scalar() {
		return 0, fmt.Errorf("port %d is not scalar", scalar)
	}
	out := f.addPort(p.Dim, p.Vocab)
	f.addNode(Node{Kind: OpScale, Inputs: []PortID{in, scalar}, Outputs: []PortID{out}})
	return out, nil
}

// AddTransform stages a linear-map scale node (used by translate
// casts). The transform must have one row per output element and one
// column per input element.
func (f *Fragment) AddTransform(in PortID, transform [][]float64, vocabID string) (PortID, error) {
	p, ok := f.Port(in)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", in)
	}
	if len(transform) == 0 {
		return 0, fmt.Errorf("empty transform")
	}
	for _, row := range transform {
		if len(row) != p.Dim {
			return 0, fmt.Errorf("transform expects %d columns, got %d", p.Dim, len(row))
		}
	}
	out := f.addPort(len(transform), vocabID)
	f.addNode(Node{Kind: OpScale, Inputs: []PortID{in}, Outputs: []PortID{out}, Transform: transform})
	return out, nil
}

// AddBind stages a binding of a and b, in that order.
func (f *Fragment) AddBind(a, b PortID, vocabID string) (PortID, error) {
	pa, ok := f.Port(a)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", a)
	}
	pb, ok := f.Port(b)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", b)
	}
	if pa.Dim != pb.Dim {
		return 0, fmt.Errorf("bind inputs disagree on dimension: %d vs %d", pa.Dim, pb.Dim)
	}
	out := f.addPort(pa.Dim, vocabID)
	f.addNode(Node{Kind: OpBind, Inputs: []PortID{a, b}, Outputs: []PortID{out}})
	return out, nil
}

// AddInvert stages the approximate inverse of in.
func (f *Fragment) AddInvert(in PortID) (PortID, error) {
	p, ok := f.Port(in)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", in)
	}
	out := f.addPort(p.Dim, p.Vocab)
	f.addNode(Node{Kind: OpInvert, Inputs: []PortID{in}, Outputs: []PortID{out}})
	return out, nil
}

// AddDot stages a dot product producing a scalar port.
func (f *Fragment) AddDot(a, b PortID) (PortID, error) {
	pa, ok := f.Port(a)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", a)
	}
	pb, ok := f.Port(b)
	if !ok {
		return 0, fmt.Errorf("unknown port %d", b)
	}
	if pa.Dim != pb.Dim {
		return 0, fmt.Errorf("dot inputs disagree on dimension: %d vs %d", pa.Dim, pb.Dim)
	}
	out := f.addPort(1, "")
	f.addNode(Node{Kind: OpDot, Inputs: []PortID{a, b}, Outputs: []PortID{out}})
	return out, nil
}

// AddGate stages a winner-take-most selector over scalar utility
// ports, producing one scalar gate port per utility.
func (f *Fragment) AddGate(utilities []PortID) ([]PortID, error) {
	if len(utilities) == 0 {
		return nil, fmt.Errorf("gate requires at least one utility")
	}
	for _, id := range utilities {
		p, ok := f.Port(id)
		if !ok {
			return nil, fmt.Errorf("unknown port %d", id)
		}
		if !p.Scalar() {
			return nil, fmt.Errorf("utility port %d is not scalar", id)
		}
	}
	outs := make([]PortID, len(utilities))
	for i := range utilities {
		outs[i] = f.addPort(1, "")
	}
	f.addNode(Node{Kind: OpGate, Inputs: append([]PortID(nil), utilities...), Outputs: outs})
	return outs, nil
}

// AddCombine stages a combine node summing gate-weighted effects.
// Inputs are (gate, effect) pairs in order.
func (f *Fragment) AddCombine(pairs [][2]PortID, dim int, vocabID string) (PortID, error) {
	if len(pairs) == 0 {
		return 0, fmt.Errorf("combine requires at least one pair")
	}
	inputs := make([]PortID, 0, 2*len(pairs))
	for _, pair := range pairs {
		gate, ok := f.Port(pair[0])
		if !ok {
			return 0, fmt.Errorf("unknown port %d", pair[0])
		}
		if !gate.Scalar() {
			return 0, fmt.Errorf("gate port %d is not scalar", pair[0])
		}
		effect, ok := f.Port(pair[1])
		if !ok {
			return 0, fmt.Errorf("unknown port %d", pair[1])
		}
		if effect.Dim != dim {
			return 0, fmt.Errorf("effect port %d has dimension %d, want %d", pair[1], effect.Dim, dim)
		}
		inputs = append(inputs, pair[0], pair[1])
	}
	out := f.addPort(dim, vocabID)
	f.addNode(Node{Kind: OpCombine, Inputs: inputs, Outputs: []PortID{out}})
	return out, nil
}

// ConnectSink stages a sink-assignment edge from a port to a declared
// sink.
func (f *Fragment) ConnectSink(from PortID, sink string) error {
	if _, ok := f.Port(from); !ok {
		return fmt.Errorf("unknown port %d", from)
	}
	if _, ok := f.g.sinkIndex[sink]; !ok {
		return fmt.Errorf("unknown sink %q", sink)
	}
	f.edges = append(f.edges, Edge{From: from, Sink: sink})
	return nil
}
