package graph

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/semago/algebra"
)

// DefaultGateSharpness is the softmax sharpness of the reference
// gate. It makes the dominance guarantee hold for utilities separated
// by more than roughly 0.2; the blend behavior for near-tied
// utilities is deliberately unspecified and substrate-dependent.
const DefaultGateSharpness = 50.0

// EvalOptions configures the reference evaluator.
type EvalOptions struct {
	// Algebras maps algebra names to implementations. Defaults to the
	// built-in algebras via algebra.ByName.
	Algebras map[string]algebra.Algebra

	// GateSharpness is the softmax sharpness of the gate operator.
	GateSharpness float64
}

// Evaluate runs the reference interpretation of the graph: one
// synchronous feedforward pass. It exists to document and test the
// handoff contract; production execution is the substrate's job.
//
// inputs supplies one value per OpInput handle. The result maps each
// declared sink to the superposition of its assignment edges.
// Independent nodes of the same depth are evaluated concurrently.
func (g *Graph) Evaluate(ctx context.Context, inputs map[string][]float64, optFns ...func(*EvalOptions)) (map[string][]float64, error) {
	opts := EvalOptions{GateSharpness: DefaultGateSharpness}
	for _, fn := range optFns {
		fn(&opts)
	}

	algebraFor := func(vocabID string) (algebra.Algebra, error) {
		for _, v := range g.vocabs {
			if v.ID != vocabID {
				continue
			}
			if alg, ok := opts.Algebras[v.Algebra]; ok {
				return alg, nil
			}
			if alg, ok := algebra.ByName(v.Algebra); ok {
				return alg, nil
			}
			return nil, fmt.Errorf("no algebra %q for vocabulary %q", v.Algebra, vocabID)
		}
		return nil, fmt.Errorf("unknown vocabulary %q", vocabID)
	}

	producer := make(map[PortID]int, len(g.ports))
	for i, n := range g.nodes {
		for _, out := range n.Outputs {
			producer[out] = i
		}
	}

	// Depth-group the nodes; appending order guarantees acyclicity.
	levels := make([]int, len(g.nodes))
	maxLevel := 0
	for i, n := range g.nodes {
		level := 0
		for _, in := range n.Inputs {
			p, ok := producer[in]
			if !ok {
				return nil, fmt.Errorf("port %d has no producer", in)
			}
			if levels[p]+1 > level {
				level = levels[p] + 1
			}
		}
		levels[i] = level
		if level > maxLevel {
			maxLevel = level
		}
	}

	values := make([][]float64, len(g.ports))
	for level := 0; level <= maxLevel; level++ {
		eg, _ := errgroup.WithContext(ctx)
		for i := range g.nodes {
			if levels[i] != level {
				continue
			}
			node := g.nodes[i]
			eg.Go(func() error {
				return g.evalNode(node, values, inputs, &opts, algebraFor)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	out := make(map[string][]float64, len(g.sinks))
	for _, s := range g.sinks {
		out[s.Name] = make([]float64, s.Dim)
	}
	for _, e := range g.edges {
		acc := out[e.Sink]
		v := values[int(e.From)]
		if len(v) != len(acc) {
			return nil, fmt.Errorf("edge to sink %q carries dimension %d, want %d", e.Sink, len(v), len(acc))
		}
		for i := range acc {
			acc[i] += v[i]
		}
	}
	return out, nil
}

func (g *Graph) evalNode(
	node Node,
	values [][]float64,
	inputs map[string][]float64,
	opts *EvalOptions,
	algebraFor func(string) (algebra.Algebra, error),
) error {
	in := func(i int) []float64 { return values[int(node.Inputs[i])] }

	switch node.Kind {
	case OpConst:
		values[int(node.Outputs[0])] = append([]float64(nil), node.Const...)

	case OpInput:
		v, ok := inputs[node.Label]
		if !ok {
			return fmt.Errorf("no value supplied for input %q", node.Label)
		}
		want, _ := g.Port(node.Outputs[0])
		if len(v) != want.Dim {
			return fmt.Errorf("input %q has dimension %d, want %d", node.Label, len(v), want.Dim)
		}
		values[int(node.Outputs[0])] = append([]float64(nil), v...)

	case OpSum:
		acc := append([]float64(nil), in(0)...)
		for i := 1; i < len(node.Inputs); i++ {
			for j, x := range in(i) {
				acc[j] += x
			}
		}
		values[int(node.Outputs[0])] = acc

	case OpScale:
		x := in(0)
		switch {
		case node.Transform != nil:
			out := make([]float64, len(node.Transform))
			for i, row := range node.Transform {
				var s float64
				for j, w := range row {
					s += w * x[j]
				}
				out[i] = s
			}
			values[int(node.Outputs[0])] = out
		case len(node.Inputs) == 2:
			factor := in(1)[0]
			out := make([]float64, len(x))
			for i, v := range x {
				out[i] = factor * v
			}
			values[int(node.Outputs[0])] = out
		default:
			out := make([]float64, len(x))
			for i, v := range x {
				out[i] = node.Factor * v
			}
			values[int(node.Outputs[0])] = out
		}

	case OpBind:
		port, _ := g.Port(node.Outputs[0])
		alg, err := algebraFor(port.Vocab)
		if err != nil {
			return err
		}
		out, err := alg.Bind(in(0), in(1))
		if err != nil {
			return err
		}
		values[int(node.Outputs[0])] = out

	case OpInvert:
		port, _ := g.Port(node.Outputs[0])
		alg, err := algebraFor(port.Vocab)
		if err != nil {
			return err
		}
		out, err := alg.Invert(in(0))
		if err != nil {
			return err
		}
		values[int(node.Outputs[0])] = out

	case OpDot:
		a, b := in(0), in(1)
		var s float64
		for i := range a {
			s += a[i] * b[i]
		}
		values[int(node.Outputs[0])] = []float64{s}

	case OpGate:
		// Sharp softmax: dominant for well-separated utilities,
		// blending near ties.
		n := len(node.Inputs)
		maxU := math.Inf(-1)
		us := make([]float64, n)
		for i := 0; i < n; i++ {
			us[i] = in(i)[0]
			if us[i] > maxU {
				maxU = us[i]
			}
		}
		var z float64
		gates := make([]float64, n)
		for i, u := range us {
			gates[i] = math.Exp(opts.GateSharpness * (u - maxU))
			z += gates[i]
		}
		for i, out := range node.Outputs {
			values[int(out)] = []float64{gates[i] / z}
		}

	case OpCombine:
		port, _ := g.Port(node.Outputs[0])
		acc := make([]float64, port.Dim)
		for i := 0; i+1 < len(node.Inputs); i += 2 {
			gate := in(i)[0]
			for j, x := range in(i + 1) {
				acc[j] += gate * x
			}
		}
		values[int(node.Outputs[0])] = acc

	default:
		return fmt.Errorf("unsupported op kind %v", node.Kind)
	}
	return nil
}
