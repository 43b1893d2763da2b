package semago

import (
	"fmt"

	"github.com/hupe1980/semago/ast"
	"github.com/hupe1980/semago/graph"
	"github.com/hupe1980/semago/vocab"
)

// lower stages the graph fragment computing n and returns its output
// port. Already lowered nodes (by identity, in the committed memo or
// the statement's overlay) are reused, so a shared sub-expression node
// yields one shared fragment.
func (c *Compiler) lower(f *graph.Fragment, overlay map[ast.Node]graph.PortID, n ast.Node) (graph.PortID, error) {
	if port, ok := overlay[n]; ok {
		return port, nil
	}
	if port, ok := c.memo[n]; ok {
		return port, nil
	}

	port, err := c.lowerNode(f, overlay, n)
	if err != nil {
		return 0, err
	}
	overlay[n] = port
	return port, nil
}

func (c *Compiler) lowerNode(f *graph.Fragment, overlay map[ast.Node]graph.PortID, n ast.Node) (graph.PortID, error) {
	switch node := n.(type) {
	case *ast.SymbolNode:
		v, err := nodeVocab(node)
		if err != nil {
			return 0, err
		}
		p, err := v.Resolve(node.Name)
		if err != nil {
			return 0, err
		}
		f.EnsureVocab(v.Label(), v.Dim(), v.AlgebraName())
		return f.AddConst(p.Values(), v.Label(), node.Name), nil

	case *ast.LiteralNode:
		v, err := nodeVocab(node)
		if err != nil {
			return 0, err
		}
		f.EnsureVocab(v.Label(), v.Dim(), v.AlgebraName())
		return f.AddConst(node.Pointer.Values(), v.Label(), ""), nil

	case *ast.ScalarNode:
		return f.AddScalarConst(node.Value, ""), nil

	case *ast.SumNode:
		inputs := make([]graph.PortID, len(node.Operands))
		for i, op := range node.Operands {
			port, err := c.lower(f, overlay, op)
			if err != nil {
				return 0, err
			}
			inputs[i] = port
		}
		return f.AddSum(inputs)

	case *ast.ProductNode:
		return c.lowerProduct(f, overlay, node)

	case *ast.InvertNode:
		port, err := c.lower(f, overlay, node.Operand)
		if err != nil {
			return 0, err
		}
		return f.AddInvert(port)

	case *ast.DotNode:
		a, err := c.lower(f, overlay, node.A)
		if err != nil {
			return 0, err
		}
		b, err := c.lower(f, overlay, node.B)
		if err != nil {
			return 0, err
		}
		return f.AddDot(a, b)

	case *ast.ReinterpretNode:
		port, err := c.lower(f, overlay, node.Operand)
		if err != nil {
			return 0, err
		}
		target := node.Target
		f.EnsureVocab(target.Label(), target.Dim(), target.AlgebraName())
		// A factor of 1 keeps the vector bit-identical; only the
		// port's vocabulary changes.
		return f.AddScale(port, 1, target.Label(), "reinterpret")

	case *ast.TranslateNode:
		return c.lowerTranslate(f, overlay, node)

	case *ast.ExternalPortNode:
		return 0, fmt.Errorf("external port %q was not declared with Input", node.Handle)

	default:
		return 0, fmt.Errorf("unsupported AST node %T", n)
	}
}

// lowerProduct folds vector operands with bind in order, folds
// constant scalar factors into a single scale, and chains dynamic
// scalar factors as scale-by nodes.
func (c *Compiler) lowerProduct(f *graph.Fragment, overlay map[ast.Node]graph.PortID, node *ast.ProductNode) (graph.PortID, error) {
	factor := 1.0
	haveFactor := false
	var scalars []graph.PortID
	var vectors []graph.PortID

	for _, op := range node.Operands {
		if s, ok := op.(*ast.ScalarNode); ok {
			factor *= s.Value
			haveFactor = true
			continue
		}
		port, err := c.lower(f, overlay, op)
		if err != nil {
			return 0, err
		}
		if _, ok := op.Type().(ast.VocabType); ok {
			vectors = append(vectors, port)
		} else {
			scalars = append(scalars, port)
		}
	}

	var out graph.PortID
	switch {
	case len(vectors) > 0:
		vt := node.Type().(ast.VocabType)
		f.EnsureVocab(vt.Vocab.Label(), vt.Vocab.Dim(), vt.Vocab.AlgebraName())
		out = vectors[0]
		for _, port := range vectors[1:] {
			bound, err := f.AddBind(out, port, vt.Vocab.Label())
			if err != nil {
				return 0, err
			}
			out = bound
		}
	case len(scalars) > 0:
		out = scalars[0]
		scalars = scalars[1:]
	default:
		return f.AddScalarConst(factor, ""), nil
	}

	if haveFactor {
		p, ok := f.Port(out)
		if !ok {
			return 0, fmt.Errorf("unknown port %d", out)
		}
		scaled, err := f.AddScale(out, factor, p.Vocab, "")
		if err != nil {
			return 0, err
		}
		out = scaled
	}
	for _, s := range scalars {
		scaled, err := f.AddScaleBy(out, s)
		if err != nil {
			return 0, err
		}
		out = scaled
	}
	return out, nil
}

// lowerTranslate lowers a translate cast to a linear-map node built
// from the key-matched outer-product transform between the two
// vocabularies.
func (c *Compiler) lowerTranslate(f *graph.Fragment, overlay map[ast.Node]graph.PortID, node *ast.TranslateNode) (graph.PortID, error) {
	port, err := c.lower(f, overlay, node.Operand)
	if err != nil {
		return 0, err
	}

	vt, ok := node.Operand.Type().(ast.VocabType)
	if !ok {
		return 0, &ast.ErrTypeMismatch{Op: "translate", Want: "vector", Got: node.Operand.Type().String()}
	}
	source, ok := vt.Vocab.(*vocab.Vocabulary)
	if !ok {
		return 0, fmt.Errorf("translate source %q is not a concrete vocabulary", vt.Vocab.Label())
	}
	target, ok := node.Target.(*vocab.Vocabulary)
	if !ok {
		return 0, fmt.Errorf("translate target %q is not a concrete vocabulary", node.Target.Label())
	}

	t, err := source.TransformTo(target, func(o *vocab.TransformOptions) {
		o.Populate = node.Populate
	})
	if err != nil {
		return 0, err
	}

	rows, cols := t.Dims()
	transform := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		copy(row, t.RawRowView(i))
		transform[i] = row
	}

	f.EnsureVocab(target.Label(), target.Dim(), target.AlgebraName())
	return f.AddTransform(port, transform, target.Label())
}

// nodeVocab extracts the vocabulary a typed vector node resolved to.
func nodeVocab(n ast.Node) (ast.Vocab, error) {
	vt, ok := n.Type().(ast.VocabType)
	if !ok || vt.Vocab == nil {
		return nil, fmt.Errorf("node %s has no resolved vocabulary; run inference first", n)
	}
	return vt.Vocab, nil
}
