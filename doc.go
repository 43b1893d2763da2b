// Package semago compiles symbolic vector-algebra programs into an
// inert dataflow graph executed by an external substrate.
//
// Programs manipulate pointers: fixed-dimension vectors that stand for
// symbols. Pointers live in vocabularies, which double as the types of
// the expression language; all structure is built from superposition,
// binding under an exchangeable algebra (HRR or VTB), approximate
// inverse and dot-product similarity.
//
// # Quick Start
//
//	c, _ := semago.HRR().RandomSeed(42).Build()
//
//	v, _ := c.Vocabulary(64)
//	_ = v.Populate("Red; Blue; Circle; Square")
//
//	_ = c.Sink("shape", v)
//	expr, _ := c.Parse("Red * Circle + Blue * Square", v)
//	_ = c.Connect(expr, "shape")
//
// # Action Selection
//
// Rules compete through a winner-take-most gate; the dominant rule's
// effects are routed, scaled by its gate signal:
//
//	see, _ := c.Input("see", v)
//
//	sel, _ := c.ActionSelection()
//	_ = sel.Action("see_red", ast.DotOf(see, c.MustParse("Red*Circle", v)),
//	    semago.Route(c.MustParse("Blue * Square", v), "shape"))
//	_ = sel.Action("see_blue", ast.DotOf(see, c.MustParse("Blue*Square", v)),
//	    semago.Route(c.MustParse("Red * Circle", v), "shape"))
//	_ = sel.Close()
//
// # Handoff
//
// The compiled graph is a declarative contract: typed ports, operator
// nodes and sink assignments. Export writes a self-describing
// serialization for the substrate; graph.Evaluate provides a reference
// feedforward interpretation for testing.
//
//	var buf bytes.Buffer
//	_ = c.Graph().Export(&buf)
package semago
