package semago_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/semago"
	"github.com/hupe1980/semago/ast"
)

// Example_bindAndQuery builds a tiny scene representation and queries
// it by unbinding.
func Example_bindAndQuery() {
	c, err := semago.HRR().RandomSeed(42).Build()
	if err != nil {
		log.Fatal(err)
	}

	v, err := c.Vocabulary(256)
	if err != nil {
		log.Fatal(err)
	}
	if err := v.Populate("Red; Blue; Circle; Square"); err != nil {
		log.Fatal(err)
	}

	if err := c.Sink("scene", v); err != nil {
		log.Fatal(err)
	}
	if err := c.Connect(c.MustParse("Red * Circle + Blue * Square", v), "scene"); err != nil {
		log.Fatal(err)
	}

	out, err := c.Graph().Evaluate(context.Background(), nil)
	if err != nil {
		log.Fatal(err)
	}

	// What was bound to Circle?
	probe, err := v.Parse("(Red * Circle + Blue * Square) * ~Circle")
	if err != nil {
		log.Fatal(err)
	}
	red, _ := v.Get("Red")
	blue, _ := v.Get("Blue")
	simRed, _ := probe.Cosine(red)
	simBlue, _ := probe.Cosine(blue)

	fmt.Println("scene dimension:", len(out["scene"]))
	fmt.Println("circle was red:", simRed > 0.5 && simRed > simBlue)
	// Output:
	// scene dimension: 256
	// circle was red: true
}

// Example_actionSelection routes effects through a winner-take-most
// rule block driven by an external input.
func Example_actionSelection() {
	c, err := semago.HRR().RandomSeed(7).Build()
	if err != nil {
		log.Fatal(err)
	}

	v, err := c.Vocabulary(256)
	if err != nil {
		log.Fatal(err)
	}
	if err := v.Populate("Red; Blue; Approach; Avoid"); err != nil {
		log.Fatal(err)
	}
	if err := c.Sink("motor", v); err != nil {
		log.Fatal(err)
	}

	see, err := c.Input("see", v)
	if err != nil {
		log.Fatal(err)
	}

	sel, err := c.ActionSelection()
	if err != nil {
		log.Fatal(err)
	}
	if err := sel.Action("approach_red", ast.DotOf(see, c.MustParse("Red", v)),
		semago.Route(c.MustParse("Approach", v), "motor")); err != nil {
		log.Fatal(err)
	}
	if err := sel.Action("avoid_blue", ast.DotOf(see, c.MustParse("Blue", v)),
		semago.Route(c.MustParse("Avoid", v), "motor")); err != nil {
		log.Fatal(err)
	}
	if err := sel.Close(); err != nil {
		log.Fatal(err)
	}

	red, _ := v.Get("Red")
	out, err := c.Graph().Evaluate(context.Background(), map[string][]float64{
		"see": red.Values(),
	})
	if err != nil {
		log.Fatal(err)
	}

	approach, _ := v.Get("Approach")
	avoid, _ := v.Get("Avoid")

	var toApproach, toAvoid float64
	for i, x := range out["motor"] {
		toApproach += x * approach.Values()[i]
		toAvoid += x * avoid.Values()[i]
	}
	fmt.Println("approaches:", toApproach > 0.9 && toAvoid < 0.5)
	// Output:
	// approaches: true
}
