package semago

import (
	"fmt"

	"github.com/hupe1980/semago/ast"
	"github.com/hupe1980/semago/graph"
)

// Effect routes the value of an expression into a sink when its rule
// wins the selection.
type Effect struct {
	Sink string
	Expr ast.Node
}

// Route is a convenience constructor for an Effect.
func Route(expr ast.Node, sink string) Effect {
	return Effect{Sink: sink, Expr: expr}
}

type actionRule struct {
	name    string
	named   bool
	utility ast.Node
	effects []Effect
}

// ActionSelection is a staged winner-take-most rule block. Rules are
// type-checked eagerly as they are added, but nothing reaches the
// graph until Close commits the whole block atomically.
type ActionSelection struct {
	c      *Compiler
	rules  []actionRule
	names  map[string]struct{}
	closed bool
}

// Action adds a rule: when utility dominates the other rules'
// utilities, each effect expression is routed into its sink. An empty
// name is auto-assigned on Close. A rule may route to several sinks,
// but only once per sink; the same sink may recur across rules.
func (s *ActionSelection) Action(name string, utility ast.Node, effects ...Effect) error {
	if s.closed {
		return ErrSelectionClosed
	}
	if s.c.closed {
		return ErrCompilerClosed
	}
	if name != "" {
		if _, ok := s.names[name]; ok {
			return &ErrDuplicateName{Name: name}
		}
	}
	if len(effects) == 0 {
		return fmt.Errorf("action %q has no effects", name)
	}

	ut, err := ast.Infer(utility, s.c.inferContext(nil))
	if err != nil {
		return err
	}
	if ut != ast.Scalar {
		return &ast.ErrTypeMismatch{Op: "utility of action " + name, Want: "scalar", Got: ut.String()}
	}

	seen := make(map[string]struct{}, len(effects))
	for _, e := range effects {
		if _, ok := seen[e.Sink]; ok {
			return &ErrDuplicateSinkInRule{Sink: e.Sink, Action: name}
		}
		seen[e.Sink] = struct{}{}

		spec, ok := s.c.g.Sink(e.Sink)
		if !ok {
			return fmt.Errorf("unknown sink %q", e.Sink)
		}
		sinkVocab := s.c.sinkVocabs[e.Sink]
		t, err := ast.Infer(e.Expr, s.c.inferContext(sinkVocab))
		if err != nil {
			return err
		}
		if err := s.c.checkSinkType(spec, sinkVocab, t); err != nil {
			return err
		}
	}

	if name != "" {
		s.names[name] = struct{}{}
	}
	s.rules = append(s.rules, actionRule{
		name:    name,
		named:   name != "",
		utility: utility,
		effects: append([]Effect(nil), effects...),
	})
	return nil
}

// Names returns the rule names in rule order, with auto-assigned names
// for rules added without one.
func (s *ActionSelection) Names() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = s.ruleName(i, r)
	}
	return names
}

func (s *ActionSelection) ruleName(i int, r actionRule) string {
	if r.named {
		return r.name
	}
	return fmt.Sprintf("action_%d", i)
}

// Close compiles the block: one gate node over all rule utilities,
// and per sink one combine node summing the gate-weighted effects of
// the rules routing to it. The whole block commits atomically; on any
// error the graph is unchanged.
func (s *ActionSelection) Close() error {
	err := s.close()
	s.c.log.LogActionSelection(len(s.rules), err)
	return err
}

func (s *ActionSelection) close() error {
	if s.closed {
		return ErrSelectionClosed
	}
	if len(s.rules) == 0 {
		s.closed = true
		s.c.selection = nil
		return ErrEmptyActionSelection
	}
	for i, r := range s.rules {
		if r.named {
			continue
		}
		auto := s.ruleName(i, r)
		if _, ok := s.names[auto]; ok {
			return &ErrDuplicateName{Name: auto}
		}
	}

	f := s.c.g.NewFragment()
	overlay := make(map[ast.Node]graph.PortID)

	utilities := make([]graph.PortID, len(s.rules))
	for i, r := range s.rules {
		port, err := s.c.lower(f, overlay, r.utility)
		if err != nil {
			return err
		}
		utilities[i] = port
	}
	gates, err := f.AddGate(utilities)
	if err != nil {
		return err
	}

	// Per-sink combine, sinks in first-appearance order.
	var sinkOrder []string
	pairs := make(map[string][][2]graph.PortID)
	for i, r := range s.rules {
		for _, e := range r.effects {
			port, err := s.c.lower(f, overlay, e.Expr)
			if err != nil {
				return err
			}
			if _, ok := pairs[e.Sink]; !ok {
				sinkOrder = append(sinkOrder, e.Sink)
			}
			pairs[e.Sink] = append(pairs[e.Sink], [2]graph.PortID{gates[i], port})
		}
	}
	for _, sink := range sinkOrder {
		spec, _ := s.c.g.Sink(sink)
		combined, err := f.AddCombine(pairs[sink], spec.Dim, spec.Vocab)
		if err != nil {
			return err
		}
		if err := f.ConnectSink(combined, sink); err != nil {
			return err
		}
	}

	f.Commit()
	s.c.mergeMemo(overlay)
	s.closed = true
	s.c.selection = nil
	return nil
}
