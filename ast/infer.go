package ast

import (
	"errors"
	"fmt"
)

// ErrNoAmbientVocab is returned when a bare symbol or untyped literal
// appears in a context without an ambient vocabulary.
var ErrNoAmbientVocab = errors.New("no ambient vocabulary in context")

// ErrUnknownVocab is returned when a textual cast names a vocabulary
// the context cannot resolve.
type ErrUnknownVocab struct {
	Name string
}

func (e *ErrUnknownVocab) Error() string {
	return fmt.Sprintf("unknown vocabulary %q", e.Name)
}

// Context carries the ambient typing environment for inference.
type Context struct {
	// Ambient is the vocabulary bare symbols and untyped literals
	// resolve against. May be nil.
	Ambient Vocab
	// LookupVocab resolves vocabulary names used in textual casts.
	// May be nil.
	LookupVocab func(name string) (Vocab, bool)
}

// Infer assigns resolved types to n and its children, bottom-up, and
// returns the type of n.
//
// A node that already carries a type keeps it: shared sub-expressions
// are typed once, by the first statement that uses them, and later
// uses see the identical type. Inference fails eagerly with
// ErrVocabMismatch, ErrTypeMismatch or ErrDimensionMismatch; a failed
// inference leaves no partial types behind on the failing node.
func Infer(n Node, ctx *Context) (Type, error) {
	if ctx == nil {
		ctx = &Context{}
	}
	if t := n.Type(); t != nil {
		return t, nil
	}

	t, err := infer(n, ctx)
	if err != nil {
		return nil, err
	}
	n.setType(t)
	return t, nil
}

func infer(n Node, ctx *Context) (Type, error) {
	switch node := n.(type) {
	case *SymbolNode:
		if ctx.Ambient == nil {
			return nil, fmt.Errorf("symbol %q: %w", node.Name, ErrNoAmbientVocab)
		}
		return VocabType{Vocab: ctx.Ambient}, nil

	case *LiteralNode:
		v := node.Vocab
		if v == nil {
			if ctx.Ambient == nil {
				return nil, fmt.Errorf("pointer literal: %w", ErrNoAmbientVocab)
			}
			v = ctx.Ambient
		}
		if v.Dim() != node.Pointer.Dim() {
			return nil, &ErrDimensionMismatch{Op: "literal", Expected: v.Dim(), Actual: node.Pointer.Dim()}
		}
		return VocabType{Vocab: v}, nil

	case *ScalarNode:
		return Scalar, nil

	case *SumNode:
		if len(node.Operands) == 0 {
			return nil, &ErrTypeMismatch{Op: "sum", Want: "at least one operand", Got: "none"}
		}
		var result Type
		for _, op := range node.Operands {
			t, err := Infer(op, ctx)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = t
				continue
			}
			if err := requireSame("sum", result, t); err != nil {
				return nil, err
			}
		}
		return result, nil

	case *ProductNode:
		if len(node.Operands) == 0 {
			return nil, &ErrTypeMismatch{Op: "product", Want: "at least one operand", Got: "none"}
		}
		var result Type
		for _, op := range node.Operands {
			t, err := Infer(op, ctx)
			if err != nil {
				return nil, err
			}
			vt, ok := t.(VocabType)
			if !ok {
				continue // scalar factor leaves the vector type unchanged
			}
			if result == nil {
				result = vt
				continue
			}
			if err := requireSame("product", result, vt); err != nil {
				return nil, err
			}
		}
		if result == nil {
			return Scalar, nil
		}
		return result, nil

	case *InvertNode:
		t, err := Infer(node.Operand, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := t.(VocabType); !ok {
			return nil, &ErrTypeMismatch{Op: "invert", Want: "vector", Got: t.String()}
		}
		return t, nil

	case *DotNode:
		ta, err := Infer(node.A, ctx)
		if err != nil {
			return nil, err
		}
		tb, err := Infer(node.B, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := ta.(VocabType); !ok {
			return nil, &ErrTypeMismatch{Op: "dot", Want: "vector", Got: ta.String()}
		}
		if _, ok := tb.(VocabType); !ok {
			return nil, &ErrTypeMismatch{Op: "dot", Want: "vector", Got: tb.String()}
		}
		if err := requireSame("dot", ta, tb); err != nil {
			return nil, err
		}
		return Scalar, nil

	case *ReinterpretNode:
		target, err := resolveTarget(node.Target, node.TargetName, ctx)
		if err != nil {
			return nil, err
		}
		node.Target = target
		t, err := Infer(node.Operand, ctx)
		if err != nil {
			return nil, err
		}
		vt, ok := t.(VocabType)
		if !ok {
			return nil, &ErrTypeMismatch{Op: "reinterpret", Want: "vector", Got: t.String()}
		}
		if vt.Vocab.Dim() != target.Dim() {
			return nil, &ErrDimensionMismatch{Op: "reinterpret", Expected: target.Dim(), Actual: vt.Vocab.Dim()}
		}
		return VocabType{Vocab: target}, nil

	case *TranslateNode:
		target, err := resolveTarget(node.Target, node.TargetName, ctx)
		if err != nil {
			return nil, err
		}
		node.Target = target
		t, err := Infer(node.Operand, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := t.(VocabType); !ok {
			return nil, &ErrTypeMismatch{Op: "translate", Want: "vector", Got: t.String()}
		}
		return VocabType{Vocab: target}, nil

	case *ExternalPortNode:
		if node.Vocab == nil {
			return Scalar, nil
		}
		return VocabType{Vocab: node.Vocab}, nil

	default:
		return nil, fmt.Errorf("unsupported AST node %T", n)
	}
}

func resolveTarget(target Vocab, name string, ctx *Context) (Vocab, error) {
	if target != nil {
		return target, nil
	}
	if ctx.LookupVocab != nil {
		if v, ok := ctx.LookupVocab(name); ok {
			return v, nil
		}
	}
	return nil, &ErrUnknownVocab{Name: name}
}

func requireSame(op string, a, b Type) error {
	va, aok := a.(VocabType)
	vb, bok := b.(VocabType)
	if aok != bok {
		return &ErrTypeMismatch{Op: op, Want: a.String(), Got: b.String()}
	}
	if !aok {
		return nil // both scalar
	}
	if va.Vocab != vb.Vocab {
		return &ErrVocabMismatch{Op: op, Left: va.Vocab.Label(), Right: vb.Vocab.Label()}
	}
	return nil
}
