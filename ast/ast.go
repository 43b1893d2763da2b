package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/semago/pointer"
)

// Node is an expression AST node. Nodes are immutable once built,
// except for the resolved type assigned by Infer.
//
// Node identity matters: the compiler lowers a node that appears in
// several places to a single shared graph fragment, while two
// independently constructed but textually identical nodes lower to
// two independent fragments. Hold on to a node value to share its
// fragment.
type Node interface {
	fmt.Stringer
	// Type returns the resolved type of the node, or nil before
	// inference.
	Type() Type

	setType(t Type)
}

type typed struct {
	typ Type
}

func (n *typed) Type() Type     { return n.typ }
func (n *typed) setType(t Type) { n.typ = t }

// SymbolNode references a named pointer, resolved against the ambient
// vocabulary context at lowering time.
type SymbolNode struct {
	typed
	Name string
}

// Sym creates a symbol reference.
func Sym(name string) *SymbolNode { return &SymbolNode{Name: name} }

func (n *SymbolNode) String() string { return n.Name }

// LiteralNode wraps a concrete pointer value. If Vocab is nil the
// node types to the ambient vocabulary, which must match the
// pointer's dimensionality.
type LiteralNode struct {
	typed
	Pointer pointer.Pointer
	Vocab   Vocab
}

// Lit creates a literal pointer node typed by the ambient vocabulary.
func Lit(p pointer.Pointer) *LiteralNode { return &LiteralNode{Pointer: p} }

// LitIn creates a literal pointer node typed by an explicit
// vocabulary.
func LitIn(p pointer.Pointer, v Vocab) *LiteralNode {
	return &LiteralNode{Pointer: p, Vocab: v}
}

func (n *LiteralNode) String() string { return "<pointer>" }

// ScalarNode is a numeric literal.
type ScalarNode struct {
	typed
	Value float64
}

// Num creates a numeric literal node.
func Num(x float64) *ScalarNode { return &ScalarNode{Value: x} }

func (n *ScalarNode) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// SumNode is the superposition of its operands.
type SumNode struct {
	typed
	Operands []Node
}

// SumOf creates a superposition node.
func SumOf(operands ...Node) *SumNode { return &SumNode{Operands: operands} }

func (n *SumNode) String() string { return infix(" + ", n.Operands) }

// ProductNode multiplies its operands in order: binding when both are
// vectors, scaling when exactly one is a scalar. Order is preserved
// because binding need not commute.
type ProductNode struct {
	typed
	Operands []Node
}

// Mul creates a product node.
func Mul(operands ...Node) *ProductNode { return &ProductNode{Operands: operands} }

// Neg creates the negation of n, lowered as a scale by -1.
func Neg(n Node) *ProductNode { return Mul(Num(-1), n) }

func (n *ProductNode) String() string { return infix(" * ", n.Operands) }

// InvertNode is the approximate inverse of its operand under the
// vocabulary's binding algebra.
type InvertNode struct {
	typed
	Operand Node
}

// Inv creates an approximate-inverse node.
func Inv(operand Node) *InvertNode { return &InvertNode{Operand: operand} }

func (n *InvertNode) String() string { return "~(" + n.Operand.String() + ")" }

// DotNode is the dot product of two same-vocabulary vectors; it types
// to scalar.
type DotNode struct {
	typed
	A, B Node
}

// DotOf creates a dot-product node.
func DotOf(a, b Node) *DotNode { return &DotNode{A: a, B: b} }

func (n *DotNode) String() string { return "dot(" + n.A.String() + ", " + n.B.String() + ")" }

// ReinterpretNode relabels its operand into a same-dimension target
// vocabulary without changing the underlying vector.
//
// Target may be left nil by the text parser; it is then resolved from
// TargetName during inference.
type ReinterpretNode struct {
	typed
	Operand    Node
	Target     Vocab
	TargetName string
}

// ReinterpretOf creates a reinterpret cast to target.
func ReinterpretOf(operand Node, target Vocab) *ReinterpretNode {
	return &ReinterpretNode{Operand: operand, Target: target}
}

func (n *ReinterpretNode) String() string {
	return "reinterpret(" + n.Operand.String() + ", " + n.targetLabel() + ")"
}

func (n *ReinterpretNode) targetLabel() string {
	if n.Target != nil {
		return n.Target.Label()
	}
	return n.TargetName
}

// TranslateNode casts its operand into a target vocabulary through a
// key-matched linear transform. With Populate, keys missing from the
// target are added to it when the cast is lowered.
type TranslateNode struct {
	typed
	Operand    Node
	Target     Vocab
	TargetName string
	Populate   bool
}

// TranslateOf creates a translate cast to target.
func TranslateOf(operand Node, target Vocab, populate bool) *TranslateNode {
	return &TranslateNode{Operand: operand, Target: target, Populate: populate}
}

func (n *TranslateNode) String() string {
	label := n.TargetName
	if n.Target != nil {
		label = n.Target.Label()
	}
	return "translate(" + n.Operand.String() + ", " + label + ")"
}

// ExternalPortNode is a typed input supplied by the execution
// substrate. A nil Vocab makes the port scalar-typed.
type ExternalPortNode struct {
	typed
	Handle string
	Vocab  Vocab
}

// Port creates an external-port node.
func Port(handle string, v Vocab) *ExternalPortNode {
	return &ExternalPortNode{Handle: handle, Vocab: v}
}

func (n *ExternalPortNode) String() string { return "port(" + n.Handle + ")" }

func infix(sep string, operands []Node) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = op.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
