package vocab

import (
	"fmt"
	"strings"

	"github.com/hupe1980/semago/ast"
	"github.com/hupe1980/semago/pointer"
)

// Populate parses a ";"-separated list of entries and adds them to
// the vocabulary. Supported entry forms:
//
//	NAME                  random unit vector under the similarity policy
//	NAME.unitary()        random unitary vector
//	NAME = expr           expression over earlier entries
//	NAME = expr.unitary()
//	NAME = expr.normalized()
//
// Right-hand expressions may reference only names defined earlier in
// the same vocabulary; a forward or external reference fails with
// ErrUndefinedKey. Entries are applied in order; the first failing
// entry stops processing and is not applied, while earlier entries of
// the same call remain.
func (v *Vocabulary) Populate(spec string) error {
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if err := v.populateEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vocabulary) populateEntry(entry string) error {
	name, rhs, found := strings.Cut(entry, "=")
	name = strings.TrimSpace(name)

	if !found {
		// Bare NAME, optionally NAME.unitary().
		name, unitary := cutMethod(name, "unitary")
		if !validKey(name) {
			return fmt.Errorf("populate entry %q: %w", entry, ErrInvalidKey)
		}
		if _, ok := v.entries[name]; ok {
			return &ErrDuplicateKey{Key: name, Vocab: v.label}
		}
		p, err := v.generate(name)
		if err != nil {
			return err
		}
		if unitary {
			if p, err = p.Unitary(); err != nil {
				return err
			}
		}
		v.log.Debug("populated entry", "vocabulary", v.label, "key", name, "unitary", unitary)
		return v.Add(name, p)
	}

	if !validKey(name) {
		return fmt.Errorf("populate entry %q: %w", entry, ErrInvalidKey)
	}

	rhs = strings.TrimSpace(rhs)
	rhs, unitary := cutMethod(rhs, "unitary")
	var normalized bool
	if !unitary {
		rhs, normalized = cutMethod(rhs, "normalized")
	}

	p, err := v.evalExpr(rhs)
	if err != nil {
		return err
	}
	if unitary {
		if p, err = p.Unitary(); err != nil {
			return err
		}
	}
	if normalized {
		if p, err = p.Normalize(); err != nil {
			return err
		}
	}
	return v.Add(name, p)
}

// cutMethod strips a trailing ".method()" suffix.
func cutMethod(s, method string) (string, bool) {
	suffix := "." + method + "()"
	if strings.HasSuffix(s, suffix) {
		return strings.TrimSpace(strings.TrimSuffix(s, suffix)), true
	}
	return s, false
}

// Parse evaluates an expression against the vocabulary and returns
// the resulting pointer. In strict mode an unknown atom fails with
// ErrUnknownPointer; otherwise unknown atoms are auto-added under the
// normal generation policy.
func (v *Vocabulary) Parse(src string) (pointer.Pointer, error) {
	node, err := ast.Parse(src)
	if err != nil {
		return pointer.Pointer{}, err
	}
	val, err := v.eval(node, v.Resolve)
	if err != nil {
		return pointer.Pointer{}, err
	}
	if !val.isPtr {
		return pointer.Pointer{}, &ast.ErrTypeMismatch{Op: "parse", Want: "vector", Got: "scalar"}
	}
	return val.ptr, nil
}

// evalExpr evaluates a populate right-hand side. Resolution never
// auto-adds: any reference outside the already-defined entries is an
// ErrUndefinedKey, regardless of strictness.
func (v *Vocabulary) evalExpr(src string) (pointer.Pointer, error) {
	node, err := ast.Parse(src)
	if err != nil {
		return pointer.Pointer{}, err
	}
	val, err := v.eval(node, func(name string) (pointer.Pointer, error) {
		p, ok := v.entries[name]
		if !ok {
			return pointer.Pointer{}, &ErrUndefinedKey{Key: name, Vocab: v.label}
		}
		return p, nil
	})
	if err != nil {
		return pointer.Pointer{}, err
	}
	if !val.isPtr {
		return pointer.Pointer{}, &ast.ErrTypeMismatch{Op: "populate", Want: "vector", Got: "scalar"}
	}
	return val.ptr, nil
}

// value is the result of numerically evaluating an expression node:
// either a scalar or a pointer.
type value struct {
	scalar float64
	ptr    pointer.Pointer
	isPtr  bool
}

func (v *Vocabulary) eval(n ast.Node, resolve func(string) (pointer.Pointer, error)) (value, error) {
	switch node := n.(type) {
	case *ast.SymbolNode:
		p, err := resolve(node.Name)
		if err != nil {
			return value{}, err
		}
		return value{ptr: p, isPtr: true}, nil

	case *ast.LiteralNode:
		if node.Pointer.Dim() != v.dim {
			return value{}, &ast.ErrDimensionMismatch{Op: "literal", Expected: v.dim, Actual: node.Pointer.Dim()}
		}
		return value{ptr: node.Pointer, isPtr: true}, nil

	case *ast.ScalarNode:
		return value{scalar: node.Value}, nil

	case *ast.SumNode:
		var acc value
		for i, op := range node.Operands {
			val, err := v.eval(op, resolve)
			if err != nil {
				return value{}, err
			}
			if i == 0 {
				acc = val
				continue
			}
			if acc.isPtr != val.isPtr {
				return value{}, &ast.ErrTypeMismatch{Op: "sum", Want: typeName(acc), Got: typeName(val)}
			}
			if acc.isPtr {
				p, err := acc.ptr.Superpose(val.ptr)
				if err != nil {
					return value{}, err
				}
				acc.ptr = p
			} else {
				acc.scalar += val.scalar
			}
		}
		return acc, nil

	case *ast.ProductNode:
		scalar := 1.0
		var ptr pointer.Pointer
		havePtr := false
		for _, op := range node.Operands {
			val, err := v.eval(op, resolve)
			if err != nil {
				return value{}, err
			}
			if !val.isPtr {
				scalar *= val.scalar
				continue
			}
			if !havePtr {
				ptr, havePtr = val.ptr, true
				continue
			}
			if ptr, err = ptr.Bind(val.ptr); err != nil {
				return value{}, err
			}
		}
		if !havePtr {
			return value{scalar: scalar}, nil
		}
		return value{ptr: ptr.Scale(scalar), isPtr: true}, nil

	case *ast.InvertNode:
		val, err := v.eval(node.Operand, resolve)
		if err != nil {
			return value{}, err
		}
		if !val.isPtr {
			return value{}, &ast.ErrTypeMismatch{Op: "invert", Want: "vector", Got: "scalar"}
		}
		p, err := val.ptr.Inverse()
		if err != nil {
			return value{}, err
		}
		return value{ptr: p, isPtr: true}, nil

	case *ast.DotNode:
		a, err := v.eval(node.A, resolve)
		if err != nil {
			return value{}, err
		}
		b, err := v.eval(node.B, resolve)
		if err != nil {
			return value{}, err
		}
		if !a.isPtr || !b.isPtr {
			return value{}, &ast.ErrTypeMismatch{Op: "dot", Want: "vector", Got: "scalar"}
		}
		d, err := a.ptr.Dot(b.ptr)
		if err != nil {
			return value{}, err
		}
		return value{scalar: d}, nil

	default:
		return value{}, fmt.Errorf("%T is not allowed in a vocabulary expression", n)
	}
}

func typeName(v value) string {
	if v.isPtr {
		return "vector"
	}
	return "scalar"
}
