// Package configtree models chart configuration as an explicit tree of
// scalars, sequences and mappings, and provides the right-biased deep merge
// used to layer defaults, dark-mode overrides and chart configs.
package configtree

import (
	"fmt"
	"sort"
)

// Tree is a configuration value: a Scalar, a Sequence or a Mapping.
type Tree interface {
	kind() Kind
}

// Kind identifies the variant of a Tree.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scalar holds a string, number, bool or nil.
type Scalar struct {
	Value any
}

// Sequence is an ordered list of trees. Merge treats it as opaque.
type Sequence []Tree

// Mapping is a string-keyed set of trees.
type Mapping map[string]Tree

func (Scalar) kind() Kind   { return KindScalar }
func (Sequence) kind() Kind { return KindSequence }
func (Mapping) kind() Kind  { return KindMapping }

// KindOf returns the variant of t. A nil tree is reported as a scalar.
func KindOf(t Tree) Kind {
	if t == nil {
		return KindScalar
	}
	return t.kind()
}

// String is a convenience constructor for string scalars.
func String(s string) Scalar { return Scalar{Value: s} }

// Clone returns a deep copy of t.
func Clone(t Tree) Tree {
	switch v := t.(type) {
	case Mapping:
		return v.Clone()
	case Sequence:
		out := make(Sequence, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	case Scalar:
		return v
	default:
		return Scalar{}
	}
}

// Clone returns a deep copy of m. A nil mapping clones to an empty one.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Keys returns the keys of m in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Tree) bool {
	switch va := a.(type) {
	case Mapping:
		vb, ok := b.(Mapping)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, x := range va {
			y, ok := vb[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	case Sequence:
		vb, ok := b.(Sequence)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !Equal(va[i], vb[i]) {
				return false
			}
		}
		return true
	default:
		return KindOf(b) == KindScalar && scalarValue(a) == scalarValue(b)
	}
}

func scalarValue(t Tree) any {
	if s, ok := t.(Scalar); ok {
		return s.Value
	}
	return nil
}
