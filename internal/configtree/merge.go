package configtree

import (
	"errors"
	"fmt"
)

// ErrStructural is wrapped by every StructuralMergeError.
var ErrStructural = errors.New("structural merge error")

// StructuralMergeError reports a merge whose target or source is not a
// mapping.
type StructuralMergeError struct {
	Role string // "target" or "source"
	Got  Kind
}

func (e *StructuralMergeError) Error() string {
	return fmt.Sprintf("cannot merge: %s is a %s, want a mapping", e.Role, e.Got)
}

func (e *StructuralMergeError) Unwrap() error { return ErrStructural }

// Merge merges sources into target from left to right and returns target.
//
// target is modified in place. For every key of a source, two mappings are
// merged recursively; any other source value, sequences included, replaces
// the target value with a deep copy. A nil source is skipped.
func Merge(target Tree, sources ...Tree) (Mapping, error) {
	if target == nil {
		target = Mapping{}
	}
	dst, ok := target.(Mapping)
	if !ok {
		return nil, &StructuralMergeError{Role: "target", Got: KindOf(target)}
	}
	if dst == nil {
		dst = Mapping{}
	}

	for _, src := range sources {
		if src == nil {
			continue
		}
		m, ok := src.(Mapping)
		if !ok {
			return nil, &StructuralMergeError{Role: "source", Got: KindOf(src)}
		}
		mergeInto(dst, m)
	}
	return dst, nil
}

func mergeInto(dst, src Mapping) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(Mapping); ok {
			if dstMap, ok := dst[key].(Mapping); ok && dstMap != nil {
				mergeInto(dstMap, srcMap)
				continue
			}
		}
		dst[key] = Clone(srcVal)
	}
}

// Overlay layers over on top of base without touching either: a nil over
// yields a copy of base, two mappings are merged, anything else yields a
// copy of over.
func Overlay(base, over Tree) Tree {
	if over == nil {
		return Clone(base)
	}
	overMap, ok := over.(Mapping)
	if !ok {
		return Clone(over)
	}
	baseMap, ok := base.(Mapping)
	if !ok {
		return overMap.Clone()
	}
	out := baseMap.Clone()
	mergeInto(out, overMap)
	return out
}
