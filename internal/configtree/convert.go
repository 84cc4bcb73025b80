package configtree

import (
	"fmt"
)

// FromAny converts decoded YAML or JSON values into a Tree.
func FromAny(v any) (Tree, error) {
	return fromAny(v, "$")
}

func fromAny(v any, path string) (Tree, error) {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Scalar{Value: val}, nil
	case Tree:
		return Clone(val), nil
	case map[string]any:
		out := make(Mapping, len(val))
		for k, item := range val {
			t, err := fromAny(item, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = t
		}
		return out, nil
	case map[any]any:
		out := make(Mapping, len(val))
		for k, item := range val {
			key := fmt.Sprint(k)
			t, err := fromAny(item, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = t
		}
		return out, nil
	case []any:
		out := make(Sequence, len(val))
		for i, item := range val {
			t, err := fromAny(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T at %s", v, path)
	}
}

// MappingFromAny is FromAny for values that must decode to a mapping.
// A nil value yields an empty mapping.
func MappingFromAny(v any) (Mapping, error) {
	if v == nil {
		return Mapping{}, nil
	}
	t, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	m, ok := t.(Mapping)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got a %s", KindOf(t))
	}
	return m, nil
}

// ToAny converts t into plain Go values suitable for encoding/json.
func ToAny(t Tree) any {
	switch v := t.(type) {
	case Mapping:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = ToAny(item)
		}
		return out
	case Sequence:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = ToAny(item)
		}
		return out
	case Scalar:
		return v.Value
	default:
		return nil
	}
}
