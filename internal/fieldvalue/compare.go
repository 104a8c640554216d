package fieldvalue

import "encoding/json"

// IsAbsent reports whether a value carries no content: nil and the empty
// string collapse into one absent sentinel so widget output ("" on a cleared
// input) and never-set fields compare equal.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// Equal compares two field values: absent values are equal to each other,
// structured values compare by deep equality rather than reference, and
// numeric values compare by magnitude so JSON round-trips (int vs float64)
// do not register as changes.
func Equal(a, b any) bool {
	if IsAbsent(a) && IsAbsent(b) {
		return true
	}
	if IsAbsent(a) != IsAbsent(b) {
		return false
	}
	return deepEqual(a, b)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, entryA := range av {
			entryB, ok := bv[key]
			if !ok || !deepEqual(entryA, entryB) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	default:
		if an, ok := asFloat(a); ok {
			bn, okB := asFloat(b)
			return okB && an == bn
		}
		return a == b
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
