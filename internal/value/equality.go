package value

// Equal implements structural equality (spec §3.1/§8): primitives compare by
// value, containers compare by deep structural equality, everything else
// (functions, closures, native callbacks, regex, datetime) compares by
// reference/identity since they carry no useful structural notion of
// equality for language code.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case *Array:
		bv := b.(*Array)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *HashMap:
		bv := b.(*HashMap)
		if av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.entries {
			other, ok, err := bv.Get(e.k)
			if err != nil || !ok || !Equal(e.v, other) {
				return false
			}
		}
		return true
	case *HashSet:
		bv := b.(*HashSet)
		if av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.elems {
			has, err := bv.Has(e)
			if err != nil || !has {
				return false
			}
		}
		return true
	case *Queue:
		bv := b.(*Queue)
		return equalSlices(av.Elems, bv.Elems)
	case *Stack:
		bv := b.(*Stack)
		return equalSlices(av.Elems, bv.Elems)
	case Option:
		bv := b.(Option)
		if av.HasValue != bv.HasValue {
			return false
		}
		if !av.HasValue {
			return true
		}
		return Equal(av.Inner, bv.Inner)
	case Result:
		bv := b.(Result)
		if av.IsOk != bv.IsOk {
			return false
		}
		return Equal(av.Inner, bv.Inner)
	case *JSON:
		bv := b.(*JSON)
		return jsonEqual(av.Data, bv.Data)
	default:
		return a == b
	}
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !jsonEqual(v, bvv) {
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
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
