package runtime

import "atlas/internal/value"

// CallGo is a convenience wrapper over Call for a host that would rather
// pass and receive plain Go values than build value.Value by hand: it
// converts each argument with value.ToAtlas, invokes name, then converts the
// result into out with value.FromAtlas (spec.md §6's ToAtlas/FromAtlas
// conversion traits). out must be a non-nil pointer, exactly as FromAtlas
// requires.
func (r *Runtime) CallGo(name string, out any, args ...any) error {
	converted := make([]value.Value, len(args))
	for i, a := range args {
		v, err := value.ToAtlas(a)
		if err != nil {
			return err
		}
		converted[i] = v
	}
	res, evalErr := r.Call(name, converted)
	if evalErr != nil {
		return evalErr
	}
	if out == nil {
		return nil
	}
	return value.FromAtlas(res, out)
}

// SetGlobalGo converts v with value.ToAtlas and binds it as a global under
// name, for a host seeding script-visible configuration from plain Go data.
func (r *Runtime) SetGlobalGo(name string, v any) error {
	converted, err := value.ToAtlas(v)
	if err != nil {
		return err
	}
	r.SetGlobal(name, converted)
	return nil
}

// GetGlobalGo reads global name and converts it into out with
// value.FromAtlas, reporting false if the global is unset.
func (r *Runtime) GetGlobalGo(name string, out any) (bool, error) {
	v, ok := r.GetGlobal(name)
	if !ok {
		return false, nil
	}
	return true, value.FromAtlas(v, out)
}
