package value

import (
	"fmt"
	"reflect"
)

// ConversionError is the sum of errors ToAtlas/FromAtlas can raise (spec §6).
type ConversionError struct {
	Kind     string // "type_mismatch" | "array_element" | "object_value"
	Expected string
	Found    string
	Index    int
	Key      string
}

func (e ConversionError) Error() string {
	switch e.Kind {
	case "array_element":
		return fmt.Sprintf("array element %d: expected %s, found %s", e.Index, e.Expected, e.Found)
	case "object_value":
		return fmt.Sprintf("object value %q: expected %s, found %s", e.Key, e.Expected, e.Found)
	default:
		return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
	}
}

func typeMismatch(expected string, found Value) error {
	f := "nil"
	if found != nil {
		f = found.Kind().String()
	}
	return ConversionError{Kind: "type_mismatch", Expected: expected, Found: f}
}

// ToAtlas converts a host Go value into a Value. Supported host types: the
// primitives float64/string/bool, struct{} (unit/Null), pointers (nil ->
// None, non-nil -> Some), slices (-> Array), and map[string]T (-> HashMap).
func ToAtlas(v any) (Value, error) {
	if v == nil {
		return Null{}, nil
	}
	switch t := v.(type) {
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case struct{}:
		return Null{}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return None(), nil
		}
		inner, err := ToAtlas(rv.Elem().Interface())
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := ToAtlas(rv.Index(i).Interface())
			if err != nil {
				return nil, ConversionError{Kind: "array_element", Index: i, Expected: "convertible value", Found: fmt.Sprintf("%T", rv.Index(i).Interface())}
			}
			elems[i] = ev
		}
		return NewArray(elems), nil
	case reflect.Map:
		m := NewHashMap()
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				return nil, typeMismatch("map[string]T", nil)
			}
			val, err := ToAtlas(iter.Value().Interface())
			if err != nil {
				return nil, ConversionError{Kind: "object_value", Key: key, Expected: "convertible value", Found: fmt.Sprintf("%T", iter.Value().Interface())}
			}
			var putErr error
			m, putErr = m.Put(String(key), val)
			if putErr != nil {
				return nil, putErr
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported host type %T for ToAtlas", v)
	}
}

// FromAtlas converts a Value into a host Go value matching the shape of out,
// following the same supported-type set as ToAtlas.
func FromAtlas(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("FromAtlas requires a non-nil pointer destination")
	}
	elem := rv.Elem()
	return fromAtlasInto(v, elem)
}

func fromAtlasInto(v Value, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Float64:
		n, ok := v.(Number)
		if !ok {
			return typeMismatch("number", v)
		}
		dst.SetFloat(float64(n))
		return nil
	case reflect.String:
		s, ok := v.(String)
		if !ok {
			return typeMismatch("string", v)
		}
		dst.SetString(string(s))
		return nil
	case reflect.Bool:
		b, ok := v.(Bool)
		if !ok {
			return typeMismatch("bool", v)
		}
		dst.SetBool(bool(b))
		return nil
	case reflect.Struct:
		if _, ok := v.(Null); !ok {
			return typeMismatch("null", v)
		}
		return nil
	case reflect.Ptr:
		opt, ok := v.(Option)
		if !ok {
			return typeMismatch("option", v)
		}
		if !opt.HasValue {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		target := reflect.New(dst.Type().Elem())
		if err := fromAtlasInto(opt.Inner, target.Elem()); err != nil {
			return err
		}
		dst.Set(target)
		return nil
	case reflect.Slice:
		arr, ok := v.(*Array)
		if !ok {
			return typeMismatch("array", v)
		}
		out := reflect.MakeSlice(dst.Type(), arr.Len(), arr.Len())
		for i, e := range arr.Elems {
			if err := fromAtlasInto(e, out.Index(i)); err != nil {
				return ConversionError{Kind: "array_element", Index: i, Expected: dst.Type().Elem().String(), Found: e.Kind().String()}
			}
		}
		dst.Set(out)
		return nil
	case reflect.Map:
		hm, ok := v.(*HashMap)
		if !ok {
			return typeMismatch("hashmap", v)
		}
		out := reflect.MakeMapWithSize(dst.Type(), hm.Len())
		for _, e := range hm.Entries() {
			keyStr, ok := e.Key.(String)
			if !ok {
				return typeMismatch("string key", e.Key)
			}
			target := reflect.New(dst.Type().Elem()).Elem()
			if err := fromAtlasInto(e.Val, target); err != nil {
				return ConversionError{Kind: "object_value", Key: string(keyStr), Expected: dst.Type().Elem().String(), Found: e.Val.Kind().String()}
			}
			out.SetMapIndex(reflect.ValueOf(string(keyStr)), target)
		}
		dst.Set(out)
		return nil
	default:
		return fmt.Errorf("unsupported destination kind %s for FromAtlas", dst.Kind())
	}
}
