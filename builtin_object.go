// builtin_object.go — the __Object bridge library (JSON serialization).
//
// Bridge entries surfaced:
//
//	__Object#serialize    -> String   // JSON encoding of `object`
//	__Object#deserialize  -> Value    // parse the JSON string bound to `data`
//
// Value <-> JSON mapping: Number <-> JSON number, String <-> string,
// Boolean <-> bool, Array <-> array, Nil <-> null. Functions cannot be
// serialized; JSON objects cannot be represented (asx has no map type) —
// both are bridge errors.
package asp

import "encoding/json"

func registerObjectBridge(ip *Interpreter) {
	ip.RegisterNative("__Object#serialize", func(_ *Interpreter, ctx CallCtx) Value {
		v := ctx.MustArg("object")
		raw, err := json.Marshal(valueToJSON(v))
		if err != nil {
			fail("serialize: " + err.Error())
		}
		return Str(string(raw))
	})

	ip.RegisterNative("__Object#deserialize", func(_ *Interpreter, ctx CallCtx) Value {
		v := ctx.MustArg("data")
		if v.Tag != VTStr {
			fail("deserialize: data must be a string")
		}
		var decoded any
		if err := json.Unmarshal([]byte(v.Data.(string)), &decoded); err != nil {
			fail("deserialize: " + err.Error())
		}
		return jsonToValue(decoded)
	})
}

func valueToJSON(v Value) any {
	switch v.Tag {
	case VTNil:
		return nil
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		return v.Data.(float64)
	case VTStr:
		return v.Data.(string)
	case VTArray:
		elems := v.Data.(*ArrayObject).Elems
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = valueToJSON(e)
		}
		return out
	default:
		fail("serialize: cannot serialize a " + tagName(v.Tag))
		return nil
	}
}

func jsonToValue(x any) Value {
	switch t := x.(type) {
	case nil:
		return Nil
	case bool:
		return Bool(t)
	case float64:
		return Num(t)
	case string:
		return Str(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = jsonToValue(e)
		}
		return Arr(elems)
	default:
		fail("deserialize: JSON objects are not representable in asx")
		return Nil
	}
}
