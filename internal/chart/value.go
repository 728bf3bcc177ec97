// internal/chart/value.go
//
// Selection value and its transport codec.
//
// Context
//   The surface reports selection as a JSON document (points, boxes,
//   lassos).  Before it reports anything, the value is Empty.  The codec is
//   what the widget registry calls:
//
//      raw nil, "", "null"  → Empty
//      anything else        → Selection(payload), decoded verbatim
//
//   Serialization is JSON.  Members JSON cannot encode are written as their
//   fmt.Sprint form so a selection carrying odd values still persists.
//
//------------------------------------------------------------------------------

package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Value is either Empty or a Selection carrying the surface payload.
//
// Payloads read back from the surface are plain JSON values: objects are
// map[string]any, arrays []any, and numbers json.Number (so integers and
// floats survive exactly).  A handler comparing against Go literals should
// convert first, e.g. n.(json.Number).Float64().
type Value struct {
	payload any
	present bool
}

// Empty returns the value of a chart nobody has selected on.
func Empty() Value { return Value{} }

// Selection wraps a reported payload.  A nil payload is Empty, matching
// what the surface's "null" decodes to.
func Selection(payload any) Value {
	if payload == nil {
		return Empty()
	}
	return Value{payload: payload, present: true}
}

// IsEmpty reports whether no selection has been made.
func (v Value) IsEmpty() bool { return !v.present }

// Payload returns the selection payload, nil when Empty.
func (v Value) Payload() any { return v.payload }

// Map returns the payload as an object.  Empty and non-object payloads
// yield an empty map.
func (v Value) Map() map[string]any {
	if m, ok := v.payload.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// MarshalJSON writes the serialized form.
func (v Value) MarshalJSON() ([]byte, error) {
	s, err := SerializeValue(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// DeserializeValue implements widget.Deserializer.
func DeserializeValue(raw []byte, _ string) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("selection payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("selection payload: trailing data")
	}
	return Selection(payload), nil
}

// SerializeValue implements widget.Serializer.  A bare payload (not wrapped
// in Value) is accepted and treated as a Selection.
func SerializeValue(v any) (string, error) {
	var payload any
	switch t := v.(type) {
	case Value:
		if t.IsEmpty() {
			return "{}", nil
		}
		payload = t.payload
	case *Value:
		if t == nil || t.IsEmpty() {
			return "{}", nil
		}
		payload = t.payload
	default:
		payload = v
	}

	b, err := json.Marshal(payload)
	if err == nil {
		return string(b), nil
	}
	var ute *json.UnsupportedTypeError
	var uve *json.UnsupportedValueError
	if !errors.As(err, &ute) && !errors.As(err, &uve) {
		return "", err
	}
	b, err = json.Marshal(stringify(reflect.ValueOf(payload)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stringify rebuilds rv with every member encoding/json rejects replaced
// by its fmt.Sprint form.
func stringify(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return stringify(rv.Elem())
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = stringify(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = stringify(rv.Index(i))
		}
		return out
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return rv.Interface()
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return fmt.Sprint(rv.Interface())
	case reflect.Struct:
		if rv.CanInterface() {
			if _, err := json.Marshal(rv.Interface()); err == nil {
				return rv.Interface()
			}
			return fmt.Sprint(rv.Interface())
		}
		return nil
	default:
		if rv.CanInterface() {
			return rv.Interface()
		}
		return nil
	}
}
