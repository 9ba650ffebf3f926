// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"encoding"
	"reflect"

	"github.com/cockroachdb/errors"
)

// Reserved envelope keys. A serialized registered type is a JSON object
// carrying its tag under TypeKey; map-shaped states are tagged in place,
// anything else is wrapped under ObjectKey. Both keys are wire format.
const (
	TypeKey   = "SERIALIZER_TYPE"
	ObjectKey = "SERIALIZER_OBJ"
)

// Encode converts v into a primitive tree using the default registry.
func Encode(v any) (any, error) {
	return DefaultRegistry.Encode(v)
}

// Encode converts v into a primitive tree: nil, bool, number and string
// values built into slices of any and string-keyed maps. Registered types
// become tagged envelopes. A nil pointer encodes as nil even when its type
// is registered, so converters never see one. Unregistered non-collection
// types fail with ErrUnsupportedType.
//
// There is no cycle detection; encoding a self-referential value recurses
// until the stack is exhausted.
func (r *Registry) Encode(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}

	if s := r.Lookup(v); s != nil {
		return r.envelope(s, v)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := r.Encode(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			enc, err := r.Encode(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return r.Encode(rv.Elem().Interface())
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
	}
}

// envelope encodes the state of a registered value and tags it.
func (r *Registry) envelope(s *Serializer, v any) (any, error) {
	state, err := s.Encode(v)
	if err != nil {
		return nil, err
	}
	enc, err := r.Encode(state)
	if err != nil {
		return nil, err
	}
	if m, ok := enc.(map[string]any); ok {
		m[TypeKey] = s.Name
		return m, nil
	}
	return map[string]any{TypeKey: s.Name, ObjectKey: enc}, nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", errors.Wrapf(ErrNonStringKey, "%v (%s)", k.Interface(), k.Type())
}
