// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package record

import (
	"math"
	"reflect"

	"github.com/cockroachdb/errors"

	serial "github.com/justengel/serial-json"
)

// Field describes one record field: its name, declared type, default, and
// display/serialization behavior. A field is either stored or computed,
// never both.
type Field struct {
	name   string
	typ    reflect.Type
	target *Type

	def        any
	hasDefault bool
	factory    func() any

	required    bool
	requiredSet bool

	init    bool
	repr    bool
	dict    bool
	compare bool

	skipRepr    any
	hasSkipRepr bool
	skipDict    any
	hasSkipDict bool

	computed bool
	get      func(*Instance) (any, bool)
	set      func(*Instance, any) error
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// NewField declares a stored field. Without a default the field is required.
func NewField(name string, opts ...FieldOption) *Field {
	f := &Field{
		name:    name,
		init:    true,
		repr:    true,
		dict:    true,
		compare: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Default sets a static default value. Mutable defaults (slices, maps,
// record instances) are shallow-copied per instance. The declared type is
// inferred from the default when not given explicitly.
func Default(v any) FieldOption {
	return func(f *Field) {
		f.def = v
		f.hasDefault = true
	}
}

// Factory sets a zero-argument producer invoked fresh per instance when the
// field value isn't supplied.
func Factory(fn func() any) FieldOption {
	return func(f *Field) { f.factory = fn }
}

// Required forces the field to be required even when a default exists.
func Required() FieldOption {
	return func(f *Field) {
		f.required = true
		f.requiredSet = true
	}
}

// Optional marks the field as never required.
func Optional() FieldOption {
	return func(f *Field) {
		f.required = false
		f.requiredSet = true
	}
}

// TypeOf declares the field type from a prototype value. Assigned values are
// coerced to it; incompatible values fail with ErrTypeMismatch.
func TypeOf(prototype any) FieldOption {
	return func(f *Field) { f.typ = reflect.TypeOf(prototype) }
}

// Of declares the field as holding an instance of the given record type.
// Assigned sequences and maps are coerced into that type.
func Of(t *Type) FieldOption {
	return func(f *Field) { f.target = t }
}

// NoInit excludes the field from constructor arguments.
func NoInit() FieldOption {
	return func(f *Field) { f.init = false }
}

// NoRepr excludes the field from the display form.
func NoRepr() FieldOption {
	return func(f *Field) { f.repr = false }
}

// NoDict excludes the field from the serialized payload.
func NoDict() FieldOption {
	return func(f *Field) { f.dict = false }
}

// NoCompare excludes the field from equality.
func NoCompare() FieldOption {
	return func(f *Field) { f.compare = false }
}

// SkipRepr omits the field from the display form whenever its value equals
// the sentinel.
func SkipRepr(sentinel any) FieldOption {
	return func(f *Field) {
		f.skipRepr = sentinel
		f.hasSkipRepr = true
	}
}

// SkipDict omits the field from the serialized payload whenever its value
// equals the sentinel.
func SkipDict(sentinel any) FieldOption {
	return func(f *Field) {
		f.skipDict = sentinel
		f.hasSkipDict = true
	}
}

// Getter overrides the computed-field getter. The bool result reports
// whether the field currently has a value.
func Getter(fn func(*Instance) (any, bool)) FieldOption {
	return func(f *Field) { f.get = fn }
}

// Setter overrides the computed-field setter.
func Setter(fn func(*Instance, any) error) FieldOption {
	return func(f *Field) { f.set = fn }
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Computed reports whether the field is computed rather than stored.
func (f *Field) Computed() bool { return f.computed }

// HasDefault reports whether the field has a default value or factory.
func (f *Field) HasDefault() bool { return f.hasDefault || f.factory != nil }

// IsRequired reports whether construction must supply a value.
func (f *Field) IsRequired() bool { return f.init && f.required }

// backing is the private storage slot used by computed fields.
func (f *Field) backing() string { return "_" + f.name }

// finalize resolves deferred flag defaults once the field joins a type.
func (f *Field) finalize() error {
	if f.name == "" {
		return errors.Wrap(ErrInvalidField, "field name is empty")
	}
	if f.name[0] == '_' {
		return errors.Wrapf(ErrInvalidField, "field %s: names starting with _ are reserved", f.name)
	}
	if f.hasDefault && f.factory != nil {
		return errors.Wrapf(ErrInvalidField, "field %s has both a default and a factory", f.name)
	}
	if !f.requiredSet {
		f.required = !f.computed && !f.HasDefault()
	}
	if f.typ == nil && f.hasDefault && f.target == nil {
		f.typ = reflect.TypeOf(f.def)
	}
	return nil
}

// defaultValue produces a per-instance default. Static defaults are
// shallow-copied so instances never share a mutable value.
func (f *Field) defaultValue() (any, bool) {
	if f.factory != nil {
		return f.factory(), true
	}
	if f.hasDefault {
		return shallowCopy(f.def), true
	}
	return nil, false
}

// coerce applies the assignment policy: same type passes, sequences and
// maps construct a declared record type, numbers convert to the declared
// numeric type, anything else fails with ErrTypeMismatch.
func (f *Field) coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if f.target != nil {
		switch val := v.(type) {
		case *Instance:
			if val.typ.isa(f.target) {
				return val, nil
			}
			return nil, errors.Wrapf(serial.ErrTypeMismatch,
				"field %s wants %s, got %s", f.name, f.target.name, val.typ.name)
		case map[string]any:
			return f.target.Make(val)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			if rv.Len() < f.target.RequiredCount() {
				return nil, errors.Wrapf(serial.ErrTypeMismatch,
					"field %s needs at least %d values for %s, got %d",
					f.name, f.target.RequiredCount(), f.target.name, rv.Len())
			}
			args := make([]any, rv.Len())
			for i := range args {
				args[i] = rv.Index(i).Interface()
			}
			return f.target.New(args...)
		}
		return nil, errors.Wrapf(serial.ErrTypeMismatch,
			"field %s wants %s, got %T", f.name, f.target.name, v)
	}

	if f.typ == nil {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == f.typ {
		return v, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(f.typ.Kind()) {
		if isIntegerKind(f.typ.Kind()) && isFloatKind(rv.Kind()) {
			fv := rv.Float()
			if fv != math.Trunc(fv) {
				return nil, errors.Wrapf(serial.ErrTypeMismatch,
					"field %s wants %s, got non-integral %v", f.name, f.typ, fv)
			}
		}
		return rv.Convert(f.typ).Interface(), nil
	}
	if rv.Type().Kind() == f.typ.Kind() && rv.Type().ConvertibleTo(f.typ) {
		return rv.Convert(f.typ).Interface(), nil
	}
	if rv.Type().AssignableTo(f.typ) {
		return v, nil
	}
	return nil, errors.Wrapf(serial.ErrTypeMismatch,
		"field %s wants %s, got %T", f.name, f.typ, v)
}

func isNumericKind(k reflect.Kind) bool {
	return isIntegerKind(k) || isFloatKind(k)
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func shallowCopy(v any) any {
	switch val := v.(type) {
	case *Instance:
		return val.Copy()
	case nil:
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	}
	return v
}
