// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package record

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	serial "github.com/justengel/serial-json"
)

var (
	ErrInvalidField     = errors.New("invalid field")
	ErrDuplicateField   = errors.New("duplicate field name")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnsetField       = errors.New("field is not set")
	ErrMissingRequired  = errors.New("missing required argument")
	ErrNotARecordStruct = errors.New("prototype is not a struct")
)

// Type is a record type: a named, ordered set of field specifications.
// Defining a type registers its converters into the serializer registry, so
// instances round-trip through JSON immediately.
type Type struct {
	name     string
	fields   []*Field
	byName   map[string]*Field
	parent   *Type
	registry *serial.Registry
}

// New defines a record type in the default registry.
func New(name string, fields ...*Field) (*Type, error) {
	return NewAt(serial.DefaultRegistry, name, fields...)
}

// MustNew is New that panics on error. Intended for package-level type
// definitions.
func MustNew(name string, fields ...*Field) *Type {
	t, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// NewAt defines a record type registered into the given registry.
func NewAt(reg *serial.Registry, name string, fields ...*Field) (*Type, error) {
	return newType(reg, name, nil, fields)
}

func newType(reg *serial.Registry, name string, parent *Type, fields []*Field) (*Type, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidField, "record type name is empty")
	}
	t := &Type{
		name:     name,
		fields:   fields,
		byName:   make(map[string]*Field, len(fields)),
		parent:   parent,
		registry: reg,
	}
	for _, f := range fields {
		if err := f.finalize(); err != nil {
			return nil, err
		}
		if _, exists := t.byName[f.name]; exists {
			return nil, errors.Wrapf(ErrDuplicateField, "%s.%s", name, f.name)
		}
		t.byName[f.name] = f
	}

	_, err := reg.Register(nil,
		serial.WithName(name),
		serial.WithEncode(t.encodeState),
		serial.WithDecode(t.decodeState))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Extend defines a new record type inheriting this type's fields. Fields
// with matching names replace the inherited spec in place; new fields append
// after the inherited ones.
func (t *Type) Extend(name string, fields ...*Field) (*Type, error) {
	merged := make([]*Field, len(t.fields))
	copy(merged, t.fields)
	for _, f := range fields {
		replaced := false
		for i, base := range merged {
			if base.name == f.name {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return newType(t.registry, name, t, merged)
}

// MustExtend is Extend that panics on error.
func (t *Type) MustExtend(name string, fields ...*Field) *Type {
	child, err := t.Extend(name, fields...)
	if err != nil {
		panic(err)
	}
	return child
}

// SerialName returns the registry tag for this type.
func (t *Type) SerialName() string { return t.name }

// Name returns the record type name.
func (t *Type) Name() string { return t.name }

// Fields returns the field specs in declaration order.
func (t *Type) Fields() []*Field {
	out := make([]*Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field returns the spec for the named field, or nil.
func (t *Type) Field(name string) *Field {
	return t.byName[name]
}

// RequiredCount returns how many constructor values the type demands: the
// required fields with no default.
func (t *Type) RequiredCount() int {
	n := 0
	for _, f := range t.fields {
		if f.IsRequired() && !f.HasDefault() {
			n++
		}
	}
	return n
}

// isa reports whether t is the ancestor type or extends it.
func (t *Type) isa(ancestor *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (t *Type) encodeState(v any) (any, error) {
	in, ok := v.(*Instance)
	if !ok {
		return nil, errors.Wrapf(serial.ErrTypeMismatch, "expected %s instance, got %T", t.name, v)
	}
	return in.Dict(), nil
}

func (t *Type) decodeState(state any) (any, error) {
	switch st := state.(type) {
	case map[string]any:
		return t.Make(st)
	case []any:
		return t.New(st...)
	}
	return nil, errors.Wrapf(serial.ErrTypeMismatch, "%s state must be a map or list, got %T", t.name, state)
}

// FromJSON deserializes JSON text into an instance of this type. The text
// may be a tagged envelope or a plain field map.
func (t *Type) FromJSON(text string) (*Instance, error) {
	v, err := t.registry.Loads(text, serial.As(t))
	if err != nil {
		return nil, err
	}
	in, ok := v.(*Instance)
	if !ok {
		return nil, errors.Wrapf(serial.ErrTypeMismatch, "expected %s instance, got %T", t.name, v)
	}
	if !in.typ.isa(t) {
		return nil, errors.Wrapf(serial.ErrTypeMismatch, "expected %s instance, got %s", t.name, in.typ.name)
	}
	return in, nil
}

// FromStruct defines a record type from a plain struct's exported fields.
// Field behavior is declared through `record` struct tags:
//
//	type Point struct {
//		X int
//		Y int
//		Z int `record:"default=0,skip_repr=0,skip_dict=0"`
//	}
//
// Recognized tag entries: default=<literal>, skip_repr=<literal>,
// skip_dict=<literal>, name=<field name>, required, optional, norepr,
// nodict, nocompare, noinit, and "-" to skip the field entirely. Literals
// parse according to the struct field's type.
func FromStruct(name string, prototype any) (*Type, error) {
	return FromStructAt(serial.DefaultRegistry, name, prototype)
}

// MustFromStruct is FromStruct that panics on error.
func MustFromStruct(name string, prototype any) *Type {
	t, err := FromStruct(name, prototype)
	if err != nil {
		panic(err)
	}
	return t
}

// FromStructAt is FromStruct registering into the given registry.
func FromStructAt(reg *serial.Registry, name string, prototype any) (*Type, error) {
	rt := reflect.TypeOf(prototype)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrNotARecordStruct, "%T", prototype)
	}

	var fields []*Field
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		tag := sf.Tag.Get("record")
		if tag == "-" {
			continue
		}
		f, err := structField(sf, tag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return NewAt(reg, name, fields...)
}

func structField(sf reflect.StructField, tag string) (*Field, error) {
	f := NewField(fieldName(sf.Name))
	f.typ = sf.Type

	if tag == "" {
		return f, nil
	}
	for _, entry := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(entry), "=")
		switch key {
		case "name":
			f.name = value
		case "default":
			v, err := parseLiteral(sf.Type, value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s default", f.name)
			}
			f.def = v
			f.hasDefault = true
		case "skip_repr":
			v, err := parseLiteral(sf.Type, value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s skip_repr", f.name)
			}
			f.skipRepr = v
			f.hasSkipRepr = true
		case "skip_dict":
			v, err := parseLiteral(sf.Type, value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s skip_dict", f.name)
			}
			f.skipDict = v
			f.hasSkipDict = true
		case "required":
			f.required = true
			f.requiredSet = true
		case "optional":
			f.required = false
			f.requiredSet = true
		case "norepr":
			f.repr = false
		case "nodict":
			f.dict = false
		case "nocompare":
			f.compare = false
		case "noinit":
			f.init = false
		default:
			if hasValue {
				key = key + "=" + value
			}
			return nil, errors.Wrapf(ErrInvalidField, "field %s: unknown tag entry %q", f.name, key)
		}
	}
	return f, nil
}

// fieldName lowercases the leading character: X becomes x, CreatedOn
// becomes createdOn.
func fieldName(goName string) string {
	return strings.ToLower(goName[:1]) + goName[1:]
}

func parseLiteral(t reflect.Type, s string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(t).Interface(), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidField, "bad bool literal %q", s)
		}
		return reflect.ValueOf(b).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidField, "bad int literal %q", s)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidField, "bad uint literal %q", s)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidField, "bad float literal %q", s)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	}
	return nil, errors.Wrapf(ErrInvalidField, "cannot parse a %s literal from a tag", t)
}
