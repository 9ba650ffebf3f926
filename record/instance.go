// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package record

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	serial "github.com/justengel/serial-json"
)

// Instance is one value of a record type: an ordered mapping from field
// name to current value, conforming to the type's field specs. Field order
// always follows the declaration order of the type.
type Instance struct {
	typ    *Type
	values map[string]any
}

// New constructs an instance binding positional arguments to fields in
// declaration order. Fields left unsupplied take their default; a required
// field with no default fails with ErrMissingRequired.
func (t *Type) New(args ...any) (*Instance, error) {
	return t.Apply(args, nil)
}

// MustNew is New that panics on error.
func (t *Type) MustNew(args ...any) *Instance {
	in, err := t.New(args...)
	if err != nil {
		panic(err)
	}
	return in
}

// Make constructs an instance binding values by field name. Unknown keys
// are ignored, matching decode behavior for payloads with extra entries.
func (t *Type) Make(values map[string]any) (*Instance, error) {
	return t.Apply(nil, values)
}

// Apply constructs an instance from positional and named values together.
// Positional arguments win over named ones for the same field.
func (t *Type) Apply(args []any, kwargs map[string]any) (*Instance, error) {
	in := &Instance{
		typ:    t,
		values: make(map[string]any, len(t.fields)),
	}

	var errs serial.Errs
	for i, f := range t.fields {
		kwarg, named := kwargs[f.name]
		switch {
		case f.init && i < len(args):
			errs.Add(in.Set(f.name, args[i]))
		case f.init && named:
			errs.Add(in.Set(f.name, kwarg))
		default:
			if v, ok := f.defaultValue(); ok {
				errs.Add(in.Set(f.name, v))
				break
			}
			if f.IsRequired() {
				return nil, errors.Wrapf(ErrMissingRequired, "%s.%s", t.name, f.name)
			}
		}
		if errs.Errored() {
			return nil, errs.Err
		}
	}
	return in, nil
}

// Type returns the record type of the instance.
func (in *Instance) Type() *Type { return in.typ }

// SerialName returns the registry tag the instance serializes under. A nil
// instance has no tag, so registry lookups on one miss instead of crashing.
func (in *Instance) SerialName() string {
	if in == nil || in.typ == nil {
		return ""
	}
	return in.typ.name
}

// Copy returns a shallow copy sharing field values but not storage.
func (in *Instance) Copy() *Instance {
	return &Instance{typ: in.typ, values: maps.Clone(in.values)}
}

// Get returns the named field's current value. Unset fields fail with
// ErrUnsetField, unknown names with ErrUnknownField.
func (in *Instance) Get(name string) (any, error) {
	f := in.typ.byName[name]
	if f == nil {
		return nil, errors.Wrapf(ErrUnknownField, "%s.%s", in.typ.name, name)
	}
	v, ok := in.value(f)
	if !ok {
		return nil, errors.Wrapf(ErrUnsetField, "%s.%s", in.typ.name, name)
	}
	return v, nil
}

// MustGet is Get that panics on error.
func (in *Instance) MustGet(name string) any {
	v, err := in.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set assigns the named field. Computed fields run their setter; stored
// fields coerce the value to the declared type. Incoercible values fail
// with ErrTypeMismatch.
func (in *Instance) Set(name string, v any) error {
	f := in.typ.byName[name]
	if f == nil {
		return errors.Wrapf(ErrUnknownField, "%s.%s", in.typ.name, name)
	}
	if f.computed {
		return f.set(in, v)
	}
	cv, err := f.coerce(v)
	if err != nil {
		return err
	}
	in.values[f.name] = cv
	return nil
}

func (in *Instance) value(f *Field) (any, bool) {
	if f.computed {
		return f.get(in)
	}
	v, ok := in.values[f.name]
	return v, ok
}

// Dict exports the instance as a plain field map, omitting unset fields,
// fields excluded from the payload, and fields equal to their skip-dict
// sentinel.
func (in *Instance) Dict() map[string]any {
	out := make(map[string]any, len(in.typ.fields))
	for _, f := range in.typ.fields {
		if !f.dict {
			continue
		}
		v, ok := in.value(f)
		if !ok {
			continue
		}
		if f.hasSkipDict && valueEqual(v, f.skipDict) {
			continue
		}
		out[f.name] = v
	}
	return out
}

// JSON serializes the instance to JSON text.
func (in *Instance) JSON(opts ...serial.DumpOption) (string, error) {
	return in.typ.registry.Dumps(in, opts...)
}

// String renders the instance as Name(field=value, ...) with fields in
// declaration order, omitting unset fields, fields excluded from display,
// and fields equal to their skip-repr sentinel.
func (in *Instance) String() string {
	parts := make([]string, 0, len(in.typ.fields))
	for _, f := range in.typ.fields {
		if !f.repr {
			continue
		}
		v, ok := in.value(f)
		if !ok {
			continue
		}
		if f.hasSkipRepr && valueEqual(v, f.skipRepr) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.name, v))
	}
	return fmt.Sprintf("%s(%s)", in.typ.name, strings.Join(parts, ", "))
}

// Equal compares all stored and computed field values pairwise. Instances
// of different shapes are unequal. Equal never panics; any failure during
// comparison yields false.
func (in *Instance) Equal(other any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()

	o, ok := other.(*Instance)
	if !ok || o == nil {
		return false
	}

	mine := in.compareValues()
	theirs := o.compareValues()
	if len(mine) != len(theirs) {
		return false
	}
	for name, v := range mine {
		ov, ok := theirs[name]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func (in *Instance) compareValues() map[string]any {
	out := make(map[string]any, len(in.typ.fields))
	for _, f := range in.typ.fields {
		if !f.compare {
			continue
		}
		if v, ok := in.value(f); ok {
			out[f.name] = v
		}
	}
	return out
}

// valueEqual compares field values with numeric tolerance: an int 1 equals
// a float64 1 so decoded JSON numbers compare cleanly.
func valueEqual(a, b any) bool {
	if ia, ok := a.(*Instance); ok {
		return ia.Equal(b)
	}
	if ib, ok := b.(*Instance); ok {
		return ib.Equal(a)
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	return aok && bok && af == bf
}

func numericValue(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case isIntegerKind(rv.Kind()):
		if rv.CanUint() {
			return float64(rv.Uint()), true
		}
		return float64(rv.Int()), true
	case isFloatKind(rv.Kind()):
		return rv.Float(), true
	}
	return 0, false
}
