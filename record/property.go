// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package record

import (
	"time"

	"github.com/cockroachdb/errors"

	serial "github.com/justengel/serial-json"
)

// Property declares a computed field backed by a private storage slot named
// "_" + name. The default getter and setter read and write that slot; the
// setter runs the field's coercion policy. Override either with the Getter
// and Setter options. Properties are optional unless Required is given.
func Property(name string, opts ...FieldOption) *Field {
	f := NewField(name, opts...)
	f.computed = true
	if !f.requiredSet {
		f.required = false
	}
	if f.get == nil {
		f.get = func(in *Instance) (any, bool) {
			v, ok := in.values[f.backing()]
			return v, ok
		}
	}
	if f.set == nil {
		f.set = func(in *Instance, v any) error {
			cv, err := f.coerce(v)
			if err != nil {
				return err
			}
			in.values[f.backing()] = cv
			return nil
		}
	}
	return f
}

// TimeProperty declares a computed field that always holds a time.Time.
// Assigned strings are parsed with serial.MakeDatetime.
func TimeProperty(name string, opts ...FieldOption) *Field {
	backing := "_" + name
	setter := Setter(func(in *Instance, v any) error {
		switch val := v.(type) {
		case time.Time:
			in.values[backing] = val
			return nil
		case *time.Time:
			in.values[backing] = *val
			return nil
		case string:
			t, err := serial.MakeDatetime(val)
			if err != nil {
				return err
			}
			in.values[backing] = t
			return nil
		}
		return errors.Wrapf(serial.ErrTypeMismatch,
			"field %s wants a time.Time or datetime string, got %T", name, v)
	})
	return Property(name, append([]FieldOption{setter}, opts...)...)
}

// WeekdaysProperty declares a computed field that always holds a
// serial.Weekdays set. Assigned names, slices and sets are coerced with
// serial.NewWeekdays.
func WeekdaysProperty(name string, opts ...FieldOption) *Field {
	backing := "_" + name
	setter := Setter(func(in *Instance, v any) error {
		switch val := v.(type) {
		case serial.Weekdays:
			in.values[backing] = val
			return nil
		case nil:
			in.values[backing] = serial.Weekdays{}
			return nil
		}
		w, err := serial.NewWeekdays(v)
		if err != nil {
			return errors.Wrapf(serial.ErrTypeMismatch,
				"field %s wants weekdays, got %T", name, v)
		}
		in.values[backing] = w
		return nil
	})
	return Property(name, append([]FieldOption{setter}, opts...)...)
}
