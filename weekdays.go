// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Canonical weekday names, sunday first.
const (
	Sunday    = "sunday"
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
)

var (
	// WeekdayNames holds the canonical names in display order.
	WeekdayNames = []string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

	weekdayOrder = map[string]int{
		Sunday: 0, Monday: 1, Tuesday: 2, Wednesday: 3,
		Thursday: 4, Friday: 5, Saturday: 6,
	}

	weekdayAliases = map[string]string{
		"sun": Sunday, "sundays": Sunday,
		"mon": Monday, "mondays": Monday,
		"tue": Tuesday, "tuesdays": Tuesday,
		"wed": Wednesday, "wednesdays": Wednesday,
		"thu": Thursday, "thursdays": Thursday,
		"fri": Friday, "fridays": Friday,
		"sat": Saturday, "saturdays": Saturday,
	}

	// Integer aliases follow the monday=0 .. sunday=6 convention.
	weekdayIndexes = map[int]string{
		0: Monday, 1: Tuesday, 2: Wednesday, 3: Thursday,
		4: Friday, 5: Saturday, 6: Sunday,
	}
)

// Weekdays is an ordered set of weekday names kept in sunday-first order.
// The zero-argument constructor yields all seven days.
type Weekdays []string

// CanonWeekday maps a weekday designator to its canonical name. Accepted
// inputs: canonical names, plurals and three-letter abbreviations in any
// case, monday=0..sunday=6 indexes, and time.Weekday values.
func CanonWeekday(day any) (string, error) {
	switch d := day.(type) {
	case string:
		low := strings.ToLower(strings.TrimSpace(d))
		if _, ok := weekdayOrder[low]; ok {
			return low, nil
		}
		if name, ok := weekdayAliases[low]; ok {
			return name, nil
		}
	case int:
		if name, ok := weekdayIndexes[d]; ok {
			return name, nil
		}
	case float64:
		if name, ok := weekdayIndexes[int(d)]; ok && d == float64(int(d)) {
			return name, nil
		}
	case time.Weekday:
		return strings.ToLower(d.String()), nil
	}
	return "", errors.Wrapf(ErrInvalidWeekday, "%v", day)
}

// IsWeekday reports whether day is a recognized weekday designator.
func IsWeekday(day any) bool {
	_, err := CanonWeekday(day)
	return err == nil
}

// AllWeekdays returns a set holding all seven days.
func AllWeekdays() Weekdays {
	return Weekdays(slices.Clone(WeekdayNames))
}

// NewWeekdays builds a weekday set from the given designators. With no
// arguments every day is included. Slice arguments are flattened.
func NewWeekdays(days ...any) (Weekdays, error) {
	if len(days) == 0 {
		return AllWeekdays(), nil
	}
	w := Weekdays{}
	if err := w.Add(days...); err != nil {
		return nil, err
	}
	return w, nil
}

// MustWeekdays is NewWeekdays that panics on error.
func MustWeekdays(days ...any) Weekdays {
	w, err := NewWeekdays(days...)
	if err != nil {
		panic(err)
	}
	return w
}

// Contains reports whether day is in the set. Unrecognized designators are
// simply not contained.
func (w Weekdays) Contains(day any) bool {
	name, err := CanonWeekday(day)
	return err == nil && slices.Contains(w, name)
}

// IsValid is an alias for Contains.
func (w Weekdays) IsValid(day any) bool {
	return w.Contains(day)
}

// Add inserts days into the set, keeping canonical order. Duplicate days are
// ignored; an unrecognized designator fails with ErrInvalidWeekday.
func (w *Weekdays) Add(days ...any) error {
	for _, day := range days {
		if flat, ok := flattenDays(day); ok {
			if err := w.Add(flat...); err != nil {
				return err
			}
			continue
		}
		name, err := CanonWeekday(day)
		if err != nil {
			return err
		}
		if !slices.Contains(*w, name) {
			*w = append(*w, name)
		}
	}
	w.sort()
	return nil
}

// Remove deletes days from the set. An unrecognized designator fails with
// ErrInvalidWeekday; removing an absent day is a no-op.
func (w *Weekdays) Remove(days ...any) error {
	for _, day := range days {
		name, err := CanonWeekday(day)
		if err != nil {
			return err
		}
		if i := slices.Index(*w, name); i >= 0 {
			*w = slices.Delete(*w, i, i+1)
		}
	}
	return nil
}

// SetDay includes or excludes a single day.
func (w *Weekdays) SetDay(day any, on bool) error {
	if on {
		return w.Add(day)
	}
	return w.Remove(day)
}

// With returns a copy with the given days added. Unrecognized designators
// are skipped.
func (w Weekdays) With(days ...any) Weekdays {
	out := Weekdays(slices.Clone(w))
	valid := lo.Filter(days, func(day any, _ int) bool { return IsWeekday(day) })
	_ = out.Add(valid...)
	return out
}

// Without returns a copy with the given days removed. Unrecognized
// designators are skipped.
func (w Weekdays) Without(days ...any) Weekdays {
	drop := map[string]bool{}
	for _, day := range days {
		if name, err := CanonWeekday(day); err == nil {
			drop[name] = true
		}
	}
	return Weekdays(lo.Filter(w, func(name string, _ int) bool { return !drop[name] }))
}

// Equal reports whether both sets hold the same days.
func (w Weekdays) Equal(other Weekdays) bool {
	return slices.Equal(w, other)
}

func (w Weekdays) String() string {
	return "[" + strings.Join(w, ", ") + "]"
}

func (w *Weekdays) sort() {
	slices.SortFunc(*w, func(a, b string) int {
		return weekdayOrder[a] - weekdayOrder[b]
	})
}

func flattenDays(day any) ([]any, bool) {
	switch d := day.(type) {
	case Weekdays:
		return lo.Map(d, func(name string, _ int) any { return name }), true
	case []string:
		return lo.Map(d, func(name string, _ int) any { return name }), true
	case []any:
		return d, true
	}
	return nil, false
}

func weekdaysEncode(v any) (any, error) {
	switch w := v.(type) {
	case Weekdays:
		return []string(w), nil
	case *Weekdays:
		return []string(*w), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "expected serial.Weekdays, got %T", v)
}

func weekdaysDecode(state any) (any, error) {
	// An empty list stays empty: the all-days default only applies to the
	// zero-argument constructor, never to decoded state.
	switch st := state.(type) {
	case []any:
		w := Weekdays{}
		if err := w.Add(st...); err != nil {
			return nil, err
		}
		return w, nil
	case string:
		return NewWeekdays(st)
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "weekdays state must be a list, got %T", state)
}

func init() {
	DefaultRegistry.MustRegister(Weekdays(nil),
		WithName("weekdays"),
		WithEncode(weekdaysEncode),
		WithDecode(weekdaysDecode))
}
