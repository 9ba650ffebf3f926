// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Canonical output layouts. Serialized values always use these; parsing
// additionally accepts the permissive format lists below. The canonical
// layouts are part of the wire format.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04:05.999999999"
	DatetimeLayout = time.RFC3339Nano
)

// Accepted input formats. Order matters: the first layout that parses wins.
var (
	TimeFormats = []string{
		"3:04:05 PM",
		"3:04:05.999999999 PM",
		"3:04 PM",
		"15:04:05",
		"15:04:05.999999999",
		"15:04",
	}

	DateFormats = []string{
		"2006-01-02", "01/02/2006",
		"Jan 2 2006", "Jan 2, 2006",
		"2 Jan 2006", "2 Jan, 2006",
		"January 2 2006", "January 2, 2006",
		"2 January 2006", "2 January, 2006",
	}

	// DatetimeFormats accepts RFC 3339 first, then every date+time
	// combination, then bare dates and bare times.
	DatetimeFormats = buildDatetimeFormats()
)

func buildDatetimeFormats() []string {
	formats := []string{time.RFC3339Nano, time.RFC3339}
	for _, t := range TimeFormats {
		for _, d := range DateFormats {
			formats = append(formats, d+" "+t)
		}
	}
	formats = append(formats, DateFormats...)
	formats = append(formats, TimeFormats...)
	return formats
}

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the given calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time combines the date with a time of day in the given location.
// A nil location means UTC.
func (d Date) Time(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, c.Nanosecond, loc)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.Time(Clock{}, time.UTC).Format(DateLayout)
}

// Clock is a time of day with nanosecond precision.
type Clock struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// NewClock returns the given time of day.
func NewClock(hour, minute, second, nanosecond int) Clock {
	return Clock{Hour: hour, Minute: minute, Second: second, Nanosecond: nanosecond}
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) Clock {
	h, m, s := t.Clock()
	return Clock{Hour: h, Minute: m, Second: s, Nanosecond: t.Nanosecond()}
}

// IsZero reports whether c is midnight exactly.
func (c Clock) IsZero() bool {
	return c == Clock{}
}

func (c Clock) String() string {
	ref := time.Date(0, time.January, 1, c.Hour, c.Minute, c.Second, c.Nanosecond, time.UTC)
	return ref.Format(ClockLayout)
}

// MakeDatetime parses s with the given formats, defaulting to
// DatetimeFormats. Fails with ErrInvalidFormat when nothing matches.
func MakeDatetime(s string, formats ...string) (time.Time, error) {
	if len(formats) == 0 {
		formats = DatetimeFormats
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidFormat, "invalid datetime %q", s)
}

// MakeDate parses s as a calendar date.
func MakeDate(s string, formats ...string) (Date, error) {
	t, err := MakeDatetime(s, formats...)
	if err != nil {
		return Date{}, errors.Wrapf(ErrInvalidFormat, "invalid date %q", s)
	}
	return DateOf(t), nil
}

// MakeClock parses s as a time of day.
func MakeClock(s string, formats ...string) (Clock, error) {
	t, err := MakeDatetime(s, formats...)
	if err != nil {
		return Clock{}, errors.Wrapf(ErrInvalidFormat, "invalid time %q", s)
	}
	return ClockOf(t), nil
}

// stateString pulls the text value out of a {"value": ...} state. A bare
// string state is also accepted.
func stateString(state any) (string, error) {
	switch st := state.(type) {
	case string:
		return st, nil
	case map[string]any:
		if s, ok := st["value"].(string); ok {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrTypeMismatch, "expected a value string, got %T", state)
}

func datetimeEncode(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{"value": t.Format(DatetimeLayout)}, nil
	case *time.Time:
		return map[string]any{"value": t.Format(DatetimeLayout)}, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "expected time.Time, got %T", v)
}

func datetimeDecode(state any) (any, error) {
	s, err := stateString(state)
	if err != nil {
		return nil, err
	}
	return MakeDatetime(s)
}

func dateEncode(v any) (any, error) {
	switch d := v.(type) {
	case Date:
		return map[string]any{"value": d.String()}, nil
	case *Date:
		return map[string]any{"value": d.String()}, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "expected serial.Date, got %T", v)
}

func dateDecode(state any) (any, error) {
	s, err := stateString(state)
	if err != nil {
		return nil, err
	}
	return MakeDate(s)
}

func clockEncode(v any) (any, error) {
	switch c := v.(type) {
	case Clock:
		return map[string]any{"value": c.String()}, nil
	case *Clock:
		return map[string]any{"value": c.String()}, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "expected serial.Clock, got %T", v)
}

func clockDecode(state any) (any, error) {
	s, err := stateString(state)
	if err != nil {
		return nil, err
	}
	return MakeClock(s)
}

func init() {
	DefaultRegistry.MustRegister(time.Time{},
		WithName("datetime"),
		WithEncode(datetimeEncode),
		WithDecode(datetimeDecode))
	DefaultRegistry.MustRegister(Date{},
		WithName("date"),
		WithEncode(dateEncode),
		WithDecode(dateDecode))
	DefaultRegistry.MustRegister(Clock{},
		WithName("time"),
		WithEncode(clockEncode),
		WithDecode(clockDecode))
}
