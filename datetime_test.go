// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateRoundTrip(t *testing.T) {
	want := NewDate(2020, time.January, 3)
	text, err := Dumps(want)
	require.NoError(t, err)

	got, err := Loads(text)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestClockRoundTrip(t *testing.T) {
	for _, want := range []Clock{
		NewClock(1, 40, 50, 0),
		NewClock(14, 24, 55, 200000),
		NewClock(0, 0, 0, 1),
		NewClock(23, 59, 59, 999999999),
	} {
		text, err := Dumps(want)
		require.NoError(t, err)

		got, err := Loads(text)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDatetimeRoundTrip(t *testing.T) {
	for _, want := range []time.Time{
		time.Date(2020, time.January, 3, 1, 40, 50, 0, time.UTC),
		time.Date(2020, time.January, 3, 1, 40, 50, 200000, time.UTC),
		time.Date(1999, time.December, 31, 23, 59, 59, 999999999, time.UTC),
	} {
		text, err := Dumps(want)
		require.NoError(t, err)

		got, err := Loads(text)
		require.NoError(t, err)
		require.IsType(t, time.Time{}, got)
		require.True(t, want.Equal(got.(time.Time)), "want %v, got %v", want, got)
	}
}

func TestDatetimeKeepsZoneOffset(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	want := time.Date(2020, time.January, 3, 1, 40, 50, 0, loc)

	text, err := Dumps(want)
	require.NoError(t, err)

	got, err := Loads(text)
	require.NoError(t, err)
	require.True(t, want.Equal(got.(time.Time)))
	_, offset := got.(time.Time).Zone()
	require.Equal(t, -5*60*60, offset)
}

func TestMakeDateFormats(t *testing.T) {
	want := NewDate(2019, time.April, 17)
	for _, s := range []string{
		"2019-04-17", "04/17/2019",
		"Apr 17 2019", "Apr 17, 2019",
		"17 Apr 2019", "17 Apr, 2019",
		"April 17 2019", "April 17, 2019",
		"17 April 2019", "17 April, 2019",
	} {
		got, err := MakeDate(s)
		require.NoError(t, err, s)
		require.Equal(t, want, got, s)
	}

	_, err := MakeDate("not a date")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMakeClockFormats(t *testing.T) {
	want := NewClock(14, 24, 55, 0)
	for _, s := range []string{
		"02:24:55 PM", "2:24:55 PM", "14:24:55",
	} {
		got, err := MakeClock(s)
		require.NoError(t, err, s)
		require.Equal(t, want, got, s)
	}

	got, err := MakeClock("14:24:55.000200")
	require.NoError(t, err)
	require.Equal(t, NewClock(14, 24, 55, 200000), got)

	got, err = MakeClock("02:24 PM")
	require.NoError(t, err)
	require.Equal(t, NewClock(14, 24, 0, 0), got)
}

func TestMakeDatetimeFormats(t *testing.T) {
	got, err := MakeDatetime("2020-01-03 1:40:50 PM")
	require.NoError(t, err)
	require.True(t, time.Date(2020, time.January, 3, 13, 40, 50, 0, time.UTC).Equal(got))

	got, err = MakeDatetime("2020-01-03T01:40:50.0002Z")
	require.NoError(t, err)
	require.True(t, time.Date(2020, time.January, 3, 1, 40, 50, 200000, time.UTC).Equal(got))

	_, err = MakeDatetime("not a datetime")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDateClockHelpers(t *testing.T) {
	d := NewDate(2020, time.January, 3)
	c := NewClock(1, 40, 50, 0)
	require.Equal(t, "2020-01-03", d.String())
	require.Equal(t, "01:40:50", c.String())

	ts := d.Time(c, nil)
	require.Equal(t, time.Date(2020, time.January, 3, 1, 40, 50, 0, time.UTC), ts)
	require.Equal(t, d, DateOf(ts))
	require.Equal(t, c, ClockOf(ts))

	require.True(t, Date{}.IsZero())
	require.True(t, Clock{}.IsZero())
	require.False(t, d.IsZero())
}
