// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekdaysDefaultAllDays(t *testing.T) {
	w, err := NewWeekdays()
	require.NoError(t, err)
	require.Equal(t, Weekdays(WeekdayNames), w)
	for _, day := range WeekdayNames {
		require.True(t, w.Contains(day))
	}
}

func TestWeekdaysSingleDayForms(t *testing.T) {
	for _, day := range WeekdayNames {
		for _, form := range []string{day, day[:3], day + "s", strings.ToUpper(day)} {
			w := MustWeekdays(form)
			require.Equal(t, Weekdays{day}, w, form)
		}
	}

	// Case-insensitive.
	require.Equal(t, Weekdays{Sunday}, MustWeekdays("SUNDAY"))
	require.Equal(t, Weekdays{Tuesday}, MustWeekdays("TUE"))

	// monday=0 .. sunday=6 integer aliases.
	require.Equal(t, Weekdays{Monday}, MustWeekdays(0))
	require.Equal(t, Weekdays{Sunday}, MustWeekdays(6))

	// time.Weekday values.
	require.Equal(t, Weekdays{Friday}, MustWeekdays(time.Friday))
}

func TestWeekdaysInvalid(t *testing.T) {
	_, err := NewWeekdays("blursday")
	require.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = NewWeekdays(9)
	require.ErrorIs(t, err, ErrInvalidWeekday)

	require.False(t, IsWeekday("blursday"))
	require.True(t, IsWeekday("Sat"))
}

func TestWeekdaysAddRemoveOrder(t *testing.T) {
	w := AllWeekdays()
	require.NoError(t, w.Remove("SUnday"))
	require.False(t, w.Contains("sunday"))
	require.Len(t, w, 6)

	// Adding back restores canonical sunday-first order.
	require.NoError(t, w.Add("sunday"))
	require.Equal(t, Weekdays(WeekdayNames), w)

	// Duplicates are ignored.
	require.NoError(t, w.Add("monday"))
	require.Len(t, w, 7)

	require.NoError(t, w.SetDay("mon", false))
	require.False(t, w.Contains("monday"))
	require.NoError(t, w.SetDay("mon", true))
	require.Equal(t, Weekdays(WeekdayNames), w)
}

func TestWeekdaysWithWithout(t *testing.T) {
	w := MustWeekdays("monday", "wednesday")
	require.Equal(t, Weekdays{Monday, Wednesday}, w)

	w2 := w.With("TUESDAY")
	require.Equal(t, Weekdays{Monday, Tuesday, Wednesday}, w2)
	require.Equal(t, Weekdays{Monday, Wednesday}, w, "With must not mutate")

	// Unrecognized designators are skipped, not errors.
	require.Equal(t, w2, w2.With("blursday"))

	w3 := w2.Without("monday", "nonsense")
	require.Equal(t, Weekdays{Tuesday, Wednesday}, w3)
}

func TestWeekdaysFlatten(t *testing.T) {
	w := MustWeekdays([]string{"fri", "sat"})
	require.Equal(t, Weekdays{Friday, Saturday}, w)

	w = MustWeekdays([]any{"sun", 0})
	require.Equal(t, Weekdays{Sunday, Monday}, w)

	w = MustWeekdays(MustWeekdays("tue"))
	require.Equal(t, Weekdays{Tuesday}, w)
}

func TestWeekdaysRoundTrip(t *testing.T) {
	for _, want := range []Weekdays{
		AllWeekdays(),
		MustWeekdays("monday", "friday"),
		{},
	} {
		text, err := Dumps(want)
		require.NoError(t, err)

		got, err := Loads(text)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestWeekdaysNilEncodesAsEmpty(t *testing.T) {
	// A nil set serializes as an empty list and round-trips to an empty set.
	enc, err := Encode(Weekdays(nil))
	require.NoError(t, err)
	require.Equal(t, map[string]any{TypeKey: "weekdays", ObjectKey: []any{}}, enc)

	got, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, Weekdays{}, got)

	text, err := Dumps(Weekdays(nil))
	require.NoError(t, err)

	got, err = Loads(text)
	require.NoError(t, err)
	require.Equal(t, Weekdays{}, got)
}

func TestWeekdaysEncodedForm(t *testing.T) {
	enc, err := Encode(MustWeekdays("wed"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{TypeKey: "weekdays", ObjectKey: []any{"wednesday"}}, enc)
}
