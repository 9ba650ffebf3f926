// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type vec struct {
	X float64
	Y float64
}

func vecEncode(v any) (any, error) {
	p := v.(vec)
	return map[string]any{"x": p.X, "y": p.Y}, nil
}

func vecDecode(state any) (any, error) {
	m := state.(map[string]any)
	return vec{X: m["x"].(float64), Y: m["y"].(float64)}, nil
}

func TestRegisterLookup(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(vec{}, WithEncode(vecEncode), WithDecode(vecDecode))
	require.NoError(t, err)

	s := reg.Lookup(vec{X: 1, Y: 2})
	require.NotNil(t, s)
	require.Equal(t, "serial.vec", s.Name)

	// Pointer values resolve to the same entry.
	require.Equal(t, s, reg.Lookup(&vec{}))

	// Primitives are never registered.
	require.Nil(t, reg.Lookup(nil))
	require.Nil(t, reg.Lookup(true))
	require.Nil(t, reg.Lookup(1))
	require.Nil(t, reg.Lookup("text"))
}

func TestRegisterOverride(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(vec{}, WithEncode(vecEncode), WithDecode(vecDecode))

	override := func(v any) (any, error) { return "overridden", nil }
	reg.MustRegister(vec{}, WithEncode(override), WithDecode(vecDecode))

	require.Len(t, reg.entries, 1)
	state, err := reg.Lookup(vec{}).Encode(vec{})
	require.NoError(t, err)
	require.Equal(t, "overridden", state)

	enc, err := reg.Encode(vec{X: 1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{TypeKey: "serial.vec", ObjectKey: "overridden"}, enc)
}

func TestRegisterEvictsBothCollisions(t *testing.T) {
	reg := NewRegistry()

	// One entry owns the name, a different entry owns the type.
	reg.MustRegister(nil, WithName("vector"), WithEncode(vecEncode), WithDecode(vecDecode))
	reg.MustRegister(vec{}, WithEncode(vecEncode), WithDecode(vecDecode))
	require.Len(t, reg.entries, 2)

	// Registering with that name and that type replaces both.
	s := reg.MustRegister(vec{}, WithName("vector"), WithEncode(vecEncode), WithDecode(vecDecode))
	require.Len(t, reg.entries, 1)
	require.Equal(t, s, reg.LookupName("vector"))
	require.Equal(t, s, reg.Lookup(vec{}))
	require.Nil(t, reg.LookupName("serial.vec"))
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(vec{}, WithEncode(vecEncode), WithDecode(vecDecode))
	require.NotNil(t, reg.Lookup(vec{}))

	reg.Unregister(vec{})
	require.Nil(t, reg.Lookup(vec{}))
	require.Empty(t, reg.entries)

	_, err := reg.Encode(vec{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRegisterNeedsTypeOrName(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(nil)
	require.ErrorIs(t, err, ErrNotRegistered)

	// Name-only entries must bring their own converters.
	_, err = reg.Register(nil, WithName("thing"))
	require.ErrorIs(t, err, ErrNotRegistered)
}

type counter struct {
	Count float64
}

func (c counter) GetState() map[string]any {
	return map[string]any{"count": c.Count}
}

func (c *counter) SetState(state map[string]any) error {
	if v, ok := state["count"].(float64); ok {
		c.Count = v
	}
	return nil
}

func TestRegisterStateMethods(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(counter{})
	require.NoError(t, err)

	text, err := reg.Dumps(counter{Count: 3})
	require.NoError(t, err)

	got, err := reg.Loads(text)
	require.NoError(t, err)
	require.Equal(t, &counter{Count: 3}, got)
}

func TestRegisterStateMethodsMissing(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(vec{})
	require.ErrorIs(t, err, ErrNotRegistered)
}

type animal struct {
	Legs float64
}

type dog struct {
	animal
	Name string
}

func TestLookupAncestor(t *testing.T) {
	reg := NewRegistry()
	s := reg.MustRegister(animal{},
		WithEncode(func(v any) (any, error) { return map[string]any{}, nil }),
		WithDecode(func(state any) (any, error) { return animal{}, nil }))

	// dog embeds animal; the nearest registered ancestor matches.
	require.Equal(t, s, reg.Lookup(dog{}))

	// A more derived registration wins afterwards.
	sd := reg.MustRegister(dog{},
		WithEncode(func(v any) (any, error) { return map[string]any{}, nil }),
		WithDecode(func(state any) (any, error) { return dog{}, nil }))
	require.Equal(t, sd, reg.Lookup(dog{}))
	require.Equal(t, s, reg.Lookup(animal{}))
}

type stringer interface {
	Display() string
}

type labeled struct {
	Label string
}

func (l labeled) Display() string { return l.Label }

func TestLookupInterface(t *testing.T) {
	reg := NewRegistry()
	ifaceType := reflect.TypeOf((*stringer)(nil)).Elem()
	s := reg.MustRegister(ifaceType,
		WithName("displayable"),
		WithEncode(func(v any) (any, error) { return v.(stringer).Display(), nil }),
		WithDecode(func(state any) (any, error) { return labeled{Label: state.(string)}, nil }))

	require.Equal(t, s, reg.Lookup(labeled{Label: "hi"}))

	enc, err := reg.Encode(labeled{Label: "hi"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{TypeKey: "displayable", ObjectKey: "hi"}, enc)
}

func TestNewRegistryIsolation(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, reg.LookupName("bytes"))
	require.Nil(t, reg.Lookup([]byte("abc")))

	// The default registry carries the built-ins.
	require.NotNil(t, DefaultRegistry.LookupName("bytes"))
	require.NotNil(t, DefaultRegistry.LookupName("datetime"))
	require.NotNil(t, DefaultRegistry.LookupName("date"))
	require.NotNil(t, DefaultRegistry.LookupName("time"))
	require.NotNil(t, DefaultRegistry.LookupName("weekdays"))
}
