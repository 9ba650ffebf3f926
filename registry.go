// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
)

// EncodeFunc converts an object into its plain-data state. The returned
// state must reduce to JSON primitives once encoded recursively.
type EncodeFunc func(v any) (any, error)

// DecodeFunc rebuilds an object from its plain-data state.
type DecodeFunc func(state any) (any, error)

// StateExporter is used by Register when no encode function is given.
type StateExporter interface {
	GetState() map[string]any
}

// StateImporter is used by Register when no decode function is given.
// Decoding allocates a new value and imports the state into it.
type StateImporter interface {
	SetState(state map[string]any) error
}

// TypeNamer lets a value pick its own registry tag. Values implementing it
// dispatch by name instead of by reflect type, which is how record instances
// share a single Go type while serializing under distinct tags.
type TypeNamer interface {
	SerialName() string
}

// Serializer pairs the encode and decode converters for one registered type.
type Serializer struct {
	Type   reflect.Type
	Name   string
	Encode EncodeFunc
	Decode DecodeFunc
}

// RegisterOption configures a Serializer during registration.
type RegisterOption func(*Serializer)

// WithName overrides the tag written into serialized output. The tag is part
// of the wire format; changing it breaks decoding of older payloads.
func WithName(name string) RegisterOption {
	return func(s *Serializer) { s.Name = name }
}

// WithEncode sets the encode converter.
func WithEncode(fn EncodeFunc) RegisterOption {
	return func(s *Serializer) { s.Encode = fn }
}

// WithDecode sets the decode converter.
func WithDecode(fn DecodeFunc) RegisterOption {
	return func(s *Serializer) { s.Decode = fn }
}

// Registry maps types to serializers. Registration is expected to finish
// before concurrent use begins; the lock only keeps registration itself safe.
type Registry struct {
	lock    sync.RWMutex
	entries []*Serializer
	byType  map[reflect.Type]*Serializer
	byName  map[string]*Serializer
}

// NewRegistry returns an empty registry. Most callers use the process-wide
// DefaultRegistry; separate registries exist for isolation (e.g. tests).
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Serializer),
		byName: make(map[string]*Serializer),
	}
}

// DefaultRegistry is the process-wide registry used by the package-level
// functions. Built-in types register themselves into it at init.
var DefaultRegistry = NewRegistry()

var (
	stateExporterType = reflect.TypeOf((*StateExporter)(nil)).Elem()
	stateImporterType = reflect.TypeOf((*StateImporter)(nil)).Elem()
)

// Register installs a serializer for the type of v in the default registry.
func Register(v any, opts ...RegisterOption) (*Serializer, error) {
	return DefaultRegistry.Register(v, opts...)
}

// MustRegister is Register that panics on error. Intended for init-time use.
func MustRegister(v any, opts ...RegisterOption) *Serializer {
	s, err := DefaultRegistry.Register(v, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Unregister removes the serializer for the type of v from the default
// registry.
func Unregister(v any) {
	DefaultRegistry.Unregister(v)
}

// Lookup returns the serializer for v from the default registry, or nil.
func Lookup(v any) *Serializer {
	return DefaultRegistry.Lookup(v)
}

// Register installs a serializer for the type of v. Passing a value whose
// type implements StateExporter and StateImporter is enough by itself; the
// state methods become the converters. Registering a type twice replaces the
// previous entry (last write wins).
//
// v may be a value, a reflect.Type, or nil when WithName plus both converter
// options are supplied (name-only entries, used by the record layer).
func (r *Registry) Register(v any, opts ...RegisterOption) (*Serializer, error) {
	s := &Serializer{}
	switch t := v.(type) {
	case nil:
	case reflect.Type:
		s.Type = normalizeType(t)
	default:
		s.Type = normalizeType(reflect.TypeOf(v))
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.Type == nil && s.Name == "" {
		return nil, errors.Wrap(ErrNotRegistered, "register needs a type or a name")
	}
	if s.Name == "" {
		s.Name = typeName(s.Type)
	}
	if s.Encode == nil || s.Decode == nil {
		if s.Type == nil {
			return nil, errors.Wrapf(ErrNotRegistered, "name-only entry %q needs explicit converters", s.Name)
		}
		exports := s.Type.Implements(stateExporterType) || reflect.PointerTo(s.Type).Implements(stateExporterType)
		imports := reflect.PointerTo(s.Type).Implements(stateImporterType)
		if s.Encode == nil {
			if !exports {
				return nil, errors.Wrapf(ErrNotRegistered, "%s does not implement StateExporter", s.Type)
			}
			s.Encode = stateEncoder(s.Type)
		}
		if s.Decode == nil {
			if !imports {
				return nil, errors.Wrapf(ErrNotRegistered, "*%s does not implement StateImporter", s.Type)
			}
			s.Decode = stateDecoder(s.Type)
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// A registration can collide with one entry by name and another by
	// type; every collision is evicted so the new entry is the only one
	// answering for either key.
	replaced := false
	for i := 0; i < len(r.entries); {
		prev := r.entries[i]
		if prev.Name != s.Name && (s.Type == nil || prev.Type != s.Type) {
			i++
			continue
		}
		delete(r.byName, prev.Name)
		if prev.Type != nil {
			delete(r.byType, prev.Type)
		}
		if !replaced {
			r.entries[i] = s
			replaced = true
			i++
			continue
		}
		r.entries = append(r.entries[:i], r.entries[i+1:]...)
	}
	if !replaced {
		r.entries = append(r.entries, s)
	}
	r.byName[s.Name] = s
	if s.Type != nil {
		r.byType[s.Type] = s
	}
	return s, nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(v any, opts ...RegisterOption) *Serializer {
	s, err := r.Register(v, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Unregister removes the serializer registered for the type of v. v may also
// be a tag name string.
func (r *Registry) Unregister(v any) {
	var s *Serializer
	switch t := v.(type) {
	case string:
		s = r.LookupName(t)
	case reflect.Type:
		s = r.LookupType(t)
	default:
		s = r.Lookup(v)
	}
	if s == nil {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	for i, prev := range r.entries {
		if prev == s {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	delete(r.byName, s.Name)
	if s.Type != nil && r.byType[s.Type] == s {
		delete(r.byType, s.Type)
	}
}

// Lookup returns the serializer for the value v, or nil when no entry
// matches. Primitive types are never registered and always return nil.
func (r *Registry) Lookup(v any) *Serializer {
	if tn, ok := v.(TypeNamer); ok {
		if s := r.LookupName(tn.SerialName()); s != nil {
			return s
		}
	}
	if v == nil {
		return nil
	}
	return r.LookupType(reflect.TypeOf(v))
}

// LookupType returns the serializer for the type t. An exact match wins;
// otherwise the embedded-struct chain of t is walked most-derived-first, and
// finally registered interface types are scanned in registration order.
func (r *Registry) LookupType(t reflect.Type) *Serializer {
	t = normalizeType(t)
	if t == nil {
		return nil
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	if s, ok := r.byType[t]; ok {
		return s
	}

	// Nearest ancestor via embedded structs, breadth-first.
	queue := embeddedTypes(t, nil)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if s, ok := r.byType[cur]; ok {
			return s
		}
		queue = embeddedTypes(cur, queue)
	}

	for _, s := range r.entries {
		if s.Type == nil || s.Type.Kind() != reflect.Interface {
			continue
		}
		if t.Implements(s.Type) || reflect.PointerTo(t).Implements(s.Type) {
			return s
		}
	}
	return nil
}

// LookupName returns the serializer registered under the given tag, or nil.
func (r *Registry) LookupName(name string) *Serializer {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.byName[name]
}

func normalizeType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	return t.String()
}

func embeddedTypes(t reflect.Type, queue []reflect.Type) []reflect.Type {
	if t.Kind() != reflect.Struct {
		return queue
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			queue = append(queue, normalizeType(f.Type))
		}
	}
	return queue
}

func stateEncoder(t reflect.Type) EncodeFunc {
	return func(v any) (any, error) {
		if ex, ok := v.(StateExporter); ok {
			return ex.GetState(), nil
		}
		return nil, errors.Wrapf(ErrUnsupportedType, "%T does not export state", v)
	}
}

func stateDecoder(t reflect.Type) DecodeFunc {
	return func(state any) (any, error) {
		m, ok := state.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrTypeMismatch, "%s state must be a map, got %T", t, state)
		}
		nv := reflect.New(t)
		im, ok := nv.Interface().(StateImporter)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedType, "*%s does not import state", t)
		}
		if err := im.SetState(m); err != nil {
			return nil, err
		}
		return nv.Interface(), nil
	}
}
