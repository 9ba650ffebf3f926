// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var (
	jsonStd    = jsoniter.ConfigCompatibleWithStandardLibrary
	jsonSorted = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
	}.Froze()
)

// DumpOption configures the JSON text writer. Options only affect the text
// layer, never encoding semantics.
type DumpOption func(*dumpOptions)

type dumpOptions struct {
	indent    bool
	prefix    string
	indentStr string
	sortKeys  bool
}

// Indent pretty-prints output with the given line prefix and indent string.
func Indent(prefix, indent string) DumpOption {
	return func(o *dumpOptions) {
		o.indent = true
		o.prefix = prefix
		o.indentStr = indent
	}
}

// SortKeys writes object keys in sorted order for deterministic output.
func SortKeys() DumpOption {
	return func(o *dumpOptions) { o.sortKeys = true }
}

// LoadOption configures decoding of JSON text.
type LoadOption func(*loadOptions)

type loadOptions struct {
	target any
}

// As requests decoding the top-level object into a specific registered
// target type: a tag name string, a reflect.Type, or a registered value.
func As(target any) LoadOption {
	return func(o *loadOptions) { o.target = target }
}

// Dumps serializes v to JSON text using the default registry.
func Dumps(v any, opts ...DumpOption) (string, error) {
	return DefaultRegistry.Dumps(v, opts...)
}

// Dump serializes v as JSON text written to w using the default registry.
func Dump(w io.Writer, v any, opts ...DumpOption) error {
	return DefaultRegistry.Dump(w, v, opts...)
}

// Loads deserializes JSON text using the default registry.
func Loads(text string, opts ...LoadOption) (any, error) {
	return DefaultRegistry.Loads(text, opts...)
}

// Load deserializes JSON text read from rd using the default registry.
func Load(rd io.Reader, opts ...LoadOption) (any, error) {
	return DefaultRegistry.Load(rd, opts...)
}

// Dumps encodes v into a primitive tree and hands the tree to the JSON
// writer.
func (r *Registry) Dumps(v any, opts ...DumpOption) (string, error) {
	b, err := r.marshal(v, opts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Dump is Dumps writing to w.
func (r *Registry) Dump(w io.Writer, v any, opts ...DumpOption) error {
	b, err := r.marshal(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (r *Registry) marshal(v any, opts []DumpOption) ([]byte, error) {
	var o dumpOptions
	for _, opt := range opts {
		opt(&o)
	}

	tree, err := r.Encode(v)
	if err != nil {
		return nil, err
	}

	cfg := jsonStd
	if o.sortKeys {
		cfg = jsonSorted
	}
	if o.indent {
		return cfg.MarshalIndent(tree, o.prefix, o.indentStr)
	}
	return cfg.Marshal(tree)
}

// Loads parses JSON text into a primitive tree and decodes it.
func (r *Registry) Loads(text string, opts ...LoadOption) (any, error) {
	var tree any
	if err := jsonStd.UnmarshalFromString(text, &tree); err != nil {
		return nil, err
	}
	return r.decodeTree(tree, opts)
}

// Load is Loads reading from rd.
func (r *Registry) Load(rd io.Reader, opts ...LoadOption) (any, error) {
	var tree any
	if err := jsonStd.NewDecoder(rd).Decode(&tree); err != nil {
		return nil, err
	}
	return r.decodeTree(tree, opts)
}

func (r *Registry) decodeTree(tree any, opts []LoadOption) (any, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.target != nil {
		return r.DecodeAs(tree, o.target)
	}
	return r.Decode(tree)
}
