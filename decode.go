// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// Decode rebuilds values from a primitive tree using the default registry.
func Decode(tree any) (any, error) {
	return DefaultRegistry.Decode(tree)
}

// DecodeAs decodes tree, then constructs the given target type from the
// result when it is an untagged map. See Registry.DecodeAs.
func DecodeAs(tree any, target any) (any, error) {
	return DefaultRegistry.DecodeAs(tree, target)
}

// Decode walks a primitive tree bottom-up and rebuilds registered types from
// their tagged envelopes. Untagged maps and slices decode element-wise;
// primitives pass through. A tag with no registered serializer fails with
// ErrUnknownTag.
func (r *Registry) Decode(tree any) (any, error) {
	switch t := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			dv, err := r.Decode(v)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}

		tag, tagged := out[TypeKey]
		if !tagged {
			return out, nil
		}
		name, ok := tag.(string)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownTag, "tag %v is not a string", tag)
		}
		delete(out, TypeKey)

		s := r.LookupName(name)
		if s == nil {
			return nil, errors.Wrapf(ErrUnknownTag, "%q", name)
		}
		state := any(out)
		if obj, ok := out[ObjectKey]; ok {
			delete(out, ObjectKey)
			state = obj
		}
		return s.Decode(state)
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			dv, err := r.Decode(v)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	default:
		return tree, nil
	}
}

// DecodeAs decodes tree and, when the result is a plain untagged map,
// constructs the target type from it by name. target may be a tag name
// string, a reflect.Type, or any value with a registered serializer.
func (r *Registry) DecodeAs(tree any, target any) (any, error) {
	v, err := r.Decode(tree)
	if err != nil {
		return nil, err
	}

	s := r.lookupTarget(target)
	if s == nil {
		return nil, errors.Wrapf(ErrNotRegistered, "target %v", target)
	}
	if m, ok := v.(map[string]any); ok {
		return s.Decode(m)
	}
	return v, nil
}

func (r *Registry) lookupTarget(target any) *Serializer {
	switch t := target.(type) {
	case string:
		return r.LookupName(t)
	case reflect.Type:
		return r.LookupType(t)
	default:
		return r.Lookup(target)
	}
}
