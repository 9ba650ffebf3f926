// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"github.com/cockroachdb/errors"
)

// Byte sequences serialize as text through the Latin-1 mapping: byte N
// becomes code point N. The mapping is reversible for all 256 byte values
// and is part of the wire format.

// BytesToString converts b to its Latin-1 text form.
func BytesToString(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// BytesFromString converts Latin-1 text back to bytes. Code points above
// 0xFF cannot come from BytesToString and are rejected.
func BytesFromString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, errors.Wrapf(ErrInvalidFormat, "code point %U is outside latin-1", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

func bytesEncode(v any) (any, error) {
	switch b := v.(type) {
	case []byte:
		return BytesToString(b), nil
	case *[]byte:
		return BytesToString(*b), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "expected []byte, got %T", v)
}

func bytesDecode(state any) (any, error) {
	s, ok := state.(string)
	if !ok {
		return nil, errors.Wrapf(ErrTypeMismatch, "bytes state must be a string, got %T", state)
	}
	return BytesFromString(s)
}

func init() {
	DefaultRegistry.MustRegister([]byte(nil),
		WithName("bytes"),
		WithEncode(bytesEncode),
		WithDecode(bytesDecode))
}
