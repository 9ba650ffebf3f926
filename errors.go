// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serial

import (
	"github.com/cockroachdb/errors"
)

// Common serialization errors
var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrUnknownTag      = errors.New("unknown serializer tag")
	ErrNonStringKey    = errors.New("map key is not a string")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNotRegistered   = errors.New("no serializer registered")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrInvalidWeekday  = errors.New("invalid weekday")
)

// Errs collects errors during a series of operations.
// It stores only the first error encountered.
type Errs struct {
	Err error
}

// Errored returns true if an error has been recorded.
func (errs *Errs) Errored() bool {
	return errs.Err != nil
}

// Add records the first non-nil error.
func (errs *Errs) Add(errors ...error) {
	if errs.Err == nil {
		for _, err := range errors {
			if err != nil {
				errs.Err = err
				break
			}
		}
	}
}
