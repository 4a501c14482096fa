// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"fmt"
	"strconv"

	"golang.org/x/xerrors"
)

// Kind of encode failure.  A Kind is also an error value, so that it can be
// used as the target of xerrors.Is.
type Kind int

const (
	InvalidInput = Kind(iota + 1)
	NoFittingEncoding
	NonConvergence
	InternalConsistency
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case NoFittingEncoding:
		return "no fitting encoding"
	case NonConvergence:
		return "layout did not converge"
	case InternalConsistency:
		return "internal consistency"
	default:
		return "kind " + strconv.Itoa(int(k))
	}
}

func (k Kind) Error() string { return k.String() }

type encodeError struct {
	kind  Kind
	text  string
	cause error
}

func New(kind Kind, text string) error {
	return &encodeError{kind, text, nil}
}

func Errorf(kind Kind, format string, args ...interface{}) error {
	return &encodeError{kind, fmt.Sprintf(format, args...), nil}
}

func Wrap(kind Kind, cause error, text string) error {
	return &encodeError{kind, text, cause}
}

func (e *encodeError) Error() string        { return e.text }
func (e *encodeError) EncodeError() Kind    { return e.kind }
func (e *encodeError) Unwrap() error        { return e.cause }
func (e *encodeError) Is(target error) bool { return target == e.kind }

// KindOf returns zero if err doesn't wrap an encode error.
func KindOf(err error) Kind {
	var e interface{ EncodeError() Kind }
	if xerrors.As(err, &e) {
		return e.EncodeError()
	}
	return 0
}
