// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors exports the encode error kinds without unnecessary
// dependencies.
package errors

import (
	internal "github.com/tsavola/blockenc/internal/errors"
)

// Kind of encode failure.  Every error returned by the encoder matches its
// kind via xerrors.Is (or errors.Is).
type Kind = internal.Kind

const (
	InvalidInput        = internal.InvalidInput        // Malformed instruction list or configuration.
	NoFittingEncoding   = internal.NoFittingEncoding   // Target out of reach for every permitted form.
	NonConvergence      = internal.NonConvergence      // Layout pass limit exceeded.
	InternalConsistency = internal.InternalConsistency // Encoder disagrees with the layout.
)

// KindOf returns the kind of an encode error, or zero if err is not one.
func KindOf(err error) Kind {
	return internal.KindOf(err)
}
