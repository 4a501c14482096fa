// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errorpanic

import (
	"io"

	"github.com/tsavola/blockenc/internal/errors"
	"golang.org/x/xerrors"
	"import.name/pan"
)

// Handle a recovered value.  Values which weren't raised via pan are
// re-panicked.
func Handle(x interface{}) (err error) {
	err = pan.Error(x)
	if err == nil {
		return
	}

	switch {
	case xerrors.Is(err, io.EOF), xerrors.Is(err, io.ErrUnexpectedEOF):
		err = errors.Wrap(errors.InternalConsistency, err, "text ended unexpectedly")
	}

	return
}
