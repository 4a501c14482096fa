// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"import.name/pan"
)

// Static is a fixed-capacity buffer, for wrapping a memory-mapped region.  The
// default value is a zero-capacity buffer.
type Static struct {
	buf []byte
}

// NewStatic buffer.  Existing contents of the slice are kept; relocated code
// is appended after them.
func NewStatic(b []byte) *Static {
	return &Static{b}
}

// Len doesn't panic.
func (s *Static) Len() int {
	return len(s.buf)
}

// Bytes doesn't panic.
func (s *Static) Bytes() []byte {
	return s.buf
}

// Extend panics with ErrSizeLimit if n bytes cannot be appended to the buffer.
func (s *Static) Extend(n int) []byte {
	offset := len(s.buf)
	size := offset + n
	if size > cap(s.buf) {
		pan.Panic(ErrSizeLimit)
	}
	s.buf = s.buf[:size]
	return s.buf[offset:]
}
