// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code

// Buffer receives relocated machine code.  Extend may panic (via pan) if the
// buffer cannot grow.
type Buffer interface {
	Bytes() []byte
	Extend(n int) []byte
}

// Buf is an optimized Buffer.  The cached length (Addr) avoids interface
// function calls.
type Buf struct {
	Buffer
	Addr int
}

func (buf *Buf) Extend(n int) (b []byte) {
	b = buf.Buffer.Extend(n)
	buf.Addr += n
	return
}

// PutBytes appends b.
func (buf *Buf) PutBytes(b []byte) {
	copy(buf.Extend(len(b)), b)
}
