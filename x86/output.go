// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x86

import (
	"encoding/binary"
)

// output accumulates one instruction or substitute sequence.  The longest
// sequence is 18 bytes, plus at most 14 kept prefix bytes.
type output struct {
	buf    [32]byte
	offset uint8
}

func (o *output) len() int { return int(o.offset) }

func (o *output) appendTo(text []byte) []byte { return append(text, o.buf[:o.offset]...) }

func (o *output) byte(b byte) {
	o.buf[o.offset] = b
	o.offset++
}

func (o *output) bytes(b []byte) {
	o.offset += uint8(copy(o.buf[o.offset:], b))
}

func (o *output) int8(val int8) {
	o.buf[o.offset] = uint8(val)
	o.offset++
}

func (o *output) int16(val int16) {
	binary.LittleEndian.PutUint16(o.buf[o.offset:], uint16(val))
	o.offset += 2
}

func (o *output) int32(val int32) {
	binary.LittleEndian.PutUint32(o.buf[o.offset:], uint32(val))
	o.offset += 4
}

func (o *output) uint64(val uint64) {
	binary.LittleEndian.PutUint64(o.buf[o.offset:], val)
	o.offset += 8
}

// rel appends a displacement of the given width.
func (o *output) rel(val int64, size int) {
	switch size {
	case 1:
		o.int8(int8(val))
	case 2:
		o.int16(int16(val))
	default:
		o.int32(int32(val))
	}
}
