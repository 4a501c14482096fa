// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debug

import (
	"testing"
)

func TestInsnMap(t *testing.T) {
	var m InsnMap
	m.PutInsn(0x8000, 0x80000000, 2)
	m.PutInsn(0x8002, 0x80000002, 5)
	m.PutInsn(0x8009, 0x80000007, 16)

	for _, x := range []struct {
		orig uint64
		new  uint64
		ok   bool
	}{
		{0x8000, 0x80000000, true},
		{0x8002, 0x80000002, true},
		{0x8009, 0x80000007, true},
		{0x8001, 0, false},
		{0x7fff, 0, false},
		{0x9000, 0, false},
	} {
		if addr, ok := m.FindNew(x.orig); addr != x.new || ok != x.ok {
			t.Errorf("FindNew(%#x) = %#x, %v", x.orig, addr, ok)
		}
	}

	for _, x := range []struct {
		new    uint64
		orig   uint64
		offset int
		ok     bool
	}{
		{0x80000000, 0x8000, 0, true},
		{0x80000001, 0x8000, 1, true},
		{0x80000006, 0x8002, 4, true},
		{0x80000016, 0x8009, 15, true},
		{0x80000017, 0, 0, false},
		{0x7fffffff, 0, 0, false},
	} {
		if addr, offset, ok := m.FindOrig(x.new); addr != x.orig || offset != x.offset || ok != x.ok {
			t.Errorf("FindOrig(%#x) = %#x, %d, %v", x.new, addr, offset, ok)
		}
	}
}
