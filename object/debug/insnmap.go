// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debug

import (
	"sort"
)

// Instruction mapping from relocated machine code to the original code.
type InsnMapping struct {
	OrigAddr uint64 // Original instruction address.
	NewAddr  uint64 // Address of the relocated encoding.
	NewLen   int    // Length of the relocated encoding, including substitutes.
}

// InsnMap translates addresses between the original and the relocated block,
// e.g. for moving breakpoints or resolving fault addresses.  Mappings are in
// ascending address order; a block which wraps around the top of the address
// space is not supported.
type InsnMap struct {
	Insns []InsnMapping
}

func (m *InsnMap) PutInsn(origAddr, newAddr uint64, newLen int) {
	m.Insns = append(m.Insns, InsnMapping{origAddr, newAddr, newLen})
}

// FindNew address of the instruction which was originally at origAddr.
func (m *InsnMap) FindNew(origAddr uint64) (newAddr uint64, ok bool) {
	i := sort.Search(len(m.Insns), func(i int) bool {
		return m.Insns[i].OrigAddr >= origAddr
	})

	if i < len(m.Insns) && m.Insns[i].OrigAddr == origAddr {
		newAddr = m.Insns[i].NewAddr
		ok = true
	}
	return
}

// FindOrig address of the instruction whose relocated encoding contains
// newAddr.  offset is the position of newAddr within the encoding.
func (m *InsnMap) FindOrig(newAddr uint64) (origAddr uint64, offset int, ok bool) {
	i := sort.Search(len(m.Insns), func(i int) bool {
		return m.Insns[i].NewAddr > newAddr
	}) - 1

	if i >= 0 {
		insn := m.Insns[i]
		if d := newAddr - insn.NewAddr; d < uint64(insn.NewLen) {
			origAddr = insn.OrigAddr
			offset = int(d)
			ok = true
		}
	}
	return
}
