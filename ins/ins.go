// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ins describes decoded instructions as consumed by the block encoder.
package ins

import (
	"fmt"
)

// Insn is an immutable decoded instruction.  The decoder resolves relative
// operands to absolute addresses, so that the encoder never needs to look at
// the original displacement.
type Insn struct {
	Addr    uint64 // Original address.
	Len     int    // Length of the original encoding in bytes.
	Family  Family //
	Cond    byte   // Condition code of Jcc, or the opcode byte of a Loop family instruction.
	RelSize int    // Width of the original relative displacement in bytes (1, 2 or 4).
	Prefix  []byte // Legacy prefixes which are kept when a branch is re-encoded.
	Target  uint64 // Branch target or RIP-relative data address.
	DispOff int    // Position of RIP-relative disp32 within Bytes.
	Bytes   []byte // Original encoding.
}

// HasBranch reports if the instruction has a branch-style relative operand.
func (i *Insn) HasBranch() bool {
	return i.Family.Branch()
}

// HasRIPRel reports if the instruction has a RIP-relative memory operand.
func (i *Insn) HasRIPRel() bool {
	return i.Family == FamilyRIPRel
}

// End address of the original instruction.
func (i *Insn) End() uint64 {
	return i.Addr + uint64(i.Len)
}

func (i Insn) String() string {
	switch {
	case i.HasBranch():
		return fmt.Sprintf("%#x\t%v\t%#x", i.Addr, i.Family, i.Target)

	case i.HasRIPRel():
		return fmt.Sprintf("%#x\t%v\t[%#x]", i.Addr, i.Family, i.Target)

	default:
		return fmt.Sprintf("%#x\t%v\t% x", i.Addr, i.Family, i.Bytes)
	}
}
