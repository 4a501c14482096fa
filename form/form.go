// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package form resolves the encoding forms of size-variable instructions.
//
// The resolver is stateless: it maps an instruction family, the processor
// mode and the distance to a target to the smallest encoding form which can
// express it.
package form

import (
	"strconv"
)

// Form of an encoded instruction.  The size-variable forms are ordered from
// narrowest to widest.
type Form uint8

const (
	Fixed    = Form(iota) // Size doesn't depend on the layout.
	Short                 // rel8
	Near16                // rel16
	Near32                // rel32
	Absolute              // Indirect branch through an absolute address.

	NumForms = iota
)

func (f Form) String() string {
	switch f {
	case Fixed:
		return "fixed"
	case Short:
		return "short"
	case Near16:
		return "near16"
	case Near32:
		return "near32"
	case Absolute:
		return "absolute"
	default:
		return strconv.Itoa(int(f))
	}
}

// DispSize is the width of the relative displacement in bytes.
func (f Form) DispSize() int {
	switch f {
	case Short:
		return 1
	case Near16:
		return 2
	case Near32:
		return 4
	default:
		return 0
	}
}

// Placement of an instruction in the final layout.
type Placement struct {
	Bitness int    // 16, 32 or 64.
	Form    Form   //
	Addr    uint64 // New address of the instruction.
	Target  uint64 // Resolved branch target or data address.
}
