// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package form

import (
	"github.com/tsavola/blockenc/ins"
)

const (
	mode16 = iota
	mode32
	mode64

	numModes
)

func modeIndex(bitness int) int {
	switch bitness {
	case 16:
		return mode16
	case 32:
		return mode32
	case 64:
		return mode64
	default:
		return -1
	}
}

// ValidBitness reports if bitness is 16, 32 or 64.
func ValidBitness(bitness int) bool {
	return modeIndex(bitness) >= 0
}

type shape struct {
	size   uint8 // Zero if the form doesn't exist.
	absOff uint8 // Position of the absolute address in an Absolute substitute.
}

// Sizes exclude kept legacy prefixes.
var shapes = [ins.NumFamilies][numModes][NumForms]shape{
	ins.FamilyJmp: {
		mode16: {Short: {size: 2}, Near16: {size: 3}},
		mode32: {Short: {size: 2}, Near32: {size: 5}},
		mode64: {Short: {size: 2}, Near32: {size: 5}, Absolute: {14, 6}},
	},
	ins.FamilyJcc: {
		mode16: {Short: {size: 2}, Near16: {size: 4}},
		mode32: {Short: {size: 2}, Near32: {size: 6}},
		mode64: {Short: {size: 2}, Near32: {size: 6}, Absolute: {16, 8}},
	},
	ins.FamilyCall: {
		mode16: {Near16: {size: 3}},
		mode32: {Near32: {size: 5}},
		mode64: {Near32: {size: 5}, Absolute: {16, 8}},
	},
	ins.FamilyLoop: {
		mode16: {Short: {size: 2}, Near16: {size: 7}},
		mode32: {Short: {size: 2}, Near32: {size: 9}},
		mode64: {Short: {size: 2}, Near32: {size: 9}, Absolute: {18, 10}},
	},
	ins.FamilyXbegin: {
		mode16: {Near16: {size: 4}, Near32: {size: 7}},
		mode32: {Near16: {size: 5}, Near32: {size: 6}},
		mode64: {Near32: {size: 6}},
	},
}

func lookup(fam ins.Family, bitness int, f Form) (s shape) {
	m := modeIndex(bitness)
	if m < 0 || int(fam) >= len(shapes) || int(f) >= NumForms {
		return
	}
	return shapes[fam][m][f]
}

// Available reports if the family can be encoded using the form in the mode.
func Available(fam ins.Family, bitness int, f Form) bool {
	if f == Fixed {
		return fam == ins.FamilyPlain || fam == ins.FamilyRIPRel
	}
	return lookup(fam, bitness, f).size != 0
}

// Size of the instruction when encoded using the form, or 0 if the form is
// not available.
func Size(insn *ins.Insn, bitness int, f Form) int {
	if f == Fixed {
		if Available(insn.Family, bitness, f) {
			return insn.Len
		}
		return 0
	}

	s := lookup(insn.Family, bitness, f)
	if s.size == 0 {
		return 0
	}
	return len(insn.Prefix) + int(s.size)
}

// AbsoluteOffset is the position of the 8-byte absolute target address within
// the Absolute substitute of the instruction.  It is -1 if there is no such
// substitute.
func AbsoluteOffset(insn *ins.Insn, bitness int) int {
	s := lookup(insn.Family, bitness, Absolute)
	if s.size == 0 {
		return -1
	}
	return len(insn.Prefix) + int(s.absOff)
}
