// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package form

import (
	"math"

	"github.com/tsavola/blockenc/ins"
)

// Disp is the signed distance from next (the address following the
// instruction) to target.  Instruction pointer arithmetic wraps around at the
// mode's address width.
func Disp(bitness int, next, target uint64) int64 {
	d := target - next

	switch bitness {
	case 16:
		return int64(int16(d))

	case 32:
		return int64(int32(d))

	default:
		return int64(d)
	}
}

// Fits reports if the form can express the distance from next to target.
func Fits(f Form, bitness int, next, target uint64) bool {
	d := Disp(bitness, next, target)

	switch f {
	case Short:
		return d >= math.MinInt8 && d <= math.MaxInt8

	case Near16:
		return d >= math.MinInt16 && d <= math.MaxInt16

	case Near32:
		return d >= math.MinInt32 && d <= math.MaxInt32

	default:
		return true
	}
}

// FitsRIPRel reports if a RIP-relative disp32 can reach target from next.
func FitsRIPRel(next, target uint64) bool {
	return Fits(Near32, 64, next, target)
}

// Initial form is the smallest form which exists for the instruction in the
// mode, regardless of distance.  Absolute substitutes are never initial.
func Initial(insn *ins.Insn, bitness int) (f Form, size int) {
	if size = Size(insn, bitness, Fixed); size != 0 {
		return
	}

	for f = Short; f < Absolute; f++ {
		if size = Size(insn, bitness, f); size != 0 {
			return
		}
	}

	f = Fixed
	return
}

// Original form of an instruction, as it was decoded.  ok is false if the
// original encoding isn't expressible as any form in the mode.
func Original(insn *ins.Insn, bitness int) (f Form, ok bool) {
	switch {
	case !insn.HasBranch():
		f = Fixed

	case insn.Family == ins.FamilyLoop:
		f = Short

	default:
		switch insn.RelSize {
		case 1:
			f = Short
		case 2:
			f = Near16
		case 4:
			f = Near32
		default:
			return
		}
	}

	ok = Available(insn.Family, bitness, f)
	return
}

// Resolve the smallest form which can express the distance from the
// instruction at addr to target.  Forms narrower than floor are not
// considered.  Equally sized forms are resolved in favor of the narrower
// displacement.  ok is false if nothing fits.
func Resolve(insn *ins.Insn, bitness int, addr, target uint64, floor Form, allowAbsolute bool) (f Form, size int, ok bool) {
	if floor < Short {
		floor = Short
	}

	for g := floor; g < NumForms; g++ {
		if g == Absolute && !allowAbsolute {
			break
		}

		n := Size(insn, bitness, g)
		if n == 0 {
			continue
		}

		if !Fits(g, bitness, addr+uint64(n), target) {
			continue
		}

		if !ok || n < size {
			f = g
			size = n
			ok = true
		}
	}
	return
}
