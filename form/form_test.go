// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package form

import (
	"testing"

	"github.com/tsavola/blockenc/ins"
)

func TestDisp(t *testing.T) {
	for _, x := range []struct {
		bitness      int
		next, target uint64
		disp         int64
	}{
		{16, 0x0010, 0x0000, -0x10},
		{16, 0xfff0, 0x0010, 0x20},
		{16, 0x0010, 0xfff0, -0x20},
		{32, 0x80000007, 0x8000000e, 7},
		{32, 0xfffffffe, 0x00000002, 4},
		{32, 0x00000002, 0xfffffffe, -4},
		{64, 0x1000, 0x1000, 0},
		{64, 0x1000, 0x0fff, -1},
		{64, 0x100000000, 0x0, -0x100000000},
		{64, 0x0, 0x7fffffff, 0x7fffffff},
	} {
		if d := Disp(x.bitness, x.next, x.target); d != x.disp {
			t.Errorf("Disp(%d, %#x, %#x) = %d", x.bitness, x.next, x.target, d)
		}
	}
}

func TestFitsBoundaries(t *testing.T) {
	const next = 0x40000000

	for _, x := range []struct {
		f       Form
		bitness int
		disp    int64
		fits    bool
	}{
		{Short, 64, 127, true},
		{Short, 64, 128, false},
		{Short, 64, -128, true},
		{Short, 64, -129, false},
		{Short, 32, 127, true},
		{Short, 32, 128, false},
		{Near16, 32, 32767, true},
		{Near16, 32, 32768, false},
		{Near16, 32, -32768, true},
		{Near16, 32, -32769, false},
		{Near32, 64, 0x7fffffff, true},
		{Near32, 64, 0x80000000, false},
		{Near32, 64, -0x80000000, true},
		{Near32, 64, -0x80000001, false},
		{Near32, 32, 0x7fffffff, true},
		{Absolute, 64, 0x7fffffffffff, true},
	} {
		target := uint64(next + x.disp)
		if fits := Fits(x.f, x.bitness, next, target); fits != x.fits {
			t.Errorf("Fits(%v, %d, disp %d) = %v", x.f, x.bitness, x.disp, fits)
		}
	}
}

func TestFitsWrap(t *testing.T) {
	// The widest native displacement always reaches in 16-bit and 32-bit modes.
	if !Fits(Near16, 16, 0x0003, 0xfffe) {
		t.Error("16-bit")
	}
	if !Fits(Near32, 32, 0x00000005, 0xfffffff0) {
		t.Error("32-bit")
	}
	if Fits(Near32, 64, 0x00000005, 0xfffffffff0) {
		t.Error("64-bit")
	}
}

func TestSize(t *testing.T) {
	jcc := &ins.Insn{Family: ins.FamilyJcc, Len: 2, RelSize: 1}
	hinted := &ins.Insn{Family: ins.FamilyJcc, Len: 3, RelSize: 1, Prefix: []byte{0x3e}}
	plain := &ins.Insn{Family: ins.FamilyPlain, Len: 3}
	xbegin := &ins.Insn{Family: ins.FamilyXbegin, Len: 6, RelSize: 4}

	for _, x := range []struct {
		insn    *ins.Insn
		bitness int
		f       Form
		size    int
	}{
		{jcc, 64, Short, 2},
		{jcc, 64, Near16, 0},
		{jcc, 64, Near32, 6},
		{jcc, 64, Absolute, 16},
		{jcc, 32, Absolute, 0},
		{jcc, 16, Near16, 4},
		{jcc, 64, Fixed, 0},
		{hinted, 64, Short, 3},
		{hinted, 64, Near32, 7},
		{plain, 64, Fixed, 3},
		{plain, 64, Short, 0},
		{xbegin, 16, Near16, 4},
		{xbegin, 16, Near32, 7},
		{xbegin, 32, Near16, 5},
		{xbegin, 32, Near32, 6},
		{xbegin, 64, Near16, 0},
		{xbegin, 64, Absolute, 0},
	} {
		if size := Size(x.insn, x.bitness, x.f); size != x.size {
			t.Errorf("Size(%v, %d, %v) = %d", x.insn.Family, x.bitness, x.f, size)
		}
	}
}

func TestAbsoluteOffset(t *testing.T) {
	for _, x := range []struct {
		fam    ins.Family
		prefix []byte
		off    int
	}{
		{ins.FamilyJmp, nil, 6},
		{ins.FamilyJcc, nil, 8},
		{ins.FamilyCall, nil, 8},
		{ins.FamilyLoop, nil, 10},
		{ins.FamilyLoop, []byte{0x67}, 11},
		{ins.FamilyXbegin, nil, -1},
		{ins.FamilyRIPRel, nil, -1},
	} {
		insn := &ins.Insn{Family: x.fam, Prefix: x.prefix}
		if off := AbsoluteOffset(insn, 64); off != x.off {
			t.Errorf("AbsoluteOffset(%v) = %d", x.fam, off)
		}
	}
}

func TestInitial(t *testing.T) {
	for _, x := range []struct {
		fam     ins.Family
		bitness int
		f       Form
		size    int
	}{
		{ins.FamilyPlain, 64, Fixed, 5},
		{ins.FamilyRIPRel, 64, Fixed, 5},
		{ins.FamilyJmp, 64, Short, 2},
		{ins.FamilyCall, 64, Near32, 5},
		{ins.FamilyCall, 16, Near16, 3},
		{ins.FamilyXbegin, 32, Near16, 5},
		{ins.FamilyXbegin, 64, Near32, 6},
	} {
		insn := &ins.Insn{Family: x.fam, Len: 5}
		if f, size := Initial(insn, x.bitness); f != x.f || size != x.size {
			t.Errorf("Initial(%v, %d) = %v, %d", x.fam, x.bitness, f, size)
		}
	}
}

func TestOriginal(t *testing.T) {
	for _, x := range []struct {
		fam     ins.Family
		relSize int
		bitness int
		f       Form
		ok      bool
	}{
		{ins.FamilyPlain, 0, 64, Fixed, true},
		{ins.FamilyJmp, 1, 64, Short, true},
		{ins.FamilyJmp, 4, 64, Near32, true},
		{ins.FamilyJmp, 2, 32, Near16, false},
		{ins.FamilyLoop, 1, 32, Short, true},
		{ins.FamilyXbegin, 2, 32, Near16, true},
		{ins.FamilyXbegin, 2, 64, Near16, false},
		{ins.FamilyCall, 0, 64, Fixed, false},
	} {
		insn := &ins.Insn{Family: x.fam, RelSize: x.relSize}
		f, ok := Original(insn, x.bitness)
		if ok != x.ok || (ok && f != x.f) {
			t.Errorf("Original(%v, rel%d, %d) = %v, %v", x.fam, x.relSize*8, x.bitness, f, ok)
		}
	}
}

func TestResolveMinimal(t *testing.T) {
	jmp := &ins.Insn{Family: ins.FamilyJmp, Len: 2, RelSize: 1}

	for _, x := range []struct {
		disp  int64 // From the end of the short form.
		floor Form
		abs   bool
		f     Form
		size  int
		ok    bool
	}{
		{0, Fixed, true, Short, 2, true},
		{127, Fixed, true, Short, 2, true},
		{128, Fixed, true, Near32, 5, true},
		{-128, Fixed, true, Short, 2, true},
		{-129, Fixed, true, Near32, 5, true},
		{0, Near32, true, Near32, 5, true},
		{0x80000010, Fixed, true, Absolute, 14, true},
		{0x80000010, Fixed, false, Fixed, 0, false},
	} {
		const addr = 0x10000000
		target := uint64(addr + 2 + x.disp)

		f, size, ok := Resolve(jmp, 64, addr, target, x.floor, x.abs)
		if ok != x.ok || f != x.f || size != x.size {
			t.Errorf("Resolve(disp %d, floor %v, abs %v) = %v, %d, %v", x.disp, x.floor, x.abs, f, size, ok)
		}
	}
}

func TestResolveXbegin32(t *testing.T) {
	xbegin := &ins.Insn{Family: ins.FamilyXbegin, Len: 6, RelSize: 4}

	// Near16 form is 5 bytes, so the disp limit is measured from addr+5.
	if f, _, _ := Resolve(xbegin, 32, 0x1000, 0x1005+32767, Fixed, true); f != Near16 {
		t.Errorf("at limit: %v", f)
	}
	if f, _, _ := Resolve(xbegin, 32, 0x1000, 0x1005+32768, Fixed, true); f != Near32 {
		t.Errorf("beyond limit: %v", f)
	}
	if f, _, _ := Resolve(xbegin, 32, 0x80010002, 0x7fffffff, Fixed, true); f != Near32 {
		t.Errorf("backward: %v", f)
	}
}
