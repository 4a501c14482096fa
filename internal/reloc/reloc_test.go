// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reloc

import (
	"testing"

	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/errors"
	"golang.org/x/xerrors"
)

func TestSubstitute(t *testing.T) {
	for _, x := range []struct {
		fam     ins.Family
		prefix  []byte
		bitness int
		allowed bool
		size    int
		kind    errors.Kind
	}{
		{ins.FamilyJmp, nil, 64, true, 14, 0},
		{ins.FamilyJcc, nil, 64, true, 16, 0},
		{ins.FamilyCall, nil, 64, true, 16, 0},
		{ins.FamilyLoop, nil, 64, true, 18, 0},
		{ins.FamilyJmp, []byte{0x3e}, 64, true, 15, 0},
		{ins.FamilyJmp, nil, 64, false, 0, errors.NoFittingEncoding},
		{ins.FamilyXbegin, nil, 64, true, 0, errors.NoFittingEncoding},
		{ins.FamilyJmp, nil, 32, true, 0, errors.NoFittingEncoding},
		{ins.FamilyRIPRel, nil, 64, true, 0, errors.NoFittingEncoding},
	} {
		insn := &ins.Insn{Family: x.fam, Prefix: x.prefix, Target: 0x123456789}
		f, size, err := Substitute(insn, x.bitness, x.allowed)
		if x.kind != 0 {
			if !xerrors.Is(err, x.kind) {
				t.Errorf("%v %d %v: %v", x.fam, x.bitness, x.allowed, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: %v", x.fam, err)
			continue
		}
		if f != form.Absolute || size != x.size {
			t.Errorf("%v: %v %d", x.fam, f, size)
		}
	}
}

func TestTable(t *testing.T) {
	var table Table

	jmp := &ins.Insn{Family: ins.FamilyJmp}
	jcc := &ins.Insn{Family: ins.FamilyJcc, Prefix: []byte{0x2e}}
	loop := &ins.Insn{Family: ins.FamilyLoop}

	for _, x := range []struct {
		insn   *ins.Insn
		offset int
		target uint64
	}{
		{jmp, 0, 0x1000000000},
		{jcc, 14, 0x2000000000},
		{loop, 31, 0x3000000000},
	} {
		if err := table.Add(x.insn, 64, x.offset, x.target); err != nil {
			t.Fatal(err)
		}
	}

	expect := []Reloc{
		{6, 0x1000000000, Abs64},
		{14 + 1 + 8, 0x2000000000, Abs64},
		{31 + 10, 0x3000000000, Abs64},
	}
	if len(table.Relocs) != len(expect) {
		t.Fatal(table.Relocs)
	}
	for i, r := range table.Relocs {
		if r != expect[i] {
			t.Errorf("reloc %d: %+v", i, r)
		}
	}

	xbegin := &ins.Insn{Family: ins.FamilyXbegin}
	if err := table.Add(xbegin, 64, 0, 0); errors.KindOf(err) != errors.InternalConsistency {
		t.Error(err)
	}
}
