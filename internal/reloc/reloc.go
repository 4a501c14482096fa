// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reloc substitutes absolute-addressing sequences for branches which
// are out of relative reach, and records where their addresses are stored.
package reloc

import (
	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/errors"
)

// Kind of relocation.
type Kind uint8

const (
	Abs64 = Kind(iota + 1) // Little-endian 8-byte absolute address.
)

func (k Kind) String() string {
	switch k {
	case Abs64:
		return "abs64"
	default:
		return "invalid"
	}
}

// Reloc describes a location in the output text which holds the absolute
// address of a branch target.
type Reloc struct {
	Offset uint32 // Position of the address within the output text.
	Target uint64 // The address stored at Offset.
	Kind   Kind   //
}

// Substitute returns the Absolute form of an instruction which cannot reach
// its target with any relative form.  allowed is false if the caller forbids
// substitution.
func Substitute(insn *ins.Insn, bitness int, allowed bool) (f form.Form, size int, err error) {
	if !allowed {
		err = errors.Errorf(errors.NoFittingEncoding, "%v at %#x: target %#x is out of reach and absolute substitution is disabled", insn.Family, insn.Addr, insn.Target)
		return
	}

	size = form.Size(insn, bitness, form.Absolute)
	if size == 0 {
		err = errors.Errorf(errors.NoFittingEncoding, "%v at %#x: target %#x is out of reach and %d-bit %v has no absolute form", insn.Family, insn.Addr, insn.Target, bitness, insn.Family)
		return
	}

	f = form.Absolute
	return
}

// Table of relocations in emission order.
type Table struct {
	Relocs []Reloc
}

// Add the relocation of an Absolute substitute which was emitted at offset.
func (t *Table) Add(insn *ins.Insn, bitness int, offset int, target uint64) error {
	pos := form.AbsoluteOffset(insn, bitness)
	if pos < 0 {
		return errors.Errorf(errors.InternalConsistency, "%v at %#x has no absolute form", insn.Family, insn.Addr)
	}

	t.Relocs = append(t.Relocs, Reloc{
		Offset: uint32(offset + pos),
		Target: target,
		Kind:   Abs64,
	})
	return nil
}
