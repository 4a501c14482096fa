// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x86 implements the instruction decoder and encoder used by the
// block encoder.
package x86

import (
	"encoding/binary"
	"fmt"

	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/errors"
	"golang.org/x/arch/x86/x86asm"
)

var jccConds = map[x86asm.Op]byte{
	x86asm.JO:  0x0,
	x86asm.JNO: 0x1,
	x86asm.JB:  0x2,
	x86asm.JAE: 0x3,
	x86asm.JE:  0x4,
	x86asm.JNE: 0x5,
	x86asm.JBE: 0x6,
	x86asm.JA:  0x7,
	x86asm.JS:  0x8,
	x86asm.JNS: 0x9,
	x86asm.JP:  0xa,
	x86asm.JNP: 0xb,
	x86asm.JL:  0xc,
	x86asm.JGE: 0xd,
	x86asm.JLE: 0xe,
	x86asm.JG:  0xf,
}

var loopOpcodes = map[x86asm.Op]byte{
	x86asm.LOOPNE: 0xe0,
	x86asm.LOOPE:  0xe1,
	x86asm.LOOP:   0xe2,
	x86asm.JCXZ:   0xe3,
	x86asm.JECXZ:  0xe3,
	x86asm.JRCXZ:  0xe3,
}

// Decode a contiguous sequence of instructions located at addr.
func Decode(text []byte, addr uint64, bitness int) (insns []ins.Insn, err error) {
	if !form.ValidBitness(bitness) {
		err = errors.Errorf(errors.InvalidInput, "unsupported bitness: %d", bitness)
		return
	}

	for offset := 0; offset < len(text); {
		var insn ins.Insn

		insn, err = DecodeInsn(text[offset:], addr+uint64(offset), bitness)
		if err != nil {
			return
		}

		insns = append(insns, insn)
		offset += insn.Len
	}

	return
}

// DecodeInsn decodes the instruction at the start of text.
func DecodeInsn(text []byte, addr uint64, bitness int) (insn ins.Insn, err error) {
	inst, err := x86asm.Decode(text, bitness)
	if err != nil {
		err = errors.Wrap(errors.InvalidInput, err, fmt.Sprintf("decoding instruction at %#x: %v", addr, err))
		return
	}

	insn = ins.Insn{
		Addr:  addr,
		Len:   inst.Len,
		Bytes: append([]byte(nil), text[:inst.Len]...),
	}

	mask := ^uint64(0)
	if bitness < 64 {
		mask = 1<<uint(bitness) - 1
	}

	if rel, ok := inst.Args[0].(x86asm.Rel); ok {
		fam := ins.FamilyPlain
		cond := byte(0)

		switch op := inst.Op; op {
		case x86asm.JMP:
			fam = ins.FamilyJmp

		case x86asm.CALL:
			fam = ins.FamilyCall

		case x86asm.XBEGIN:
			fam = ins.FamilyXbegin

		default:
			if c, found := jccConds[op]; found {
				fam = ins.FamilyJcc
				cond = c
			} else if c, found := loopOpcodes[op]; found {
				fam = ins.FamilyLoop
				cond = c
			}
		}

		if fam == ins.FamilyPlain {
			err = errors.Errorf(errors.InvalidInput, "unsupported relative %v at %#x", inst.Op, addr)
			return
		}

		insn.Family = fam
		insn.Cond = cond
		insn.RelSize = relSize(&inst, insn.Bytes, bitness)
		insn.Prefix = keptPrefixes(insn.Bytes, bitness, fam)
		insn.Target = (insn.End() + uint64(int64(rel))) & mask
		return
	}

	for _, arg := range inst.Args {
		if arg == nil {
			break
		}

		if mem, ok := arg.(x86asm.Mem); ok && mem.Base == x86asm.RIP {
			insn.Family = ins.FamilyRIPRel
			insn.DispOff = ripDispOffset(&inst, insn.Bytes, mem.Disp)
			insn.Target = insn.End() + uint64(mem.Disp)
			if insn.DispOff < 0 {
				err = errors.Errorf(errors.InvalidInput, "RIP-relative displacement not found in %v at %#x", inst.Op, addr)
			}
			return
		}
	}

	return
}

func relSize(inst *x86asm.Inst, b []byte, bitness int) int {
	if inst.PCRel != 0 {
		return inst.PCRel
	}

	switch b[prefixLen(b, bitness)] {
	case opcodeJmpRel8, 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79, 0x7a, 0x7b, 0x7c, 0x7d, 0x7e, 0x7f, 0xe0, 0xe1, 0xe2, 0xe3:
		return 1
	}

	if inst.DataSize == 16 {
		return 2
	}
	return 4
}

// ripDispOffset locates the disp32 which follows the ModRM byte of a
// RIP-relative operand.
func ripDispOffset(inst *x86asm.Inst, b []byte, disp int64) int {
	if inst.PCRel == 4 && inst.PCRelOff > 0 {
		return inst.PCRelOff
	}

	for i := 1; i+4 <= len(b); i++ {
		if b[i-1]&0xc7 == 0x05 && int32(binary.LittleEndian.Uint32(b[i:])) == int32(disp) {
			return i
		}
	}
	return -1
}

func isPrefix(x byte, bitness int) bool {
	switch x {
	case 0x26, 0x2e, 0x36, 0x3e, 0x64, 0x65, 0x66, 0x67, 0xf0, 0xf2, 0xf3:
		return true
	}
	return bitness == 64 && x&0xf0 == 0x40
}

func prefixLen(b []byte, bitness int) (n int) {
	for n < len(b)-1 && isPrefix(b[n], bitness) {
		n++
	}
	return
}

// keptPrefixes are re-emitted in front of the new encoding.  Branch hints
// (0x2e, 0x3e) and BND (0xf2) are kept.  The address size prefix is kept for
// the loop family, where it selects the counter register.  Operand size and
// REX prefixes are implied by the new form.
func keptPrefixes(b []byte, bitness int, fam ins.Family) (prefix []byte) {
	for _, x := range b[:prefixLen(b, bitness)] {
		switch x {
		case 0x2e, 0x3e, 0xf2:
			prefix = append(prefix, x)

		case 0x67:
			if fam == ins.FamilyLoop {
				prefix = append(prefix, x)
			}
		}
	}
	return
}
