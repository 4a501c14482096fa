// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x86

import (
	"encoding/binary"

	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/errors"
)

const (
	opcodeJmpRel8   = 0xeb
	opcodeJmpRel    = 0xe9
	opcodeCallRel   = 0xe8
	opcodeJccRel8   = 0x70 // Condition code in low nibble.
	opcodeJccRel    = 0x80 // After 0x0f; condition code in low nibble.
	opcodeEscape    = 0x0f
	opcodeIndirect  = 0xff
	opcodeDataSize  = 0x66
	opcodeLoopFirst = 0xe0 // LOOPNE
	opcodeLoopLast  = 0xe3 // JCXZ, JECXZ, JRCXZ

	modRMJmpRIP  = 0x25 // jmp qword [rip+disp32]
	modRMCallRIP = 0x15 // call qword [rip+disp32]

	xbeginOpcode = 0xc7
	xbeginModRM  = 0xf8
)

// Encoder produces the byte encodings of relocated instructions.  The zero
// value is ready to use, and it can be shared by concurrent callers.
type Encoder struct{}

// EncodeInsn appends the encoding of insn in the given form at the given
// address to text.  Relative displacements are measured from the end of the
// emitted sequence.
func (Encoder) EncodeInsn(text []byte, insn *ins.Insn, p form.Placement) ([]byte, error) {
	if !form.Available(insn.Family, p.Bitness, p.Form) {
		return nil, errors.Errorf(errors.InvalidInput, "%v at %#x has no %v form in %d-bit mode", insn.Family, insn.Addr, p.Form, p.Bitness)
	}

	if p.Form == form.Fixed {
		return encodeFixed(text, insn, p)
	}

	e := encoding{insn: insn, p: p}
	if insn.Family != ins.FamilyJcc || p.Form != form.Absolute {
		e.bytes(insn.Prefix)
	}

	switch insn.Family {
	case ins.FamilyJmp:
		e.jmp()

	case ins.FamilyJcc:
		if insn.Cond > 0xf {
			return nil, errors.Errorf(errors.InvalidInput, "jcc at %#x has invalid condition code %#x", insn.Addr, insn.Cond)
		}
		e.jcc(insn.Cond)

	case ins.FamilyCall:
		e.call()

	case ins.FamilyLoop:
		if insn.Cond < opcodeLoopFirst || insn.Cond > opcodeLoopLast {
			return nil, errors.Errorf(errors.InvalidInput, "loop at %#x has invalid opcode %#x", insn.Addr, insn.Cond)
		}
		e.loop(insn.Cond)

	case ins.FamilyXbegin:
		e.xbegin()
	}

	if e.err != nil {
		return nil, e.err
	}

	return e.appendTo(text), nil
}

func encodeFixed(text []byte, insn *ins.Insn, p form.Placement) ([]byte, error) {
	offset := len(text)
	text = append(text, insn.Bytes...)

	if insn.HasRIPRel() {
		if insn.DispOff <= 0 || insn.DispOff+4 > len(insn.Bytes) {
			return nil, errors.Errorf(errors.InvalidInput, "RIP-relative operand at %#x has displacement offset %d outside of instruction", insn.Addr, insn.DispOff)
		}

		next := p.Addr + uint64(len(insn.Bytes))
		if !form.FitsRIPRel(next, p.Target) {
			return nil, errors.Errorf(errors.NoFittingEncoding, "RIP-relative operand at %#x: data at %#x is out of reach from %#x", insn.Addr, p.Target, p.Addr)
		}

		disp := form.Disp(p.Bitness, next, p.Target)
		binary.LittleEndian.PutUint32(text[offset+insn.DispOff:], uint32(int32(disp)))
	}

	return text, nil
}

type encoding struct {
	output
	insn *ins.Insn
	p    form.Placement
	err  error
}

// rel appends the displacement of the placement's form.  It must be the last
// part of the sequence.
func (e *encoding) rel() {
	size := e.p.Form.DispSize()
	next := e.p.Addr + uint64(e.len()+size)

	if !form.Fits(e.p.Form, e.p.Bitness, next, e.p.Target) {
		e.err = errors.Errorf(errors.NoFittingEncoding, "%v at %#x: target %#x is out of %v reach from %#x", e.insn.Family, e.insn.Addr, e.p.Target, e.p.Form, e.p.Addr)
	}

	e.output.rel(form.Disp(e.p.Bitness, next, e.p.Target), size)
}

// absolute appends an indirect jump through the address stored right after
// it.
func (e *encoding) absolute() {
	e.byte(opcodeIndirect)
	e.byte(modRMJmpRIP)
	e.int32(0)
	e.uint64(e.p.Target)
}

func (e *encoding) jmp() {
	switch e.p.Form {
	case form.Short:
		e.byte(opcodeJmpRel8)
		e.rel()

	case form.Near16, form.Near32:
		e.byte(opcodeJmpRel)
		e.rel()

	case form.Absolute:
		e.absolute()
	}
}

func (e *encoding) jcc(cond byte) {
	switch e.p.Form {
	case form.Short:
		e.byte(opcodeJccRel8 | cond)
		e.rel()

	case form.Near16, form.Near32:
		e.byte(opcodeEscape)
		e.byte(opcodeJccRel | cond)
		e.rel()

	case form.Absolute:
		// Inverted condition skips the indirect jump.  Branch hints would be
		// inverted too, so the prefixes go with the jump.
		e.byte(opcodeJccRel8 | (cond ^ 1))
		e.int8(int8(len(e.insn.Prefix) + 6 + 8))
		e.bytes(e.insn.Prefix)
		e.absolute()
	}
}

func (e *encoding) call() {
	switch e.p.Form {
	case form.Near16, form.Near32:
		e.byte(opcodeCallRel)
		e.rel()

	case form.Absolute:
		e.byte(opcodeIndirect)
		e.byte(modRMCallRIP)
		e.int32(2)
		e.byte(opcodeJmpRel8)
		e.int8(8)
		e.uint64(e.p.Target)
	}
}

// loop is rel8 only.  The wider forms branch to a jump which reaches the
// target, and fall through to a short jump over it.
func (e *encoding) loop(op byte) {
	if e.p.Form == form.Short {
		e.byte(op)
		e.rel()
		return
	}

	e.byte(op)
	e.int8(2)
	e.byte(opcodeJmpRel8)

	switch e.p.Form {
	case form.Near16, form.Near32:
		e.int8(int8(1 + e.p.Form.DispSize()))
		e.byte(opcodeJmpRel)
		e.rel()

	case form.Absolute:
		e.int8(6 + 8)
		e.absolute()
	}
}

// xbegin has a 16-bit and a 32-bit form in every mode, selected by the
// operand size.
func (e *encoding) xbegin() {
	switch {
	case e.p.Form == form.Near16 && e.p.Bitness != 16:
		e.byte(opcodeDataSize)
	case e.p.Form == form.Near32 && e.p.Bitness == 16:
		e.byte(opcodeDataSize)
	}

	e.byte(xbeginOpcode)
	e.byte(xbeginModRM)
	e.rel()
}
