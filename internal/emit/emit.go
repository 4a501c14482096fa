// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit writes a converged layout into a text buffer.
package emit

import (
	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/code"
	"github.com/tsavola/blockenc/internal/errors"
	"github.com/tsavola/blockenc/internal/layout"
	"github.com/tsavola/blockenc/internal/reloc"
)

// Encoder appends the encoding of an instruction in the given placement to
// text.  The result must be exactly as long as the form's size.
type Encoder interface {
	EncodeInsn(text []byte, insn *ins.Insn, p form.Placement) ([]byte, error)
}

// Emit the block at the current end of text.  Instruction offsets are
// relative to the start of the emitted code, and so are the relocations which
// are added to the table.
func Emit(text *code.Buf, enc Encoder, b *layout.Block, relocs *reloc.Table) (offsets []uint32, err error) {
	var scratch [32]byte

	start := text.Addr
	offsets = make([]uint32, len(b.Nodes))

	for i := range b.Nodes {
		n := &b.Nodes[i]
		offset := text.Addr - start

		if addr := b.AddrAt(offset); addr != n.Addr {
			err = errors.Errorf(errors.InternalConsistency, "%v at %#x emitted at %#x instead of %#x", n.Insn.Family, n.Insn.Addr, addr, n.Addr)
			return
		}

		target, _ := n.TargetAddr(b.Nodes)
		p := form.Placement{
			Bitness: b.Bitness,
			Form:    n.Form,
			Addr:    n.Addr,
			Target:  target,
		}

		var encoded []byte

		encoded, err = enc.EncodeInsn(scratch[:0], n.Insn, p)
		if err != nil {
			if errors.KindOf(err) == 0 {
				err = errors.Wrap(errors.InternalConsistency, err, err.Error())
			}
			return
		}

		if len(encoded) != n.Size {
			err = errors.Errorf(errors.InternalConsistency, "%v at %#x: %v form encoded as %d bytes instead of %d", n.Insn.Family, n.Insn.Addr, n.Form, len(encoded), n.Size)
			return
		}

		text.PutBytes(encoded)
		offsets[i] = uint32(offset)

		if n.Form == form.Absolute {
			if err = relocs.Add(n.Insn, b.Bitness, offset, target); err != nil {
				return
			}
		}
	}

	return
}
