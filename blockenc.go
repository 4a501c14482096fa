// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockenc

import (
	"github.com/tliron/commonlog"
	"github.com/tsavola/blockenc/buffer"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/code"
	"github.com/tsavola/blockenc/internal/emit"
	"github.com/tsavola/blockenc/internal/errorpanic"
	"github.com/tsavola/blockenc/internal/errors"
	"github.com/tsavola/blockenc/internal/layout"
	"github.com/tsavola/blockenc/internal/reloc"
	"github.com/tsavola/blockenc/object/debug"
	"github.com/tsavola/blockenc/x86"
)

// Encoder of single instructions.  The x86 subpackage implements it.
type Encoder = emit.Encoder

// TextBuffer receives the relocated code.  The buffer subpackage implements
// it.
type TextBuffer = code.Buffer

// Reloc locates an absolute target address stored in the relocated code.
type Reloc = reloc.Reloc

// RelocKind is the format of a stored address.
type RelocKind = reloc.Kind

const RelocAbs64 = reloc.Abs64

// Config for a single encoder invocation.  Zero values are replaced with
// effective defaults during encoding.
type Config struct {
	Bitness   int              // 16, 32 or 64.
	Base      uint64           // New address of the first instruction.
	Options   Options          //
	MaxPasses int              // Layout pass limit; defaults to a bound proportional to block size.
	Encoder   Encoder          // Defaults to x86.Encoder.
	Text      TextBuffer       // Optional; the code is appended to it in one piece.
	Logger    commonlog.Logger // Defaults to the "blockenc" logger.
}

// Result of encoding.
type Result struct {
	Text          []byte   // Relocated machine code.
	Offsets       []uint32 // Position of each instruction within Text.
	Relocs        []Reloc  // Stored absolute addresses, in ascending offset order.
	debug.InsnMap          // Address translation between original and new code.
	Passes        int      // Number of layout passes made.
}

// EncodeBlock is a shorthand for Encode with default encoder and buffer.
func EncodeBlock(bitness int, base uint64, insns []ins.Insn, options Options) (*Result, error) {
	return Encode(&Config{
		Bitness: bitness,
		Base:    base,
		Options: options,
	}, insns)
}

// Encode the instructions at the configured base address.  The instructions
// must be in ascending address order without overlap; they are not modified.
func Encode(config *Config, insns []ins.Insn) (result *Result, err error) {
	if config == nil {
		config = new(Config)
	}

	defer func() {
		if e := errorpanic.Handle(recover()); e != nil {
			result = nil
			err = e
		}
	}()

	if config.Options&^allOptions != 0 {
		err = errors.Errorf(errors.InvalidInput, "unknown options: %#x", uint32(config.Options))
		return
	}

	logger := config.Logger
	if logger == nil {
		logger = commonlog.GetLogger("blockenc")
	}

	enc := config.Encoder
	if enc == nil {
		enc = x86.Encoder{}
	}

	policy := layout.Policy{
		FixBranches: !config.Options.Has(DontFixRelativeBranches),
		Substitute:  !config.Options.Has(DontSubstituteAbsolute),
	}

	block, err := layout.NewBlock(config.Bitness, config.Base, insns, policy, logger)
	if err != nil {
		return
	}

	if err = block.Relax(config.MaxPasses); err != nil {
		return
	}

	if err = block.Finalize(); err != nil {
		return
	}

	// The caller's buffer is touched only after every instruction has been
	// encoded, so a failure leaves it as it was.
	buf := code.Buf{
		Buffer: buffer.NewDynamicHint(nil, block.Size()),
	}

	var relocs reloc.Table

	offsets, err := emit.Emit(&buf, enc, block, &relocs)
	if err != nil {
		return
	}

	output := buf.Bytes()
	if config.Text != nil {
		dest := config.Text.Extend(len(output))
		copy(dest, output)
		output = dest
	}

	r := &Result{
		Text:    output,
		Offsets: offsets,
		Relocs:  relocs.Relocs,
		Passes:  block.Passes,
	}

	for i := range block.Nodes {
		n := &block.Nodes[i]
		r.PutInsn(n.Insn.Addr, n.Addr, n.Size)
	}

	logger.Infof("relocated %d instructions from %#x to %#x: %d bytes, %d relocations, %d passes", len(insns), block.OrigBase, block.Base, len(r.Text), len(r.Relocs), r.Passes)

	result = r
	return
}
