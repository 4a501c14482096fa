// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm prints relocated code using the Capstone disassembler.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/bnagy/gapstone"
	"github.com/tsavola/blockenc"
	"golang.org/x/xerrors"
)

var modes = map[int]int{
	16: gapstone.CS_MODE_16,
	32: gapstone.CS_MODE_32,
	64: gapstone.CS_MODE_64,
}

// Fprint a listing of text located at addr.  The absolute addresses stored
// by relocations are printed as data.
func Fprint(w io.Writer, text []byte, addr uint64, bitness int, relocs []blockenc.Reloc) (err error) {
	mode, found := modes[bitness]
	if !found {
		err = xerrors.Errorf("unsupported bitness: %d", bitness)
		return
	}

	engine, err := gapstone.New(gapstone.CS_ARCH_X86, mode)
	if err != nil {
		return
	}
	defer engine.Close()

	err = engine.SetOption(gapstone.CS_OPT_SYNTAX, gapstone.CS_OPT_SYNTAX_INTEL)
	if err != nil {
		return
	}

	relocs = append([]blockenc.Reloc(nil), relocs...)
	sort.Slice(relocs, func(i, j int) bool { return relocs[i].Offset < relocs[j].Offset })

	var offset uint32

	for _, r := range relocs {
		if err = printCode(w, &engine, text[offset:r.Offset], addr+uint64(offset)); err != nil {
			return
		}

		offset = r.Offset + 8
		fmt.Fprintf(w, "%#x:\t.quad\t%#x\n", addr+uint64(r.Offset), r.Target)
	}

	err = printCode(w, &engine, text[offset:], addr+uint64(offset))
	return
}

func printCode(w io.Writer, engine *gapstone.Engine, code []byte, addr uint64) (err error) {
	if len(code) == 0 {
		return
	}

	insns, err := engine.Disasm(code, addr, 0)
	if err != nil {
		return
	}

	for _, insn := range insns {
		fmt.Fprintf(w, "%#x:\t%s\t%s\n", insn.Address, insn.Mnemonic, insn.OpStr)
	}
	return
}
