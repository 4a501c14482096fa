// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tsavola/blockenc"
)

func TestFprintReloc(t *testing.T) {
	text := []byte{
		0xff, 0x25, 0x00, 0x00, 0x00, 0x00, // jmp [rip]
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0xc3, // ret
	}

	relocs := []blockenc.Reloc{
		{Offset: 6, Target: 0x1122334455667788, Kind: blockenc.RelocAbs64},
	}

	var b bytes.Buffer

	if err := Fprint(&b, text, 0x1000, 64, relocs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("listing:\n%s", b.String())
	}
	if !strings.HasPrefix(lines[0], "0x1000:\tjmp") {
		t.Errorf("line 0: %q", lines[0])
	}
	if lines[1] != "0x1006:\t.quad\t0x1122334455667788" {
		t.Errorf("line 1: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "0x100e:\tret") {
		t.Errorf("line 2: %q", lines[2])
	}
}

func TestFprintBitness(t *testing.T) {
	if err := Fprint(new(bytes.Buffer), nil, 0, 8, nil); err == nil {
		t.Error("bitness 8 accepted")
	}
}
