// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
)

// Node holds the resolution state of one instruction.
type Node struct {
	Insn *ins.Insn
	Addr uint64    // Tentative new address.
	Size int       // Tentative size; never decreases.
	Form form.Form //
	Done bool      // The size can't change anymore.

	target int // Index of the target node, or -1 if the target is external.
}

func (n *Node) TentativeSize() int {
	return n.Size
}

func (n *Node) Commit(f form.Form, size int) {
	n.Form = f
	n.Size = size
}

// End is the tentative address of the next instruction.
func (n *Node) End() uint64 {
	return n.Addr + uint64(n.Size)
}

// TargetAddr resolves the branch target or RIP-relative data address against
// the current tentative layout.  A target which was the original address of an
// instruction in the block follows that instruction.  ok is false if the
// instruction has no address-dependent operand.
func (n *Node) TargetAddr(nodes []Node) (addr uint64, ok bool) {
	if !n.Insn.HasBranch() && !n.Insn.HasRIPRel() {
		return
	}

	if n.target >= 0 {
		addr = nodes[n.target].Addr
	} else {
		addr = n.Insn.Target
	}
	ok = true
	return
}
