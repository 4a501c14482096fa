// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout assigns new addresses and encoding forms to a block of
// instructions.
//
// Every size-variable instruction starts out in its smallest form.  Each pass
// recomputes the addresses and widens the instructions whose displacements no
// longer fit, until a pass makes no changes.  Sizes never shrink, so the
// number of passes is bounded by the number of forms.
package layout

import (
	"github.com/tliron/commonlog"
	"github.com/tsavola/blockenc/form"
	"github.com/tsavola/blockenc/ins"
	"github.com/tsavola/blockenc/internal/errors"
	"github.com/tsavola/blockenc/internal/reloc"
)

// Policy derived from encode options.
type Policy struct {
	FixBranches bool // Resize branches as needed; otherwise keep the original form.
	Substitute  bool // Use absolute substitutes for out-of-reach targets.
}

type Block struct {
	Nodes    []Node
	Bitness  int
	OrigBase uint64
	Base     uint64
	Policy
	Passes int // Number of passes made by Relax.

	logger commonlog.Logger
}

// DefaultMaxPasses is proportional to the block size.  Each variable node can
// be widened at most three times, and the last pass changes nothing.
func DefaultMaxPasses(numNodes int) int {
	return 3*numNodes + 2
}

// NewBlock validates the instructions and assigns the initial forms.
func NewBlock(bitness int, base uint64, insns []ins.Insn, policy Policy, logger commonlog.Logger) (*Block, error) {
	if !form.ValidBitness(bitness) {
		return nil, errors.Errorf(errors.InvalidInput, "unsupported bitness: %d", bitness)
	}

	limit := addrLimit(bitness)
	if base > limit {
		return nil, errors.Errorf(errors.InvalidInput, "base address %#x is outside of %d-bit address space", base, bitness)
	}

	b := &Block{
		Nodes:   make([]Node, len(insns)),
		Bitness: bitness,
		Base:    base,
		Policy:  policy,
		logger:  logger,
	}

	if len(insns) == 0 {
		return b, nil
	}

	b.OrigBase = insns[0].Addr

	index := make(map[uint64]int, len(insns))

	for i := range insns {
		insn := &insns[i]

		if err := validate(insn, bitness, limit); err != nil {
			return nil, err
		}
		if i > 0 && insn.Addr < insns[i-1].End() {
			return nil, errors.Errorf(errors.InvalidInput, "instruction at %#x overlaps or precedes previous instruction at %#x", insn.Addr, insns[i-1].Addr)
		}

		index[insn.Addr] = i
	}

	for i := range insns {
		insn := &insns[i]
		n := &b.Nodes[i]

		n.Insn = insn
		n.target = -1

		if insn.HasBranch() || insn.HasRIPRel() {
			if j, found := index[insn.Target]; found {
				n.target = j
			}
		}

		if err := b.initForm(n); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func addrLimit(bitness int) uint64 {
	if bitness == 64 {
		return ^uint64(0)
	}
	return 1<<uint(bitness) - 1
}

func validate(insn *ins.Insn, bitness int, limit uint64) error {
	switch {
	case insn.Family >= ins.NumFamilies:
		return errors.Errorf(errors.InvalidInput, "instruction at %#x has unknown family %v", insn.Addr, insn.Family)

	case insn.Len <= 0:
		return errors.Errorf(errors.InvalidInput, "instruction at %#x has invalid length %d", insn.Addr, insn.Len)

	case len(insn.Bytes) != insn.Len:
		return errors.Errorf(errors.InvalidInput, "instruction at %#x has %d bytes but length %d", insn.Addr, len(insn.Bytes), insn.Len)

	case insn.Addr > limit || insn.End()-1 > limit || insn.End() < insn.Addr:
		return errors.Errorf(errors.InvalidInput, "instruction at %#x is outside of %d-bit address space", insn.Addr, bitness)
	}

	if insn.HasBranch() || insn.HasRIPRel() {
		if insn.Target > limit {
			return errors.Errorf(errors.InvalidInput, "%v at %#x: target %#x is outside of %d-bit address space", insn.Family, insn.Addr, insn.Target, bitness)
		}
	}

	if insn.HasRIPRel() {
		if bitness != 64 {
			return errors.Errorf(errors.InvalidInput, "RIP-relative operand at %#x in %d-bit mode", insn.Addr, bitness)
		}
		if insn.DispOff <= 0 || insn.DispOff+4 > insn.Len {
			return errors.Errorf(errors.InvalidInput, "RIP-relative operand at %#x has displacement offset %d outside of instruction", insn.Addr, insn.DispOff)
		}
	}

	// A transaction's abort address doesn't depend on the operand size, so
	// xbegin can change it.  Other branches would change their semantics.
	if insn.HasBranch() && insn.Family != ins.FamilyXbegin {
		if _, ok := form.Original(insn, bitness); !ok {
			return errors.Errorf(errors.InvalidInput, "%v at %#x with rel%d is not encodable in %d-bit mode", insn.Family, insn.Addr, insn.RelSize*8, bitness)
		}
	}

	return nil
}

func (b *Block) initForm(n *Node) error {
	switch {
	case !n.Insn.HasBranch():
		n.Commit(form.Fixed, n.Insn.Len)
		n.Done = true

	case b.FixBranches:
		f, size := form.Initial(n.Insn, b.Bitness)
		n.Commit(f, size)

	default:
		f, ok := form.Original(n.Insn, b.Bitness)
		if !ok {
			return errors.Errorf(errors.InvalidInput, "%v at %#x with rel%d is not encodable in %d-bit mode without resizing", n.Insn.Family, n.Insn.Addr, n.Insn.RelSize*8, b.Bitness)
		}
		n.Commit(f, form.Size(n.Insn, b.Bitness, f))
	}

	if n.Size == 0 {
		return errors.Errorf(errors.InvalidInput, "%v at %#x has no form in %d-bit mode", n.Insn.Family, n.Insn.Addr, b.Bitness)
	}
	return nil
}

// Relax the layout until it reaches a fixed point.  Addresses are assigned
// during each pass, so backward targets see the current layout and forward
// targets the previous one.  The pass which makes no changes sees a fully
// consistent layout.
func (b *Block) Relax(maxPasses int) error {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses(len(b.Nodes))
	}

	b.assign()

	for pass := 1; ; pass++ {
		if pass > maxPasses {
			return errors.Errorf(errors.NonConvergence, "layout of %d instructions did not converge in %d passes", len(b.Nodes), maxPasses)
		}

		changed, err := b.pass(pass)
		if err != nil {
			return err
		}

		if changed == 0 {
			b.Passes = pass
			if b.logger != nil {
				b.logger.Debugf("layout converged after %d passes", pass)
			}
			return nil
		}
	}
}

func (b *Block) assign() {
	addr := b.Base
	for i := range b.Nodes {
		b.Nodes[i].Addr = addr
		addr = b.Nodes[i].End() & addrLimit(b.Bitness)
	}
}

func (b *Block) pass(pass int) (changed int, err error) {
	addr := b.Base

	for i := range b.Nodes {
		n := &b.Nodes[i]
		n.Addr = addr

		if !n.Done {
			target, _ := n.TargetAddr(b.Nodes)

			if !form.Fits(n.Form, b.Bitness, n.End(), target) {
				old := n.Form
				if err = b.widen(n, target); err != nil {
					return
				}
				changed++

				if b.logger != nil {
					b.logger.Debugf("pass %d: %v at %#x -> %#x: %v -> %v (%d bytes)", pass, n.Insn.Family, n.Insn.Addr, n.Addr, old, n.Form, n.Size)
				}
			}
		}

		addr = n.End() & addrLimit(b.Bitness)
	}

	return
}

func (b *Block) widen(n *Node, target uint64) error {
	if !b.FixBranches {
		return errors.Errorf(errors.NoFittingEncoding, "%v at %#x: target %#x doesn't fit in original %v form", n.Insn.Family, n.Insn.Addr, target, n.Form)
	}

	if f, size, ok := form.Resolve(n.Insn, b.Bitness, n.Addr, target, n.Form+1, false); ok {
		n.Commit(f, size)
		return nil
	}

	f, size, err := reloc.Substitute(n.Insn, b.Bitness, b.Substitute)
	if err != nil {
		return err
	}

	n.Commit(f, size)
	n.Done = true
	return nil
}

// Finalize checks the RIP-relative displacements of the converged layout.
func (b *Block) Finalize() error {
	for i := range b.Nodes {
		n := &b.Nodes[i]

		if n.Insn.HasRIPRel() {
			target, _ := n.TargetAddr(b.Nodes)
			if !form.FitsRIPRel(n.End(), target) {
				return errors.Errorf(errors.NoFittingEncoding, "RIP-relative operand at %#x -> %#x: data at %#x is out of reach", n.Insn.Addr, n.Addr, target)
			}
		}
	}

	return nil
}

// AddrAt returns the new address at an offset from the base, wrapped around
// at the mode's address width.
func (b *Block) AddrAt(offset int) uint64 {
	return (b.Base + uint64(offset)) & addrLimit(b.Bitness)
}

// Size of the block in the new layout.
func (b *Block) Size() (n int) {
	for i := range b.Nodes {
		n += b.Nodes[i].Size
	}
	return
}

// End address of the block in the new layout.
func (b *Block) End() uint64 {
	if len(b.Nodes) == 0 {
		return b.Base
	}
	return b.Nodes[len(b.Nodes)-1].End()
}
