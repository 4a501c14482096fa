// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ins

import (
	"strconv"
)

// Family of an instruction determines which encoding forms it can take when
// it is moved.
type Family uint8

const (
	FamilyPlain  = Family(iota) // No address-dependent operand; copied as is.
	FamilyJmp                   // JMP rel8/rel16/rel32
	FamilyJcc                   // Jcc rel8/rel16/rel32
	FamilyCall                  // CALL rel16/rel32
	FamilyLoop                  // LOOP, LOOPE, LOOPNE, JCXZ, JECXZ, JRCXZ (rel8 only)
	FamilyXbegin                // XBEGIN rel16/rel32
	FamilyRIPRel                // RIP-relative memory operand

	NumFamilies = iota
)

func (f Family) String() string {
	switch f {
	case FamilyPlain:
		return "plain"
	case FamilyJmp:
		return "jmp"
	case FamilyJcc:
		return "jcc"
	case FamilyCall:
		return "call"
	case FamilyLoop:
		return "loop"
	case FamilyXbegin:
		return "xbegin"
	case FamilyRIPRel:
		return "riprel"
	default:
		return strconv.Itoa(int(f))
	}
}

// Branch reports if the family has a relative branch operand.
func (f Family) Branch() bool {
	return f >= FamilyJmp && f <= FamilyXbegin
}

var Families = map[string]Family{
	"plain":  FamilyPlain,
	"jmp":    FamilyJmp,
	"jcc":    FamilyJcc,
	"call":   FamilyCall,
	"loop":   FamilyLoop,
	"xbegin": FamilyXbegin,
	"riprel": FamilyRIPRel,
}
