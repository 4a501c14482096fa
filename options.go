// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockenc

import (
	"strings"

	"github.com/tsavola/blockenc/internal/errors"
)

// Options is a set of flags which restrict the encoder.
type Options uint32

const (
	OptionNone = Options(0)

	// DontFixRelativeBranches keeps the original displacement width of every
	// branch.  Encoding fails if a target moves out of its reach.
	DontFixRelativeBranches = Options(1 << 0)

	// DontSubstituteAbsolute fails the encoding instead of replacing an
	// out-of-reach branch with an absolute-addressing sequence.
	DontSubstituteAbsolute = Options(1 << 1)

	allOptions = DontFixRelativeBranches | DontSubstituteAbsolute
)

var optionNames = []struct {
	option Options
	name   string
}{
	{DontFixRelativeBranches, "dont-fix-relative-branches"},
	{DontSubstituteAbsolute, "dont-substitute-absolute"},
}

// Has reports if all flags of x are set.
func (o Options) Has(x Options) bool {
	return o&x == x
}

func (o Options) String() string {
	if o == OptionNone {
		return "none"
	}

	var tokens []string

	for _, x := range optionNames {
		if o&x.option != 0 {
			tokens = append(tokens, x.name)
		}
	}
	if o&^allOptions != 0 {
		tokens = append(tokens, "unknown")
	}

	return strings.Join(tokens, "|")
}

// ParseOptions from names as formatted by Options.String.  The name "none"
// is accepted and ignored.
func ParseOptions(names []string) (o Options, err error) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || name == "none" {
			continue
		}

		found := false
		for _, x := range optionNames {
			if x.name == name {
				o |= x.option
				found = true
				break
			}
		}
		if !found {
			err = errors.Errorf(errors.InvalidInput, "unknown option: %q", name)
			return
		}
	}

	return
}
