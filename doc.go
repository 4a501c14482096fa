// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package blockenc relocates a block of decoded x86 instructions to a new
address.

Branches are re-encoded using the smallest displacement form which reaches
the target from the new location, RIP-relative memory operands are adjusted,
and a branch which cannot reach its target with any relative form is replaced
with a sequence which loads the target from an absolute address stored in the
output.  The positions of the stored addresses are reported as relocations.

The x86 subpackage provides the decoder and encoder used by default.

# Errors

Error kinds are accessible via the errors subpackage.  Every error returned
by Encode is of one of the kinds, except for the buffer.ErrSizeLimit error,
which indicates that the output didn't fit in a caller-supplied buffer.  No
output is produced on error.
*/
package blockenc
