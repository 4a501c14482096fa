// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer implements blockenc.TextBuffer.
package buffer

type sizeError string

func (s sizeError) Error() string           { return string(s) }
func (s sizeError) BufferSizeLimit() string { return string(s) }

// ErrSizeLimit implements interface{ BufferSizeLimit() string }.
var ErrSizeLimit error = sizeError("buffer size limit exceeded")
