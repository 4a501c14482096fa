// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"golang.org/x/xerrors"
	"import.name/pan"
)

type extender interface {
	Bytes() []byte
	Extend(n int) []byte
}

func extend(b extender, n int) (err error) {
	defer func() { err = pan.Error(recover()) }()
	b.Extend(n)
	return
}

func TestDynamic(t *testing.T) {
	d := NewDynamicHint(make([]byte, 0, 2), 16)
	for i := 0; i < 10; i++ {
		copy(d.Extend(3), []byte{byte(i), byte(i), byte(i)})
	}
	if d.Len() != 30 {
		t.Fatal(d.Len())
	}
	for i, b := range d.Bytes() {
		if b != byte(i/3) {
			t.Errorf("byte %d: %d", i, b)
		}
	}
}

func TestStaticLimit(t *testing.T) {
	s := NewStatic(make([]byte, 1, 8))
	if err := extend(s, 7); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 8 || cap(s.Bytes()) != 8 {
		t.Fatal(s.Len(), cap(s.Bytes()))
	}
	err := extend(s, 1)
	if !xerrors.Is(err, ErrSizeLimit) {
		t.Fatal(err)
	}
	if s.Len() != 8 {
		t.Error("length changed after failed extension")
	}
}

func TestLimited(t *testing.T) {
	l := NewLimited(nil, 5)
	if err := extend(l, 5); err != nil {
		t.Fatal(err)
	}
	err := extend(l, 1)
	if !xerrors.Is(err, ErrSizeLimit) {
		t.Fatal(err)
	}
	var limit interface{ BufferSizeLimit() string }
	if !xerrors.As(err, &limit) {
		t.Error("size limit error lacks BufferSizeLimit method")
	}
}

func TestZeroLimited(t *testing.T) {
	var l Limited
	if !xerrors.Is(extend(&l, 1), ErrSizeLimit) {
		t.Fail()
	}
}
