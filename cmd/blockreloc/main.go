// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program blockreloc relocates a raw block of x86 code to a new address.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tsavola/blockenc"
	"github.com/tsavola/blockenc/buffer"
	"github.com/tsavola/blockenc/disasm"
	"github.com/tsavola/blockenc/object/debug"
	"github.com/tsavola/blockenc/x86"
	"golang.org/x/sys/unix"
)

// metadata is written next to the relocated code.
type metadata struct {
	Bitness  int                 `cbor:"1,keyasint"`
	OrigBase uint64              `cbor:"2,keyasint"`
	Base     uint64              `cbor:"3,keyasint"`
	Offsets  []uint32            `cbor:"4,keyasint"`
	Relocs   []metaReloc         `cbor:"5,keyasint,omitempty"`
	Insns    []debug.InsnMapping `cbor:"6,keyasint"`
}

type metaReloc struct {
	_      struct{} `cbor:",toarray"`
	Offset uint32
	Target uint64
	Kind   string
}

func newMetadata(c *config, r *blockenc.Result) *metadata {
	m := &metadata{
		Bitness:  c.Bitness,
		OrigBase: c.OrigBase,
		Base:     c.Base,
		Offsets:  r.Offsets,
		Insns:    r.Insns,
	}

	for _, x := range r.Relocs {
		m.Relocs = append(m.Relocs, metaReloc{
			Offset: x.Offset,
			Target: x.Target,
			Kind:   x.Kind.String(),
		})
	}

	return m
}

// mapFile maps the contents of a regular file for reading.  The returned
// function unmaps it.
func mapFile(filename string) (data []byte, unmap func() error, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}

	unmap = func() error { return nil }

	if info.Size() == 0 {
		return
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		unmap = nil
		return
	}

	unmap = func() error { return unix.Munmap(data) }
	return
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] codefile\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	var (
		configFile string
		verbosity  int
		flags      = flagValues{config: defaultConfig()}
	)

	flag.StringVar(&configFile, "config", configFile, "TOML configuration file")
	flag.IntVar(&verbosity, "v", verbosity, "log verbosity")
	flags.register(flag.CommandLine)
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	commonlog.Configure(verbosity, nil)
	logger := commonlog.GetLogger("blockreloc")

	c := defaultConfig()
	if configFile != "" {
		if err := loadConfig(&c, configFile); err != nil {
			log.Fatal(err)
		}
	}
	flags.merge(flag.CommandLine, &c)

	if err := run(&c, flag.Arg(0), logger); err != nil {
		log.Fatal(err)
	}
}

func run(c *config, filename string, logger commonlog.Logger) (err error) {
	options, err := blockenc.ParseOptions(c.Options)
	if err != nil {
		return
	}

	input, unmap, err := mapFile(filename)
	if err != nil {
		return
	}
	defer unmap()

	insns, err := x86.Decode(input, c.OrigBase, c.Bitness)
	if err != nil {
		return
	}
	logger.Debugf("decoded %d instructions from %s", len(insns), filename)

	var text blockenc.TextBuffer
	if c.MaxSize > 0 {
		text = buffer.NewLimited(nil, c.MaxSize)
	}

	result, err := blockenc.Encode(&blockenc.Config{
		Bitness:   c.Bitness,
		Base:      c.Base,
		Options:   options,
		MaxPasses: c.MaxPasses,
		Text:      text,
		Logger:    logger,
	}, insns)
	if err != nil {
		return
	}

	if c.Output == "" || c.Output == "-" {
		_, err = os.Stdout.Write(result.Text)
	} else {
		err = os.WriteFile(c.Output, result.Text, 0666)
	}
	if err != nil {
		return
	}

	if c.Meta != "" {
		var data []byte

		data, err = cbor.Marshal(newMetadata(c, result))
		if err != nil {
			return
		}

		if err = os.WriteFile(c.Meta, data, 0666); err != nil {
			return
		}
	}

	if c.Dump {
		err = disasm.Fprint(os.Stderr, result.Text, c.Base, c.Bitness, result.Relocs)
	}
	return
}
