// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tsavola/blockenc"
	"golang.org/x/xerrors"
)

// config can be loaded from a TOML file.  Command line flags override it.
type config struct {
	Bitness   int      `toml:"bitness"`
	OrigBase  uint64   `toml:"orig_base"`
	Base      uint64   `toml:"base"`
	Options   []string `toml:"options"`
	MaxPasses int      `toml:"max_passes"`
	MaxSize   int      `toml:"max_size"` // Output size limit; zero means unlimited.
	Output    string   `toml:"output"`
	Meta      string   `toml:"meta"`
	Dump      bool     `toml:"dump"`
}

func defaultConfig() config {
	return config{
		Bitness: 64,
	}
}

func loadConfig(c *config, filename string) error {
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return xerrors.Errorf("config: %w", err)
	}

	if keys := md.Undecoded(); len(keys) > 0 {
		return xerrors.Errorf("config: %s: unknown key %q", filename, keys[0].String())
	}

	return nil
}

// flagValues holds command line flags before they are merged into a config.
type flagValues struct {
	config
	options string
}

func (v *flagValues) register(fs *flag.FlagSet) {
	fs.IntVar(&v.Bitness, "bits", v.Bitness, "processor mode: 16, 32 or 64")
	fs.Uint64Var(&v.OrigBase, "orig", v.OrigBase, "original address of the input code")
	fs.Uint64Var(&v.Base, "base", v.Base, "new address of the code")
	fs.StringVar(&v.options, "options", v.options, "comma-separated encoder options: "+optionNames())
	fs.IntVar(&v.MaxPasses, "maxpasses", v.MaxPasses, "layout pass limit (0 for default)")
	fs.IntVar(&v.MaxSize, "maxsize", v.MaxSize, "output size limit in bytes (0 for unlimited)")
	fs.StringVar(&v.Output, "o", v.Output, "output file (default stdout)")
	fs.StringVar(&v.Meta, "meta", v.Meta, "write offsets and relocations to a CBOR file")
	fs.BoolVar(&v.Dump, "dump", v.Dump, "disassemble the relocated code to stderr")
}

// merge the flags which were set explicitly.
func (v *flagValues) merge(fs *flag.FlagSet, c *config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bits":
			c.Bitness = v.Bitness
		case "orig":
			c.OrigBase = v.OrigBase
		case "base":
			c.Base = v.Base
		case "options":
			c.Options = strings.Split(v.options, ",")
		case "maxpasses":
			c.MaxPasses = v.MaxPasses
		case "maxsize":
			c.MaxSize = v.MaxSize
		case "o":
			c.Output = v.Output
		case "meta":
			c.Meta = v.Meta
		case "dump":
			c.Dump = v.Dump
		}
	})
}

func optionNames() string {
	return strings.Join([]string{
		blockenc.DontFixRelativeBranches.String(),
		blockenc.DontSubstituteAbsolute.String(),
	}, ", ")
}
