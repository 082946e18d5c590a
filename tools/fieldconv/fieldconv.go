package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/field/gat"
	"github.com/OpenKore/openkore-sub004/field/rsw"
	"github.com/OpenKore/openkore-sub004/formats"
	"github.com/OpenKore/openkore-sub004/utils"
)

type fieldInfo struct {
	File      string
	Width     int
	Height    int
	Blocks    map[string]int
	Warning   string      `json:",omitempty"`
	GatStats  *gat.Stats  `json:",omitempty"`
	Companion *rsw.Header `json:",omitempty"`
}

func describe(path string, f field.Field, warning string) (*fieldInfo, error) {
	info := &fieldInfo{
		File:    path,
		Width:   f.Width(),
		Height:  f.Height(),
		Blocks:  make(map[string]int),
		Warning: warning,
	}
	for _, p := range field.RegionOf(f).Points() {
		b, err := f.Block(p.X, p.Y)
		if err != nil {
			return nil, err
		}
		info.Blocks[b.String()]++
	}
	if g, ok := f.(*gat.Field); ok {
		stats := g.Stats()
		info.GatStats = &stats
		if h, err := rsw.LoadHeader(formats.CompanionPath(path)); err == nil {
			info.Companion = h
		}
	}
	return info, nil
}

func run(out io.Writer, inPath, outPath string, dump bool) error {
	f, warning, err := formats.Load(inPath)
	if err != nil {
		return err
	}
	if f == nil {
		return errors.Errorf("No codec for %q", inPath)
	}
	if warning != "" {
		log.Printf("Warning: %s", warning)
	}

	info, err := describe(inPath, f, warning)
	if err != nil {
		return err
	}
	if dump {
		io.WriteString(out, utils.SDump(info))
	} else {
		fmt.Fprintf(out, "%s: %dx%d\n", info.File, info.Width, info.Height)
		for _, b := range field.BlockTypes() {
			if n := info.Blocks[b.String()]; n != 0 {
				fmt.Fprintf(out, "  %-28s %d\n", b, n)
			}
		}
	}

	if outPath != "" {
		if err := formats.SaveAs(f, outPath); err != nil {
			return errors.Wrapf(err, "Failed to save %q", outPath)
		}
		log.Printf("Saved %s", outPath)
	}
	return nil
}

func main() {
	var cfgPath, encoding, inPath, outPath string
	var dump bool
	flag.StringVar(&cfgPath, "config", "", "Path to yaml settings (FIELD_CONFIG env by default)")
	flag.StringVar(&encoding, "encoding", "", "Text encoding of names inside companion files")
	flag.StringVar(&inPath, "in", "", "Field to read (.fld, .fld.gz, .gat)")
	flag.StringVar(&outPath, "out", "", "Convert into this file (.fld or .fld.gz)")
	flag.BoolVar(&dump, "dump", false, "Dump everything known about the field")
	flag.Parse()

	if inPath == "" {
		flag.PrintDefaults()
		return
	}
	if err := config.Load(cfgPath); err != nil {
		log.Fatal(err)
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatalf("%v, known: %v", err, config.ListEncodings())
		}
	}

	if err := run(os.Stdout, inPath, outPath, dump); err != nil {
		log.Fatal(err)
	}
}
