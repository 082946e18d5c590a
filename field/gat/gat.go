// Package gat reads ground altitude tables: per cell corner depths plus a
// type byte. The format is read only; use fld to persist edits.
package gat

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/utils"
)

const (
	HeaderSize = 14
	CellSize   = 20
)

var Magic = [6]byte{'G', 'R', 'A', 'T', 0x01, 0x02}

// Cell is one on-disk record. Depths grow downwards.
type Cell struct {
	UpperLeft  float32
	UpperRight float32
	LowerLeft  float32
	LowerRight float32
	Type       uint8
}

func (c *Cell) AverageDepth() float32 {
	return (c.UpperLeft + c.UpperRight + c.LowerLeft + c.LowerRight) / 4
}

// aboveWater is also the dense format table.
var aboveWater = [...]field.BlockType{
	0: field.Walkable,
	1: field.NonWalkable,
	2: field.WalkableWater,
	3: field.NonWalkableNonSnipableWater,
	4: field.NonWalkableSnipableWater,
	5: field.SnipableCliff,
	6: field.NonSnipableCliff,
}

var belowWater = [...]field.BlockType{
	0: field.WalkableWater,
	1: field.NonWalkableNonSnipableWater,
	2: field.NonWalkableSnipableWater,
	3: field.WalkableWater,
	4: field.NonWalkableSnipableWater,
	5: field.SnipableCliff,
	6: field.NonWalkableSnipableWater,
}

// Classify maps a cell to a block type. A nil waterLevel always selects
// the above water table.
func Classify(c *Cell, waterLevel *float32) field.BlockType {
	table := aboveWater[:]
	if waterLevel != nil && c.AverageDepth() > *waterLevel {
		table = belowWater[:]
	}
	if int(c.Type) < len(table) {
		return table[c.Type]
	}
	return field.Unknown
}

type Stats struct {
	Cells      int
	Underwater int
	Unknown    int
}

type Field struct {
	field.Notifier
	grid  field.Grid[field.BlockType]
	stats Stats
}

var _ field.Field = (*Field)(nil)

// Read decodes a table and classifies every cell right away; depths are
// not kept.
func Read(r io.Reader, waterLevel *float32) (*Field, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, readError(err, "header")
	}
	if !bytes.Equal(hdr[:6], Magic[:]) {
		return nil, errors.Wrapf(field.ErrInvalidSignature, "[gat] Magic %q", utils.DumpToOneLineString(hdr[:6]))
	}
	w := binary.LittleEndian.Uint32(hdr[6:10])
	h := binary.LittleEndian.Uint32(hdr[10:14])
	count := uint64(w) * uint64(h)

	// grown per record, the header size is not trusted
	cells := make([]field.BlockType, 0, min(count, 1<<20))
	var stats Stats

	var rec [CellSize]byte
	var c Cell
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, readError(err, "cells")
		}
		c.UpperLeft = math.Float32frombits(binary.LittleEndian.Uint32(rec[0:4]))
		c.UpperRight = math.Float32frombits(binary.LittleEndian.Uint32(rec[4:8]))
		c.LowerLeft = math.Float32frombits(binary.LittleEndian.Uint32(rec[8:12]))
		c.LowerRight = math.Float32frombits(binary.LittleEndian.Uint32(rec[12:16]))
		c.Type = rec[16]

		b := Classify(&c, waterLevel)
		cells = append(cells, b)
		if waterLevel != nil && c.AverageDepth() > *waterLevel {
			stats.Underwater++
		}
		if b == field.Unknown {
			stats.Unknown++
		}
	}

	g, err := field.GridFromCells(int(w), int(h), cells)
	if err != nil {
		return nil, err
	}
	stats.Cells = len(cells)
	return &Field{grid: g, stats: stats}, nil
}

func Load(path string, waterLevel *float32) (*Field, error) {
	fl, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[gat] Failed to open %q", path)
	}
	defer fl.Close()

	f, err := Read(fl, waterLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "[gat] Failed to load %q", path)
	}
	return f, nil
}

func readError(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(field.ErrTruncatedData, "[gat] Reading %s", what)
	}
	return errors.Wrapf(err, "[gat] Reading %s", what)
}

// Stats describes the classification done at load time.
func (f *Field) Stats() Stats { return f.stats }

func (f *Field) Width() int  { return f.grid.Width() }
func (f *Field) Height() int { return f.grid.Height() }

func (f *Field) Block(x, y int) (field.BlockType, error) {
	b, err := f.grid.At(x, y)
	if err != nil {
		return field.Unknown, err
	}
	return b, nil
}

func (f *Field) SetBlock(x, y int, b field.BlockType) error {
	if err := f.grid.Put(x, y, b); err != nil {
		return err
	}
	f.NotifyBlockChanged()
	return nil
}

func (f *Field) Resize(width, height int) error {
	changed, err := f.grid.Resize(width, height, field.DefaultFill)
	if err != nil {
		return err
	}
	if changed {
		f.NotifyDimensionChanged()
	}
	return nil
}

func (f *Field) Save(w io.Writer) error {
	return errors.Wrap(field.ErrSaveNotSupported, "[gat] Format is read only")
}
