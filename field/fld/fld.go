// Package fld implements the dense field format: a u16 width, a u16 height
// and one code byte per cell, all little endian and row-major.
package fld

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/field"
)

const HeaderSize = 4

// MaxSize is the largest width or height the header can describe.
const MaxSize = math.MaxUint16

type Field struct {
	field.Notifier
	grid field.Grid[uint8]
}

var _ field.Field = (*Field)(nil)

// New creates a width x height field filled with field.DefaultFill.
func New(width, height int) (*Field, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	g, err := field.NewGrid(width, height, field.DefaultFill.Code())
	if err != nil {
		return nil, err
	}
	return &Field{grid: g}, nil
}

// NewFromField converts any field into the dense format.
func NewFromField(src field.Field) (*Field, error) {
	f, err := New(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	cells := f.grid.Cells()
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			b, err := src.Block(x, y)
			if err != nil {
				return nil, err
			}
			cells[y*src.Width()+x] = b.Code()
		}
	}
	return f, nil
}

// Read decodes a dense field. Bytes after the last cell are not consumed.
func Read(r io.Reader) (*Field, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, readError(err, "header")
	}
	width := int(binary.LittleEndian.Uint16(hdr[0:2]))
	height := int(binary.LittleEndian.Uint16(hdr[2:4]))

	n := int64(width * height)
	cells, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, readError(err, "cells")
	}
	if int64(len(cells)) < n {
		return nil, readError(io.ErrUnexpectedEOF, "cells")
	}
	for i, c := range cells {
		cells[i] = field.BlockTypeFromCode(c).Code()
	}

	g, err := field.GridFromCells(width, height, cells)
	if err != nil {
		return nil, err
	}
	return &Field{grid: g}, nil
}

func Load(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[fld] Failed to open %q", path)
	}
	defer f.Close()

	res, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[fld] Failed to load %q", path)
	}
	return res, nil
}

func readError(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(field.ErrTruncatedData, "[fld] Reading %s", what)
	}
	return errors.Wrapf(err, "[fld] Reading %s", what)
}

func checkSize(width, height int) error {
	if width < 0 || height < 0 || width > MaxSize || height > MaxSize {
		return errors.Wrapf(field.ErrPreconditionViolation,
			"[fld] Size %dx%d outside of 0..%d", width, height, MaxSize)
	}
	return nil
}

func (f *Field) Width() int  { return f.grid.Width() }
func (f *Field) Height() int { return f.grid.Height() }

func (f *Field) Block(x, y int) (field.BlockType, error) {
	c, err := f.grid.At(x, y)
	if err != nil {
		return field.Unknown, err
	}
	return field.BlockTypeFromCode(c), nil
}

func (f *Field) SetBlock(x, y int, b field.BlockType) error {
	if err := f.grid.Put(x, y, b.Code()); err != nil {
		return err
	}
	f.NotifyBlockChanged()
	return nil
}

func (f *Field) Resize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	changed, err := f.grid.Resize(width, height, field.DefaultFill.Code())
	if err != nil {
		return err
	}
	if changed {
		f.NotifyDimensionChanged()
	}
	return nil
}

// Bytes returns the encoded form of the field.
func (f *Field) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(f.grid.Cells()))
	// writes to a bytes.Buffer do not fail
	_ = f.Save(&buf)
	return buf.Bytes()
}

func (f *Field) Save(w io.Writer) error {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(f.Width()))
	binary.LittleEndian.PutUint16(hdr[2:4], uint16(f.Height()))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "[fld] Writing header")
	}
	if _, err := w.Write(f.grid.Cells()); err != nil {
		return errors.Wrap(err, "[fld] Writing cells")
	}
	return nil
}
