// Package rsw reads what the field tools need from a map's resource world
// companion: the water level and, when present, the resource names.
package rsw

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/utils"
)

const (
	nameSize   = 40
	headerSize = 6 + 4*nameSize
)

var Magic = [4]byte{'G', 'R', 'S', 'W'}

type Header struct {
	Magic        [4]byte
	VersionMajor uint8
	VersionMinor uint8
	IniFile      string
	GndFile      string
	GatFile      string
	SrcFile      string
}

func (h *Header) HasMagic() bool {
	return h.Magic == Magic
}

// ReadWaterLevel reads the little endian float at the configured offset.
func ReadWaterLevel(r io.ReaderAt) (float32, error) {
	var b [4]byte
	off := config.GetWaterLevelOffset()
	if n, err := r.ReadAt(b[:], off); n < len(b) {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, errors.Wrapf(field.ErrTruncatedData, "[rsw] No water level at 0x%x", off)
		}
		return 0, errors.Wrapf(err, "[rsw] Reading water level at 0x%x", off)
	}
	level := math.Float32frombits(binary.LittleEndian.Uint32(b[:]))
	if math.IsNaN(float64(level)) || math.IsInf(float64(level), 0) {
		return 0, errors.Errorf("[rsw] Water level at 0x%x is not a number", off)
	}
	return level, nil
}

// ReadHeader decodes the resource names. The companion is not required to
// carry them, so callers treat failures as informational.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	var b [headerSize]byte
	if n, err := r.ReadAt(b[:], 0); n < len(b) {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrap(field.ErrTruncatedData, "[rsw] Reading header")
		}
		return nil, errors.Wrap(err, "[rsw] Reading header")
	}

	h := &Header{VersionMajor: b[4], VersionMinor: b[5]}
	copy(h.Magic[:], b[:4])
	names := []*string{&h.IniFile, &h.GndFile, &h.GatFile, &h.SrcFile}
	for i, name := range names {
		off := 6 + i*nameSize
		s, err := utils.BytesToString(b[off : off+nameSize])
		if err != nil {
			return nil, errors.Wrapf(err, "[rsw] Name at 0x%x", off)
		}
		*name = s
	}
	return h, nil
}

// LoadWaterLevel opens path only for the duration of the read.
func LoadWaterLevel(path string) (float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "[rsw] Failed to open %q", path)
	}
	defer f.Close()
	return ReadWaterLevel(f)
}

func LoadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[rsw] Failed to open %q", path)
	}
	defer f.Close()
	return ReadHeader(f)
}
