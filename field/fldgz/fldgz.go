// Package fldgz stores dense fields inside a gzip container.
package fldgz

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/field/fld"
)

// Field is a dense field that compresses itself on Save.
// Everything else is served by the embedded dense field.
type Field struct {
	*fld.Field
}

var _ field.Field = (*Field)(nil)

func Wrap(f *fld.Field) *Field {
	return &Field{Field: f}
}

func New(width, height int) (*Field, error) {
	f, err := fld.New(width, height)
	if err != nil {
		return nil, err
	}
	return Wrap(f), nil
}

func NewFromField(src field.Field) (*Field, error) {
	f, err := fld.NewFromField(src)
	if err != nil {
		return nil, err
	}
	return Wrap(f), nil
}

// Read inflates r and decodes the dense field inside.
func Read(r io.Reader) (*Field, error) {
	raw, err := inflate(r)
	if err != nil {
		return nil, err
	}
	f, err := fld.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "[fldgz] Decoding inflated data")
	}
	return Wrap(f), nil
}

func Load(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[fldgz] Failed to open %q", path)
	}
	defer f.Close()

	res, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[fldgz] Failed to load %q", path)
	}
	return res, nil
}

// inflate turns any panic raised by the decompressor, such as a failed
// buffer allocation, into ErrEnvironmentUnsupported.
func inflate(r io.Reader) (raw []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			raw = nil
			err = errors.Wrapf(field.ErrEnvironmentUnsupported, "[fldgz] Decompression failed: %v", p)
		}
	}()

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, decompressError(err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, decompressError(err)
	}
	return buf.Bytes(), nil
}

func decompressError(err error) error {
	switch err {
	case gzip.ErrHeader:
		return errors.Wrap(field.ErrInvalidSignature, "[fldgz] Not a gzip stream")
	case io.EOF, io.ErrUnexpectedEOF:
		return errors.Wrap(field.ErrTruncatedData, "[fldgz] Compressed stream ended early")
	}
	return errors.Wrap(err, "[fldgz] Decompression failed")
}

func (f *Field) Save(w io.Writer) error {
	zw, err := gzip.NewWriterLevel(w, config.GetCompressionLevel())
	if err != nil {
		return errors.Wrap(err, "[fldgz] Creating compressor")
	}
	if err := f.Field.Save(zw); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "[fldgz] Flushing compressor")
	}
	return nil
}
