// Package field holds the in-memory model shared by every map format:
// the block classification, the Field contract implemented by each codec
// and the update batching used to coalesce change notifications.
package field

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Field is a rectangular grid of classified cells.
//
// Block and SetBlock require 0 <= x < Width() and 0 <= y < Height().
// Notifications registered with OnBlockChanged and OnDimensionChanged run
// synchronously, or once at the end of the outermost update batch.
type Field interface {
	Width() int
	Height() int
	Block(x, y int) (BlockType, error)
	SetBlock(x, y int, b BlockType) error
	Resize(width, height int) error
	Save(w io.Writer) error

	BeginUpdate()
	EndUpdate() error
	OnBlockChanged(fn func())
	OnDimensionChanged(fn func())
}

// NewFileMode is the mode SaveFile gives to files it creates.
const NewFileMode = 0644

// SaveFile encodes f in memory and only then replaces the file at path,
// so codecs that cannot save never leave an empty or partial file behind.
func SaveFile(f Field, path string) error {
	var buf bytes.Buffer
	if err := f.Save(&buf); err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temporary file for %q", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "Failed to write %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "Failed to close %q", tmp.Name())
	}
	// temp files are owner only, keep the mode of the file being replaced
	mode := os.FileMode(NewFileMode)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return errors.Wrapf(err, "Failed to chmod %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "Failed to replace %q", path)
	}
	return nil
}

// Copy writes every block of src into dst, which must already have the
// same dimensions. One block-changed notification is raised on dst.
func Copy(dst, src Field) error {
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		return errors.Wrapf(ErrPreconditionViolation, "copy %dx%d into %dx%d",
			src.Width(), src.Height(), dst.Width(), dst.Height())
	}
	dst.BeginUpdate()
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			b, err := src.Block(x, y)
			if err != nil {
				dst.EndUpdate()
				return err
			}
			if err := dst.SetBlock(x, y, b); err != nil {
				dst.EndUpdate()
				return err
			}
		}
	}
	return dst.EndUpdate()
}
