// Package formats picks the codec for a map file and loads it.
package formats

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/field/fld"
	"github.com/OpenKore/openkore-sub004/field/fldgz"
	"github.com/OpenKore/openkore-sub004/field/gat"
	"github.com/OpenKore/openkore-sub004/field/rsw"
)

const (
	ExtFld   = ".fld"
	ExtFldGz = ".fld.gz"
	ExtGat   = ".gat"
)

// Codec is a pluggable format. Load may return a non-empty warning next
// to a usable field.
type Codec interface {
	CanHandle(path string) bool
	Load(path string) (field.Field, string, error)
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs struct {
	Handles func(path string) bool
	Loader  func(path string) (field.Field, string, error)
}

func (c CodecFuncs) CanHandle(path string) bool { return c.Handles(path) }

func (c CodecFuncs) Load(path string) (field.Field, string, error) { return c.Loader(path) }

// Registry holds pluggable codecs probed after the built-in formats.
// Entries are only appended.
type Registry struct {
	codecs []Codec
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends c; registering the same codec twice adds a second probe.
func (r *Registry) Register(c Codec) {
	r.codecs = append(r.codecs, c)
}

func (r *Registry) Codecs() []Codec {
	return append([]Codec(nil), r.codecs...)
}

// Handles reports whether Load would pick a codec for path.
func (r *Registry) Handles(path string) bool {
	if builtin(path) != "" {
		return true
	}
	for _, c := range r.codecs {
		if c.CanHandle(path) {
			return true
		}
	}
	return false
}

// Load opens path with the matching codec. A nil field with a nil error
// means no codec accepted the file.
func (r *Registry) Load(path string) (field.Field, string, error) {
	switch builtin(path) {
	case ExtFldGz:
		f, err := fldgz.Load(path)
		return nilIfErr(f, err), "", err
	case ExtFld:
		f, err := fld.Load(path)
		return nilIfErr(f, err), "", err
	case ExtGat:
		return loadGat(path)
	}

	for _, c := range r.codecs {
		if c.CanHandle(path) {
			return c.Load(path)
		}
	}
	return nil, "", nil
}

func builtin(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{ExtFldGz, ExtFld, ExtGat} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// nilIfErr keeps typed nil pointers out of the returned interface.
func nilIfErr[T field.Field](f T, err error) field.Field {
	if err != nil {
		return nil
	}
	return f
}

// CompanionPath swaps the .gat extension for the companion one, keeping
// the extension case.
func CompanionPath(gatPath string) string {
	ext := filepath.Ext(gatPath)
	companion := config.GetCompanionExt()
	if ext == strings.ToUpper(ext) {
		companion = strings.ToUpper(companion)
	}
	return strings.TrimSuffix(gatPath, ext) + companion
}

func loadGat(path string) (field.Field, string, error) {
	var warning string
	var waterLevel *float32

	companion := CompanionPath(path)
	if _, err := os.Stat(companion); err != nil {
		warning = fmt.Sprintf("Water level file %q not found, water cells may be classified inaccurately", companion)
	} else if level, err := rsw.LoadWaterLevel(companion); err != nil {
		warning = fmt.Sprintf("Water level not read from %q (%v), water cells may be classified inaccurately", companion, err)
	} else {
		waterLevel = &level
	}
	if warning != "" {
		log.Printf("[formats] %s", warning)
	}

	f, err := gat.Load(path, waterLevel)
	if err != nil {
		return nil, "", errors.Wrap(err, "[formats] Loading ground altitude table")
	}
	return f, warning, nil
}

var defaultRegistry = NewRegistry()

// Register adds c to the process-wide registry used by Load.
func Register(c Codec) {
	defaultRegistry.Register(c)
}

func Load(path string) (field.Field, string, error) {
	return defaultRegistry.Load(path)
}

func Default() *Registry {
	return defaultRegistry
}

// SaveAs writes f to path in the format chosen by the path extension,
// converting when f is stored differently. Unknown extensions use the
// field's own encoding.
func SaveAs(f field.Field, path string) error {
	var out field.Field = f
	switch builtin(path) {
	case ExtFldGz:
		if _, ok := f.(*fldgz.Field); !ok {
			conv, err := fldgz.NewFromField(f)
			if err != nil {
				return errors.Wrap(err, "[formats] Converting to compressed dense field")
			}
			out = conv
		}
	case ExtFld:
		if _, ok := f.(*fld.Field); !ok {
			conv, err := fld.NewFromField(f)
			if err != nil {
				return errors.Wrap(err, "[formats] Converting to dense field")
			}
			out = conv
		}
	}
	return field.SaveFile(out, path)
}
