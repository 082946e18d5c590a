package config

import (
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWaterLevelOffset = 166
	DefaultCompanionExt     = ".rsw"
	DefaultCompressionLevel = gzip.BestCompression
)

var waterLevelOffset int64 = DefaultWaterLevelOffset
var companionExt = DefaultCompanionExt
var compressionLevel = DefaultCompressionLevel

// GetWaterLevelOffset returns the byte offset of the water level float in a companion file.
func GetWaterLevelOffset() int64 {
	return waterLevelOffset
}

func SetWaterLevelOffset(off int64) error {
	if off < 0 {
		return errors.Errorf("Negative water level offset %d", off)
	}
	waterLevelOffset = off
	return nil
}

func GetCompanionExt() string {
	return companionExt
}

func SetCompanionExt(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return errors.Errorf("Invalid companion extension %q", ext)
	}
	companionExt = ext
	return nil
}

func GetCompressionLevel() int {
	return compressionLevel
}

func SetCompressionLevel(level int) error {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return errors.Errorf("Invalid compression level %d", level)
	}
	compressionLevel = level
	return nil
}

// File is the yaml layout accepted by Load. Zero values keep current settings.
type File struct {
	Encoding         string `yaml:"encoding"`
	WaterLevelOffset *int64 `yaml:"water_level_offset"`
	CompanionExt     string `yaml:"companion_ext"`
	CompressionLevel *int   `yaml:"compression_level"`
}

// Load reads a yaml settings file and applies it.
// Empty path falls back to FIELD_CONFIG; if that is empty too nothing changes.
func Load(path string) error {
	if path == "" {
		if path = os.Getenv("FIELD_CONFIG"); path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read config %q", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return Apply(&f)
}

func Apply(f *File) error {
	if f.Encoding != "" {
		if err := SetEncoding(f.Encoding); err != nil {
			return err
		}
	}
	if f.WaterLevelOffset != nil {
		if err := SetWaterLevelOffset(*f.WaterLevelOffset); err != nil {
			return err
		}
	}
	if f.CompanionExt != "" {
		if err := SetCompanionExt(f.CompanionExt); err != nil {
			return err
		}
	}
	if f.CompressionLevel != nil {
		if err := SetCompressionLevel(*f.CompressionLevel); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores every setting to its default.
func Reset() {
	currentEncoding, currentEncodingName = defaultEncoding()
	waterLevelOffset = DefaultWaterLevelOffset
	companionExt = DefaultCompanionExt
	compressionLevel = DefaultCompressionLevel
}
