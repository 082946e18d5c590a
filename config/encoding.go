package config

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// Resource names inside map companions are usually written by korean tools.
const koreanEncodingName = "EUC-KR"

var currentEncoding, currentEncodingName = defaultEncoding()

func defaultEncoding() (encoding.Encoding, string) {
	return korean.EUCKR, koreanEncodingName
}

func SetEncoding(name string) error {
	if name == koreanEncodingName {
		currentEncoding, currentEncodingName = korean.EUCKR, name
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentEncoding, currentEncodingName = cm, name
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{koreanEncodingName}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() encoding.Encoding {
	return currentEncoding
}

func GetEncodingName() string {
	return currentEncodingName
}
