package utils

import (
	"bytes"

	"github.com/OpenKore/openkore-sub004/config"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"
)

// BytesToString decodes a NUL-terminated fixed-size name field
// using the configured text encoding.
func BytesToString(bs []byte) (string, error) {
	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[:BytesStringLength(bs)])
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode %q", bs)
	}
	return string(s), nil
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}
