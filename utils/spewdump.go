package utils

import (
	"bytes"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// SDump renders a readable tree of every value.
func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// DumpToOneLineString renders printable bytes as is and escapes the rest,
// handy for reporting bad magic values.
func DumpToOneLineString(buf []byte) string {
	var out bytes.Buffer

	for _, b := range buf {
		if b >= 0x20 && b < 0x7f {
			out.WriteByte(b)
		} else {
			fmt.Fprintf(&out, "\\x%.2x", b)
		}
	}

	return out.String()
}
