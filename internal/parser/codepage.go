package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// codePages maps dBase language driver ids to character maps.
var codePages = map[uint8]encoding.Encoding{
	0x01: charmap.CodePage437,
	0x02: charmap.CodePage850,
	0x03: charmap.Windows1252,
	0x26: charmap.CodePage866,
	0x57: charmap.Windows1252,
	0x64: charmap.CodePage852,
	0x65: charmap.CodePage866,
	0xC8: charmap.Windows1250,
	0xC9: charmap.Windows1251,
}

// CodePageEncoding returns the encoding for a dBase code page mark.
func CodePageEncoding(mark uint8) (encoding.Encoding, bool) {
	enc, ok := codePages[mark]
	return enc, ok
}

// CPGEncoding resolves the contents of a .cpg sidecar file.
//
// Accepts IANA names ("UTF-8", "windows-1251", "ISO-8859-2") and the bare
// numeric forms written by desktop GIS tools ("1252", "ANSI 1251", "88591",
// "866").
func CPGEncoding(cpg string) (encoding.Encoding, error) {
	name := strings.TrimSpace(strings.TrimPrefix(cpg, "\ufeff"))
	if name == "" {
		return nil, fmt.Errorf("empty code page")
	}

	upper := strings.ToUpper(name)
	upper = strings.TrimSpace(strings.TrimPrefix(upper, "ANSI"))
	switch {
	case upper == "UTF8":
		name = "UTF-8"
	case !isDigits(upper):
		// Assume an IANA name.
	case len(upper) == 4 && strings.HasPrefix(upper, "125"):
		name = "windows-" + upper
	case len(upper) > 4 && strings.HasPrefix(upper, "8859"):
		name = "ISO-8859-" + upper[4:]
	default:
		name = "IBM" + upper
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("code page %q: %w", cpg, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("code page %q not supported", cpg)
	}
	return enc, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
