package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"unalias/internal/document"
)

// EscapeUnprintable returns a string where printable Unicode runes are preserved.
// Control and unprintable runes are escaped as \uXXXX. Invalid UTF-8 is escaped as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 sequence, escape the byte
			sb.WriteString(fmt.Sprintf("\\x%02X", b[0]))
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("\\u%04X", r))
		}
		b = b[size:]
	}
	return sb.String()
}

// ReadSelectorName reads the NUL-terminated selector string at addr one byte
// at a time. The terminator is not included; a string that starts with the
// terminator reads as "".
func ReadSelectorName(doc document.Document, addr uint64) (string, error) {
	var buf []byte
	for va := addr; ; va++ {
		if len(buf) >= MaxSelectorLength {
			return "", newError(KindTextDecode, addr, fmt.Errorf("unterminated after %d bytes", len(buf)))
		}
		b, err := doc.ReadByteAt(va)
		if err != nil {
			return "", newError(KindTextDecode, addr, err)
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}

	if !utf8.Valid(buf) {
		return "", newError(KindTextDecode, addr, fmt.Errorf("invalid UTF-8 %q", EscapeUnprintable(buf)))
	}
	return string(buf), nil
}
