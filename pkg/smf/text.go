package smf

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DecodeText converts the bytes of a textual meta event to a UTF-8
// string. Valid UTF-8 (which includes plain ASCII) passes through
// unchanged; anything else is decoded as Shift-JIS, since track names and
// lyrics in files from old Japanese Windows titles are stored that way.
// Bytes that decode under neither encoding are returned as-is.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoder := japanese.ShiftJIS.NewDecoder()
	reader := transform.NewReader(bytes.NewReader(data), decoder)
	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return string(data)
	}
	return string(utf8Data)
}
