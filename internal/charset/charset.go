// Package charset normalises subtitle scripts to UTF-8.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// detections below this confidence (0-100) are not trusted
const minConfidence = 25

var (
	utf8BOM     = []byte{0xef, 0xbb, 0xbf}
	replacement = []byte("\uFFFD")
)

// ToUTF8 returns data re-encoded as UTF-8. Input that is already valid
// UTF-8 is returned as is. Input that is UTF-8 apart from a few stray bytes
// keeps its text and has those bytes replaced with U+FFFD; anything else is
// decoded with the detected charset.
func ToUTF8(data []byte) ([]byte, error) {
	if len(data) == 0 || utf8.Valid(data) {
		return data, nil
	}

	if mostlyUTF8(data) {
		return bytes.TrimPrefix(bytes.ToValidUTF8(data, replacement), utf8BOM), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	if result.Confidence < minConfidence {
		return nil, fmt.Errorf(
			"charset not recognised (best guess %s, confidence %d)",
			result.Charset,
			result.Confidence,
		)
	}
	if result.Charset == "UTF-8" {
		return bytes.TrimPrefix(bytes.ToValidUTF8(data, replacement), utf8BOM), nil
	}

	enc, err := ianaindex.MIB.Encoding(result.Charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", result.Charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", result.Charset)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", result.Charset, err)
	}

	return bytes.TrimPrefix(decoded, utf8BOM), nil
}

// mostlyUTF8 reports whether valid multi-byte sequences outnumber invalid
// bytes at least ten to one.
func mostlyUTF8(data []byte) bool {
	var valid, invalid int
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		switch {
		case r == utf8.RuneError && size == 1:
			invalid++
		case size > 1:
			valid++
		}
		data = data[size:]
	}
	return valid > 0 && valid >= invalid*10
}
