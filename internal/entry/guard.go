package entry

import (
	"bytes"
	"unicode/utf8"
)

// sampleSize is how much of a buffer IsBinary inspects.
const sampleSize = 512

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	pdfMagic = []byte("%PDF-")
)

// IsBinary classifies data by content: a NUL byte, a PDF signature, or more
// than 10% control bytes and invalid UTF-8 sequences in the first 512 bytes
// mark it as binary. Empty input is text.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data[:min(len(data), sampleSize)]
	if bytes.HasPrefix(sample, utf8BOM) {
		return false
	}
	if bytes.HasPrefix(sample, pdfMagic) {
		return true
	}

	suspicious := 0
	for i := 0; i < len(sample); {
		c := sample[i]
		if c == 0 {
			return true
		}
		if c < utf8.RuneSelf {
			// BEL through SO are common in text; other C0 controls are not.
			if (c < 7 || c > 14) && c < 32 {
				suspicious++
			}
			i++
			continue
		}
		r, size := utf8.DecodeRune(sample[i:])
		if r == utf8.RuneError && size == 1 {
			if len(sample) < len(data) && !utf8.FullRune(sample[i:]) {
				// Sequence cut by the sample boundary.
				break
			}
			suspicious++
		}
		i += size
	}
	return suspicious*100/len(sample) > 10
}
