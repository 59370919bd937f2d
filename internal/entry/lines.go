package entry

import (
	"strings"
	"unicode"
)

// decodeLines decodes data as UTF-8 and splits it on '\n'. Every line is
// right-trimmed of whitespace (including a trailing '\r'); leading and inner
// whitespace is kept.
func decodeLines(data []byte) (string, []string) {
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return text, lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
