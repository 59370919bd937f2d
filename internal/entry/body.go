package entry

import "strings"

// extractBody joins the lines after the closing fence at end, dropping
// leading and trailing blank lines. Inner blank lines are preserved.
func extractBody(lines []string, end int) string {
	a := end + 1
	for a < len(lines) && isBlank(lines[a]) {
		a++
	}
	b := len(lines)
	for b > a && isBlank(lines[b-1]) {
		b--
	}
	if a >= b {
		return ""
	}
	return strings.Join(lines[a:b], "\n")
}

// normalizeBody puts free text into the form extractBody produces, so a
// record built from it survives an encode/decode cycle unchanged.
func normalizeBody(body string) string {
	_, lines := decodeLines([]byte(body))
	return extractBody(lines, -1)
}
