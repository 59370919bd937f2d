package entry

import "strings"

const (
	openFence  = "```json"
	closeFence = "```"
	notFound   = -1
)

// locateFences returns the index of the first line that is exactly the
// opening fence and, independently, of the first line that is exactly the
// closing fence. Either is -1 when absent.
//
// The scans do not depend on each other, so a bare fence above the header
// block yields end < start. Ordering is enforced by wellFormed and
// extractHeader, not here.
func locateFences(lines []string) (start, end int) {
	start, end = notFound, notFound
	for i, l := range lines {
		if start == notFound && l == openFence {
			start = i
		}
		if end == notFound && l == closeFence {
			end = i
		}
		if start != notFound && end != notFound {
			break
		}
	}
	return start, end
}

// wellFormed applies the structural rules: both fences present and ordered,
// and at most one non-blank line above the header, which must be an H1.
func wellFormed(lines []string, start, end int) bool {
	if start == notFound || end == notFound || end < start {
		return false
	}

	var title []string
	for _, l := range lines[:start] {
		if l != "" {
			title = append(title, l)
		}
	}
	switch len(title) {
	case 0:
		return true
	case 1:
		return isHeading(title[0])
	default:
		return false
	}
}

func isHeading(line string) bool {
	return strings.HasPrefix(line, "# ")
}
