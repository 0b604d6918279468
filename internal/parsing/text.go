package parsing

import (
	"regexp"
	"strings"
)

var intraLineSpace = regexp.MustCompile(`[ \t]+`)

// Normalize collapses OCR whitespace noise while preserving line structure.
// Runs of spaces and tabs inside a line become a single space and line edges
// are trimmed, but line boundaries are kept because table detection depends
// on them. Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(intraLineSpace.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}
