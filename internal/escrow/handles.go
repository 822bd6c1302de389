package escrow

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Zero-width and BOM characters that break token matching when users
// copy-paste handles or bio text.
const zeroWidthChars = "​‌‍⁠\uFEFF"

// NormalizeHandle lower-cases a handle and strips whitespace and the leading
// "@". Returns "" for empty input.
func NormalizeHandle(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "@")
	return strings.ToLower(h)
}

// CleanText applies NFKC normalisation and strips zero-width characters, so
// badge tokens survive copy-paste mangling.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(zeroWidthChars, r) {
			return -1
		}
		return r
	}, s)
}
