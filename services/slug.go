package services

import (
	"regexp"
	"strings"
	"unicode"
)

// whitespace matches the Unicode space separators as well as ASCII blanks.
// Use it in place of \s, which only covers ASCII.
const whitespace = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

// isSpace reports whether r belongs to the whitespace class.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// trimSpace is strings.TrimSpace over the whitespace class.
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9` + whitespace + `-]`)
	slugSpaces     = regexp.MustCompile(`[` + whitespace + `]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// Slugify turns a title into a URL-safe slug. The result may be empty when the
// title holds no letters or digits; callers must reject that.
func Slugify(title string) string {
	s := strings.ToLower(trimSpace(title))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
