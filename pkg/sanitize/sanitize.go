package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from user input and returns plain text, trimmed.
func Text(s string) string {
	s = strings.ReplaceAll(s, "</p>", "\n")
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "</div>", "\n")

	cleaned := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(cleaned)
}

// Inline is Text with all whitespace runs collapsed to one space.
func Inline(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// TextPtr applies Text to an optional value. Blank results become nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Text(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
