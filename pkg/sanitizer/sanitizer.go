// Package sanitizer normalizes user supplied text.
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag, unescapes entities and collapses whitespace.
func Text(s string) string {
	s = strings.ReplaceAll(s, "</p>", " ")
	s = strings.ReplaceAll(s, "<br>", " ")
	s = strings.ReplaceAll(s, "</div>", " ")

	clean := html.UnescapeString(policy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// Trim removes surrounding whitespace and keeps everything else as sent.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// OptionalTrim applies Trim to a non-nil value; blank results become nil.
func OptionalTrim(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Trim(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
