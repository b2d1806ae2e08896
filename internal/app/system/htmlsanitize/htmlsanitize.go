// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize scrubs caller-supplied text before it is stored.
// Free-text fields arrive from a public form, so anything that looks like
// markup is hostile until proven otherwise.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc keeps basic formatting (paragraphs, emphasis, lists, links) and
	// strips scripts, event handlers, and embeds.
	ugc = bluemonday.UGCPolicy()

	// strict strips every tag, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe user-generated formatting and removes everything
// executable. Used for rich description fields.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags reduces the input to plain text. Used for fields that are always
// rendered as text (names, motivations, notes).
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
