package sanitize

import (
	"regexp"
	"strings"
)

var (
	// [label](url) constructs: keep the label, drop the target.
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

	// Bare URLs, with or without a scheme.
	urlPattern = regexp.MustCompile(`https?://\S+|\bwww\.\S+`)

	// Community and user references (r/xxx, u/xxx).
	subredditPattern = regexp.MustCompile(`\br/[A-Za-z0-9_]+`)
	mentionPattern   = regexp.MustCompile(`\bu/[A-Za-z0-9_-]+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripLinks removes markdown links (keeping the label), bare URLs, and
// community/user references from text, then collapses whitespace runs and
// trims. The result may be empty.
func StripLinks(text string) string {
	if text == "" {
		return ""
	}

	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = urlPattern.ReplaceAllString(text, "")
	text = subredditPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
