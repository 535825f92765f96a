package sanitize

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Built-in denylist of automated and moderation accounts. Matching is exact
// and case-insensitive.
var builtinDenylist = map[string]bool{
	"automoderator": true,
	"automod":       true,
	"moderator":     true,
	"bot":           true,
	"modbot":        true,
	"reddit":        true,
}

// AuthorFilter decides which comment authors are skipped during extraction.
// The zero value applies only the built-in rules; NewAuthorFilter adds
// user-configured glob patterns on top.
type AuthorFilter struct {
	patterns []glob.Glob
}

// NewAuthorFilter compiles extra case-insensitive glob patterns (e.g.
// "*_official", "spam?") to be applied in addition to the built-in rules.
func NewAuthorFilter(patterns []string) (*AuthorFilter, error) {
	f := &AuthorFilter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid author filter pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

// Filtered reports whether comments by the named author should be skipped.
// An empty name (author unknown) is never filtered.
func (f *AuthorFilter) Filtered(name string) bool {
	if name == "" {
		return false
	}

	lower := strings.ToLower(name)

	if builtinDenylist[lower] {
		return true
	}
	if strings.Contains(lower, "bot") {
		return true
	}
	if strings.HasSuffix(lower, "_bot") {
		return true
	}
	if strings.HasPrefix(lower, "mod") {
		return true
	}

	if f != nil {
		for _, g := range f.patterns {
			if g.Match(lower) {
				return true
			}
		}
	}
	return false
}

// IsFilteredAuthor applies only the built-in rules.
func IsFilteredAuthor(name string) bool {
	return (*AuthorFilter)(nil).Filtered(name)
}
