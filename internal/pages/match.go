package pages

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDocumentPatterns are the glob patterns of recognized document
// files. They decide which uploads are kept and which new pages are seeded
// with DefaultHTML.
var DefaultDocumentPatterns = []string{"**/*.html"}

// Matcher reports whether a page name is a recognized document.
type Matcher struct {
	patterns []string
}

// NewMatcher builds a Matcher. An empty pattern list falls back to
// DefaultDocumentPatterns. Invalid patterns are dropped.
func NewMatcher(patterns []string) *Matcher {
	if len(patterns) == 0 {
		patterns = DefaultDocumentPatterns
	}
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
		if doublestar.ValidatePattern(p) {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Match reports whether name matches any pattern. Matching is
// case-insensitive and is tried against both the full name and its base.
func (m *Matcher) Match(name string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	base := path.Base(normalized)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, normalized); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Patterns returns the active patterns.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// TrimExt returns name without its final extension: "about.html" becomes
// "about", "notes" stays "notes". It is the default publish-name.
func TrimExt(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
