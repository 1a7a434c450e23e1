package query

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
)

// ErrNoPatterns is returned when a matcher is built from an empty pattern list.
var ErrNoPatterns = errors.New("no search pattern given")

// GlobMatcher matches candidates against shell-style glob patterns. A `*`
// also matches path separators, and a backslash is always a literal
// character, so Windows paths can be used in patterns as typed.
type GlobMatcher struct {
	patterns []string
	globs    []glob.Glob
	fold     bool
}

// NewGlobMatcher compiles patterns after expanding them with ExpandPattern.
// Unless caseSensitive is set, patterns and candidates are compared in lower
// case.
func NewGlobMatcher(patterns []string, caseSensitive bool) (*GlobMatcher, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	m := &GlobMatcher{fold: !caseSensitive}
	for _, p := range patterns {
		expanded := ExpandPattern(p)
		if m.fold {
			expanded = strings.ToLower(expanded)
		}

		g, err := glob.Compile(strings.ReplaceAll(expanded, `\`, `\\`))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", p)
		}
		m.patterns = append(m.patterns, expanded)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// ExpandPattern applies implicit globbing. A pattern starting with `/` is
// used as-is without the slash; a pattern starting or ending with `*` is
// used as-is; anything else matches as a substring.
func ExpandPattern(pattern string) string {
	if rest, ok := strings.CutPrefix(pattern, "/"); ok {
		return rest
	}
	if strings.HasPrefix(pattern, "*") || strings.HasSuffix(pattern, "*") {
		return pattern
	}
	return "*" + pattern + "*"
}

func (m *GlobMatcher) normalize(candidate string) string {
	if m.fold {
		return strings.ToLower(candidate)
	}
	return candidate
}

// IsMatch implements Matcher
func (m *GlobMatcher) IsMatch(candidate string) bool {
	candidate = m.normalize(candidate)
	for _, g := range m.globs {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}

// MatchCount implements Matcher
func (m *GlobMatcher) MatchCount(candidate string) int {
	candidate = m.normalize(candidate)
	n := 0
	for _, g := range m.globs {
		if g.Match(candidate) {
			n++
		}
	}
	return n
}

// Len implements Matcher
func (m *GlobMatcher) Len() int {
	return len(m.globs)
}

// Patterns returns the expanded patterns, lower-cased when matching ignores case
func (m *GlobMatcher) Patterns() []string {
	return m.patterns
}
