// Package matcher provides keyword and URL pattern matching over fetched bodies.
// Keyword matching uses an Aho-Corasick automaton for a single O(n+m) pass
// through the text regardless of how many keywords are configured.
package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// defaultScheme is prepended to extracted URLs that carry no protocol.
const defaultScheme = "http://"

// Result holds everything matched in one body.
type Result struct {
	// Keywords are the matched keywords in configuration order.
	Keywords []string
	// URLs are the normalized extracted URLs in first-occurrence order.
	URLs []string
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return len(r.Keywords) == 0 && len(r.URLs) == 0
}

// Matcher matches configured keywords and URL patterns against text.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	keywords []string // normalized, deduplicated, configuration order
	trie     *ahocorasick.Matcher
	patterns []*regexp.Regexp
}

// New compiles the keyword automaton and URL patterns.
// Keywords are matched case-insensitively as substrings, which keeps dotted
// keywords like "t.me" matching literally; empty and duplicate keywords are
// dropped. URL patterns are compiled case-insensitively and pattern
// compilation errors surface immediately.
func New(keywords, urlPatterns []string) (*Matcher, error) {
	m := &Matcher{}

	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(kw))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		m.keywords = append(m.keywords, normalized)
	}
	if len(m.keywords) > 0 {
		m.trie = ahocorasick.NewStringMatcher(m.keywords)
	}

	m.patterns = make([]*regexp.Regexp, 0, len(urlPatterns))
	for _, pattern := range urlPatterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile url pattern %q: %w", pattern, err)
		}
		m.patterns = append(m.patterns, re)
	}

	return m, nil
}

// Match runs both keyword and URL matching over the text.
// Empty input yields an empty result, never an error.
func (m *Matcher) Match(text string) Result {
	return Result{
		Keywords: m.MatchKeywords(text),
		URLs:     m.ExtractURLs(text),
	}
}

// MatchKeywords returns the configured keywords found in the text, each
// reported once, in configuration order.
func (m *Matcher) MatchKeywords(text string) []string {
	if m.trie == nil || text == "" {
		return nil
	}

	hits := m.trie.Match([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return nil
	}

	// Hit indices point into the keyword slice, so ascending index order
	// is configuration order.
	sort.Ints(hits)
	found := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(m.keywords) {
			found = append(found, m.keywords[idx])
		}
	}
	return found
}

// ExtractURLs returns every URL matched by the configured patterns, normalized
// with the default scheme, deduplicated in first-occurrence order.
func (m *Matcher) ExtractURLs(text string) []string {
	if len(m.patterns) == 0 || text == "" {
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	for _, re := range m.patterns {
		for _, raw := range re.FindAllString(text, -1) {
			normalized := NormalizeURL(raw)
			if normalized == "" || seen[normalized] {
				continue
			}
			seen[normalized] = true
			urls = append(urls, normalized)
		}
	}
	return urls
}

// KeywordCount returns the number of compiled keywords.
func (m *Matcher) KeywordCount() int {
	return len(m.keywords)
}

// PatternCount returns the number of compiled URL patterns.
func (m *Matcher) PatternCount() int {
	return len(m.patterns)
}

// NormalizeURL prepends the default scheme when the URL carries none.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return defaultScheme + raw
}
