// Package mutate expands a base phrase into a bounded, deterministic set of
// candidate passphrases.
package mutate

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxMutations caps the number of candidates per base phrase
const DefaultMaxMutations = 80

var (
	leetTable = []struct {
		from, to string
	}{
		{"a", "4"},
		{"a", "@"},
		{"e", "3"},
		{"i", "1"},
		{"l", "1"},
		{"o", "0"},
		{"s", "5"},
		{"s", "$"},
		{"t", "7"},
	}

	suffixes = []string{
		"", "1", "12", "123", "1234", "!", "?", ".",
		"2009", "2010", "2011", "2012", "2013", "2014",
	}

	prefixes = []string{"", "the ", "my ", "The ", "My "}
)

// Generator produces candidate strings for a base phrase
type Generator struct {
	max int
}

// NewGenerator creates a generator that returns at most limit candidates
func NewGenerator(limit int) *Generator {
	if limit <= 0 {
		limit = DefaultMaxMutations
	}
	return &Generator{max: limit}
}

// Max returns the candidate cap
func (g *Generator) Max() int {
	return g.max
}

// Generate returns the sorted, deduplicated candidates for base, truncated to
// the cap. The same input always yields the same output.
func (g *Generator) Generate(base string) []string {
	set := make(map[string]struct{})
	add := func(s string) {
		if s != "" {
			set[s] = struct{}{}
		}
	}

	trimmed := strings.TrimSpace(base)
	lower := strings.ToLower(trimmed)

	for _, w := range whitespaceVariants(base) {
		for _, c := range caseVariants(w) {
			for _, p := range punctuationVariants(c) {
				add(p)
			}
		}
	}

	for _, entry := range leetTable {
		if strings.Contains(lower, entry.from) {
			add(strings.ReplaceAll(lower, entry.from, entry.to))
		}
	}

	for _, form := range []string{trimmed, lower, capitalize(trimmed)} {
		for _, s := range suffixes {
			add(form + s)
		}
	}

	for _, form := range []string{trimmed, lower} {
		for _, p := range prefixes {
			add(p + form)
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)

	if len(out) > g.max {
		out = out[:g.max]
	}
	return out
}

func whitespaceVariants(s string) []string {
	fields := strings.Fields(s)
	return []string{
		s,
		strings.TrimSpace(s),
		strings.Join(fields, ""),
		strings.Join(fields, " "),
		strings.Join(fields, "_"),
		strings.Join(fields, "-"),
	}
}

func caseVariants(s string) []string {
	return []string{
		s,
		strings.ToLower(s),
		strings.ToUpper(s),
		capitalize(s),
		titleCase(s),
		lowerFirst(s),
	}
}

func punctuationVariants(s string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
	return []string{
		s,
		stripped,
		strings.TrimRightFunc(s, unicode.IsPunct),
	}
}

// capitalize upper-cases the first rune and lower-cases the rest
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// titleCase capitalizes every whitespace separated word and keeps separators
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			start = true
			b.WriteRune(r)
		case start:
			b.WriteRune(unicode.ToUpper(r))
			start = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
