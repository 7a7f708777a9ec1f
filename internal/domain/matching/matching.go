// Package matching resolves free-text skill answers to mapping subcategories.
//
// A case-insensitive exact match is always tried first. When it fails the
// configured fallback policy runs:
//   - exact: no fallback, the answer stays unmatched
//   - substring: the words of a subcategory name appear as a contiguous
//     run in the answer or the other way round; the longest name wins,
//     then mapping order
//   - fuzzy: subsequence scoring; the best score at or above the minimum
//     wins, then mapping order
package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
)

// Policies.
const (
	PolicyExact     = "exact"
	PolicySubstring = "substring"
	PolicyFuzzy     = "fuzzy"
)

// Kind tells how an answer was matched.
type Kind string

const (
	KindExact     Kind = "exact"
	KindSubstring Kind = "substring"
	KindFuzzy     Kind = "fuzzy"
	KindNone      Kind = "none"
)

// Result is the outcome of one match.
type Result struct {
	Ref   mapping.Ref
	Kind  Kind
	Score int
}

// Matched reports whether a subcategory was found.
func (r Result) Matched() bool { return r.Kind != KindNone }

// Matcher matches answers against one team mapping.
type Matcher struct {
	mapping  *mapping.Mapping
	policy   string
	minScore int

	refs   []mapping.Ref
	keys   []string
	tokens [][]string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPolicy sets the fallback policy. Unknown values keep the default.
func WithPolicy(policy string) Option {
	return func(m *Matcher) {
		switch policy {
		case PolicyExact, PolicySubstring, PolicyFuzzy:
			m.policy = policy
		}
	}
}

// WithMinScore sets the lowest fuzzy score that counts as a match.
func WithMinScore(score int) Option {
	return func(m *Matcher) {
		m.minScore = score
	}
}

// New creates a Matcher with the substring policy unless configured otherwise.
func New(mp *mapping.Mapping, opts ...Option) *Matcher {
	m := &Matcher{
		mapping: mp,
		policy:  PolicySubstring,
		refs:    mp.Refs(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.keys = make([]string, len(m.refs))
	m.tokens = make([][]string, len(m.refs))
	for i, r := range m.refs {
		m.keys[i] = mapping.Key(r.Subcategory)
		m.tokens[i] = tokenize(m.keys[i])
	}
	return m
}

// Policy returns the active fallback policy.
func (m *Matcher) Policy() string { return m.policy }

// Match resolves answer. When category names a mapping category, fallback
// candidates are limited to it; an exact match is accepted from any category
// since subcategory names are unique within a team.
func (m *Matcher) Match(answer, category string) Result {
	key := mapping.Key(answer)
	if key == "" {
		return Result{Kind: KindNone}
	}
	if ref, ok := m.mapping.Lookup(answer); ok {
		return Result{Ref: ref, Kind: KindExact}
	}

	candidates := m.candidates(category)
	switch m.policy {
	case PolicySubstring:
		return m.substring(key, candidates)
	case PolicyFuzzy:
		return m.fuzzy(key, candidates)
	default:
		return Result{Kind: KindNone}
	}
}

// candidates returns indexes into refs, in mapping order.
func (m *Matcher) candidates(category string) []int {
	scoped := ""
	if c, ok := m.mapping.Category(category); ok {
		scoped = c.Name
	}
	out := make([]int, 0, len(m.refs))
	for i, r := range m.refs {
		if scoped == "" || r.Category == scoped {
			out = append(out, i)
		}
	}
	return out
}

func (m *Matcher) substring(key string, candidates []int) Result {
	words := tokenize(key)
	if len(words) == 0 {
		return Result{Kind: KindNone}
	}
	best, bestLen := -1, 0
	for _, i := range candidates {
		name := m.tokens[i]
		if !containsRun(words, name) && !containsRun(name, words) {
			continue
		}
		if l := utf8.RuneCountInString(m.keys[i]); l > bestLen {
			best, bestLen = i, l
		}
	}
	if best < 0 {
		return Result{Kind: KindNone}
	}
	return Result{Ref: m.refs[best], Kind: KindSubstring, Score: bestLen}
}

// tokenize splits a folded key into words. '+' and '#' are word runes so
// C++ and C# stay distinct from C.
func tokenize(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})
}

// containsRun reports whether sub appears as a contiguous run in words.
func containsRun(words, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(words) {
		return false
	}
	for i := 0; i+len(sub) <= len(words); i++ {
		match := true
		for j, w := range sub {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (m *Matcher) fuzzy(key string, candidates []int) Result {
	data := make([]string, len(candidates))
	for j, i := range candidates {
		data[j] = m.keys[i]
	}

	best := -1
	bestScore := 0
	for _, match := range fuzzy.Find(key, data) {
		if match.Score < m.minScore {
			continue
		}
		if best < 0 || match.Score > bestScore || (match.Score == bestScore && match.Index < best) {
			best, bestScore = match.Index, match.Score
		}
	}
	if best < 0 {
		return Result{Kind: KindNone}
	}
	return Result{Ref: m.refs[candidates[best]], Kind: KindFuzzy, Score: bestScore}
}
