// Package aggregate tallies respondents per (category, subcategory).
//
// Reports list every pair of the mapping, including zero counts, in mapping
// order, followed by the Uncategorized pairs sorted by name. A respondent
// counts at most once per pair. Accumulation is commutative, so the order
// respondents are added in never changes a report.
package aggregate

import (
	"sort"

	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
)

// Variant selects which answers a report tallies.
type Variant string

const (
	// Current counts rated levels of Novice and above and free-text
	// selections. Team need answers only feed the need averages.
	Current Variant = "current"

	// Future counts "would like to use" and "would like to learn"
	// selections, with a breakdown of each.
	Future Variant = "future"
)

// Entry is the tally of one pair.
type Entry struct {
	Category    string
	Subcategory string

	// Count is the number of respondents counted for the pair.
	Count int

	// Current variant.
	LevelSum, LevelRated int
	NeedSum, NeedRated   int

	// Future variant.
	Use, Learn int
}

// Uncategorized reports whether the entry holds unmatched answers.
func (e Entry) Uncategorized() bool { return e.Category == mapping.Uncategorized }

// AvgLevel is the mean rated skill level; ok is false when nobody rated it.
func (e Entry) AvgLevel() (avg float64, ok bool) {
	if e.LevelRated == 0 {
		return 0, false
	}
	return float64(e.LevelSum) / float64(e.LevelRated), true
}

// AvgNeed is the mean rated team need; ok is false when nobody rated it.
func (e Entry) AvgNeed() (avg float64, ok bool) {
	if e.NeedRated == 0 {
		return 0, false
	}
	return float64(e.NeedSum) / float64(e.NeedRated), true
}

// Subtotal sums the entries of one category.
type Subtotal struct {
	Category   string
	Count      int
	Use, Learn int
}

// Report is a finalized tally.
type Report struct {
	Variant Variant
	Team    string

	Entries   []Entry
	Subtotals []Subtotal

	// Respondents is the grand total: the number of respondents added.
	Respondents int

	// Selections is the sum of every entry count.
	Selections int
}

// Entry finds the entry of a pair.
func (r *Report) Entry(category, subcategory string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Category == category && mapping.Key(e.Subcategory) == mapping.Key(subcategory) {
			return e, true
		}
	}
	return Entry{}, false
}

// Subtotal finds the subtotal of a category.
func (r *Report) Subtotal(category string) (Subtotal, bool) {
	for _, s := range r.Subtotals {
		if s.Category == category {
			return s, true
		}
	}
	return Subtotal{}, false
}

type tally struct {
	count    int
	levelSum int
	levelN   int
	needSum  int
	needN    int
	use      int
	learn    int
	display  string // smallest spelling, Uncategorized only
}

// Builder accumulates respondents into a Report.
type Builder struct {
	mapping     *mapping.Mapping
	variant     Variant
	mapped      []tally
	unmapped    map[string]*tally
	respondents int
}

// NewBuilder creates an empty builder for mp.
func NewBuilder(mp *mapping.Mapping, variant Variant) *Builder {
	return &Builder{
		mapping:  mp,
		variant:  variant,
		mapped:   make([]tally, mp.Len()),
		unmapped: make(map[string]*tally),
	}
}

// Add tallies one respondent.
func (b *Builder) Add(r model.Respondent) {
	b.respondents++

	counted := make(map[*tally]bool)
	use := make(map[*tally]bool)
	learn := make(map[*tally]bool)

	for _, c := range r.Claims {
		if !b.selects(c.Kind) {
			continue
		}
		t := b.tally(c.Ref)
		switch b.variant {
		case Current:
			switch c.Kind {
			case model.ClaimCurrent:
				if c.Level.Rated() {
					t.levelSum += int(c.Level)
					t.levelN++
				}
				if c.Selected || c.Level.Claims() {
					counted[t] = true
				}
			case model.ClaimTeamNeed:
				if c.Level.Rated() {
					t.needSum += int(c.Level)
					t.needN++
				}
			}
		case Future:
			switch c.Kind {
			case model.ClaimFutureUse:
				counted[t], use[t] = true, true
			case model.ClaimFutureLearn:
				counted[t], learn[t] = true, true
			}
		}
	}

	for t := range counted {
		t.count++
	}
	for t := range use {
		t.use++
	}
	for t := range learn {
		t.learn++
	}
}

func (b *Builder) selects(kind model.ClaimKind) bool {
	switch b.variant {
	case Current:
		return kind == model.ClaimCurrent || kind == model.ClaimTeamNeed
	case Future:
		return kind == model.ClaimFutureUse || kind == model.ClaimFutureLearn
	}
	return false
}

// tally returns the accumulator of ref, creating Uncategorized ones on demand.
func (b *Builder) tally(ref mapping.Ref) *tally {
	if !ref.IsUncategorized() {
		if i := b.mapping.Index(ref); i >= 0 {
			return &b.mapped[i]
		}
	}
	key := mapping.Key(ref.Subcategory)
	t, ok := b.unmapped[key]
	if !ok {
		t = &tally{display: ref.Subcategory}
		b.unmapped[key] = t
	} else if ref.Subcategory < t.display {
		t.display = ref.Subcategory
	}
	return t
}

// Report finalizes the current state. The builder stays usable.
func (b *Builder) Report() *Report {
	r := &Report{
		Variant:     b.variant,
		Team:        b.mapping.Team(),
		Respondents: b.respondents,
	}

	refs := b.mapping.Refs()
	subtotal := -1
	for i, ref := range refs {
		if subtotal < 0 || r.Subtotals[subtotal].Category != ref.Category {
			r.Subtotals = append(r.Subtotals, Subtotal{Category: ref.Category})
			subtotal = len(r.Subtotals) - 1
		}
		r.add(ref, b.mapped[i], subtotal)
	}

	// Categories without subcategories still get a subtotal row.
	for _, c := range b.mapping.Categories() {
		if len(c.Subcategories) == 0 {
			r.Subtotals = append(r.Subtotals, Subtotal{Category: c.Name})
		}
	}
	r.sortSubtotals(b.mapping)

	if len(b.unmapped) > 0 {
		keys := make([]string, 0, len(b.unmapped))
		for k := range b.unmapped {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		r.Subtotals = append(r.Subtotals, Subtotal{Category: mapping.Uncategorized})
		subtotal = len(r.Subtotals) - 1
		for _, k := range keys {
			t := b.unmapped[k]
			r.add(mapping.Ref{Category: mapping.Uncategorized, Subcategory: t.display}, *t, subtotal)
		}
	}
	return r
}

func (r *Report) add(ref mapping.Ref, t tally, subtotal int) {
	r.Entries = append(r.Entries, Entry{
		Category:    ref.Category,
		Subcategory: ref.Subcategory,
		Count:       t.count,
		LevelSum:    t.levelSum,
		LevelRated:  t.levelN,
		NeedSum:     t.needSum,
		NeedRated:   t.needN,
		Use:         t.use,
		Learn:       t.learn,
	})
	s := &r.Subtotals[subtotal]
	s.Count += t.count
	s.Use += t.use
	s.Learn += t.learn
	r.Selections += t.count
}

// sortSubtotals puts mapped categories back in mapping order.
func (r *Report) sortSubtotals(mp *mapping.Mapping) {
	order := make(map[string]int)
	for i, c := range mp.Categories() {
		order[c.Name] = i
	}
	sort.SliceStable(r.Subtotals, func(i, j int) bool {
		return order[r.Subtotals[i].Category] < order[r.Subtotals[j].Category]
	})
}
