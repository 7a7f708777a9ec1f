// Package mapping holds the category taxonomy of one team: ordered
// categories, each with ordered subcategory names.
package mapping

import (
	"strings"

	"golang.org/x/text/cases"
)

// Uncategorized is the reserved category for answers no subcategory matches.
const Uncategorized = "Uncategorized"

// Ref identifies one (category, subcategory) pair.
type Ref struct {
	Category    string
	Subcategory string
}

// String renders the pair as "Category/Subcategory".
func (r Ref) String() string {
	return r.Category + "/" + r.Subcategory
}

// IsUncategorized reports whether r lives in the reserved bucket.
func (r Ref) IsUncategorized() bool {
	return r.Category == Uncategorized
}

// Category is a named, ordered group of subcategories.
type Category struct {
	Name          string
	Subcategories []string
}

// Mapping is the read-only taxonomy of a single team.
type Mapping struct {
	team       string
	categories []Category
	refs       []Ref
	index      map[string]int // Key(subcategory) -> position in refs
	categoryAt map[string]int // Key(category) -> position in categories
}

// Team returns the team the mapping was loaded for.
func (m *Mapping) Team() string { return m.team }

// Categories returns the categories in file order.
func (m *Mapping) Categories() []Category {
	out := make([]Category, len(m.categories))
	for i, c := range m.categories {
		out[i] = Category{Name: c.Name, Subcategories: append([]string(nil), c.Subcategories...)}
	}
	return out
}

// Category finds a category by case-insensitive name.
func (m *Mapping) Category(name string) (Category, bool) {
	i, ok := m.categoryAt[Key(name)]
	if !ok {
		return Category{}, false
	}
	c := m.categories[i]
	return Category{Name: c.Name, Subcategories: append([]string(nil), c.Subcategories...)}, true
}

// Refs returns every pair in mapping order.
func (m *Mapping) Refs() []Ref {
	return append([]Ref(nil), m.refs...)
}

// Len returns the number of subcategories.
func (m *Mapping) Len() int { return len(m.refs) }

// Lookup finds the pair whose subcategory equals name, ignoring case and
// repeated whitespace.
func (m *Mapping) Lookup(name string) (Ref, bool) {
	i, ok := m.index[Key(name)]
	if !ok {
		return Ref{}, false
	}
	return m.refs[i], true
}

// Index returns the mapping order position of ref, or -1.
func (m *Mapping) Index(ref Ref) int {
	i, ok := m.index[Key(ref.Subcategory)]
	if !ok || m.refs[i].Category != ref.Category {
		return -1
	}
	return i
}

// Key folds s for case-insensitive comparison: Unicode case folding with
// runs of whitespace collapsed to one space.
func Key(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// CleanName drops the examples suffix of a subcategory ("AWS (EC2, S3)"
// becomes "AWS") and trims the result.
func CleanName(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

type rawCategory struct {
	name string
	subs []string
}

// build validates the decoded categories of team and freezes them.
func build(team string, raw []rawCategory) (*Mapping, error) {
	if len(raw) == 0 {
		return nil, invalid(team, "team has no categories")
	}

	m := &Mapping{
		team:       team,
		index:      make(map[string]int),
		categoryAt: make(map[string]int),
	}
	owner := make(map[string]string)

	for _, rc := range raw {
		name := strings.TrimSpace(rc.name)
		path := team + "." + rc.name
		if name == "" {
			return nil, invalid(path, "empty category name")
		}
		if Key(name) == Key(Uncategorized) {
			return nil, invalid(path, "category name %q is reserved", Uncategorized)
		}
		if _, dup := m.categoryAt[Key(name)]; dup {
			return nil, invalid(path, "duplicate category %q", name)
		}

		cat := Category{Name: name}
		for _, s := range rc.subs {
			sub := CleanName(s)
			if sub == "" {
				return nil, invalid(path, "empty subcategory name %q", s)
			}
			k := Key(sub)
			if prev, seen := owner[k]; seen {
				if prev == name {
					return nil, invalid(path, "subcategory %q listed twice", sub)
				}
				return nil, invalid(path, "ambiguous subcategory %q: also listed under %q", sub, prev)
			}
			owner[k] = name
			m.index[k] = len(m.refs)
			m.refs = append(m.refs, Ref{Category: name, Subcategory: sub})
			cat.Subcategories = append(cat.Subcategories, sub)
		}

		m.categoryAt[Key(name)] = len(m.categories)
		m.categories = append(m.categories, cat)
	}
	return m, nil
}
