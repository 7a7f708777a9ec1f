// Package normalize turns survey rows into respondents with skill claims.
//
// The header is planned once: identity columns are located by name and
// question columns by pattern. Each row is then read against that plan.
// Answers that match no subcategory are kept under the Uncategorized
// category; nothing a respondent wrote is dropped.
package normalize

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devops-chapter/skills-analysis/internal/domain/dedupe"
	"github.com/devops-chapter/skills-analysis/internal/domain/levels"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/matching"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
)

// Columns describes the survey header. Identity fields are exact header
// names; question fields are patterns whose first group is the category and,
// for the level questions, whose second group is the subcategory.
type Columns struct {
	Name           string
	Classification string
	Team           string
	Separators     string

	CurrentLevel string
	TeamNeed     string
	CurrentText  string
	FutureUse    string
	FutureLearn  string
}

// Role is what a header column is used for.
type Role string

const (
	RoleName           Role = "name"
	RoleClassification Role = "classification"
	RoleTeam           Role = "team"
	RoleCurrentLevel   Role = "current_level"
	RoleTeamNeed       Role = "team_need"
	RoleCurrentText    Role = "current_text"
	RoleFutureUse      Role = "future_use"
	RoleFutureLearn    Role = "future_learn"
	RoleOther          Role = "other"
)

type column struct {
	role     Role
	category string      // header category, list and level questions
	ref      mapping.Ref // resolved pair, level questions
	match    matching.Kind
}

type pattern struct {
	role Role
	re   *regexp.Regexp
}

// Normalizer reads rows against a planned header.
type Normalizer struct {
	header  []string
	columns []column
	matcher *matching.Matcher
	seps    string
	dedupe  dedupe.Deduper

	nameIdx, classIdx, teamIdx int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDeduper skips rows whose respondent identifier was already seen.
func WithDeduper(d dedupe.Deduper) Option {
	return func(n *Normalizer) {
		n.dedupe = d
	}
}

// New plans header. Header level problems are returned as warnings on
// line 1; only invalid patterns are errors.
func New(header []string, mp *mapping.Mapping, m *matching.Matcher, cols Columns, opts ...Option) (*Normalizer, []Warning, error) {
	patterns, err := compile(cols)
	if err != nil {
		return nil, nil, err
	}

	n := &Normalizer{
		header:   header,
		columns:  make([]column, len(header)),
		matcher:  m,
		seps:     cols.Separators,
		nameIdx:  -1,
		classIdx: -1,
		teamIdx:  -1,
	}
	if n.seps == "" {
		n.seps = ";"
	}
	for _, opt := range opts {
		opt(n)
	}

	var warnings []Warning
	for i, h := range header {
		col := column{role: RoleOther}
		switch {
		case h == cols.Name && n.nameIdx < 0:
			col.role, n.nameIdx = RoleName, i
		case h == cols.Classification && n.classIdx < 0:
			col.role, n.classIdx = RoleClassification, i
		case h == cols.Team && n.teamIdx < 0:
			col.role, n.teamIdx = RoleTeam, i
		default:
			for _, p := range patterns {
				groups := p.re.FindStringSubmatch(h)
				if groups == nil {
					continue
				}
				col.role = p.role
				if len(groups) > 1 {
					col.category = strings.TrimSpace(groups[1])
				}
				if p.role == RoleCurrentLevel || p.role == RoleTeamNeed {
					var w *Warning
					col.ref, col.match, w = n.resolveHeader(groups[2], col.category)
					if w != nil {
						warnings = append(warnings, *w)
					}
				}
				break
			}
		}
		n.columns[i] = col
	}

	if n.nameIdx < 0 {
		warnings = append(warnings, Warnf(1, WarnUnmappedColumn,
			"name column %q not found; respondents are identified by line", cols.Name))
	}
	return n, warnings, nil
}

func compile(cols Columns) ([]pattern, error) {
	specs := []struct {
		role   Role
		expr   string
		groups int
	}{
		{RoleCurrentLevel, cols.CurrentLevel, 2},
		{RoleTeamNeed, cols.TeamNeed, 2},
		{RoleCurrentText, cols.CurrentText, 0},
		{RoleFutureUse, cols.FutureUse, 1},
		{RoleFutureLearn, cols.FutureLearn, 1},
	}
	var out []pattern
	for _, s := range specs {
		if s.expr == "" {
			continue
		}
		re, err := regexp.Compile(s.expr)
		if err != nil {
			return nil, fmt.Errorf("%s pattern: %w", s.role, err)
		}
		if re.NumSubexp() < s.groups {
			return nil, fmt.Errorf("%s pattern: need %d capture groups, have %d", s.role, s.groups, re.NumSubexp())
		}
		out = append(out, pattern{role: s.role, re: re})
	}
	return out, nil
}

func (n *Normalizer) resolveHeader(rawSub, category string) (mapping.Ref, matching.Kind, *Warning) {
	sub := mapping.CleanName(rawSub)
	res := n.matcher.Match(sub, category)
	if res.Matched() {
		return res.Ref, res.Kind, nil
	}
	w := Warnf(1, WarnUnmappedColumn, "subcategory %q (category %q) is not in the mapping; recorded as %s",
		sub, category, mapping.Uncategorized)
	return mapping.Ref{Category: mapping.Uncategorized, Subcategory: sub}, matching.KindNone, &w
}

// Roles counts the planned columns per role.
func (n *Normalizer) Roles() map[Role]int {
	out := make(map[Role]int)
	for _, c := range n.columns {
		out[c.role]++
	}
	return out
}

// Header returns the planned header.
func (n *Normalizer) Header() []string { return n.header }

// Normalize reads one data row. ok is false when the row is skipped; the
// returned warnings say why.
func (n *Normalizer) Normalize(ctx context.Context, line int, cells []string) (model.Respondent, []Warning, bool) {
	if len(cells) != len(n.header) {
		return model.Respondent{}, []Warning{Warnf(line, WarnColumnMismatch,
			"expected %d cells, got %d; row skipped", len(n.header), len(cells))}, false
	}

	r := model.Respondent{
		Line:    line,
		Answers: make(map[string]string, len(cells)),
	}
	for i, h := range n.header {
		if _, dup := r.Answers[h]; !dup {
			r.Answers[h] = cells[i]
		}
	}
	r.ID = n.cell(cells, n.nameIdx)
	if r.ID == "" {
		r.ID = "respondent-" + strconv.Itoa(line)
	}
	r.Classification = n.cell(cells, n.classIdx)
	r.Team = n.cell(cells, n.teamIdx)

	if n.dedupe != nil {
		if first, seen := n.dedupe.SeenAndRecord(ctx, r.ID, line); seen {
			return model.Respondent{}, []Warning{Warnf(line, WarnDuplicateRespondent,
				"respondent %q already answered on line %d; row skipped", r.ID, first)}, false
		}
	}

	var warnings []Warning
	seen := make(map[claimKey]bool)
	add := func(c model.Claim) {
		k := claimKey{kind: c.Kind, selected: c.Selected, category: c.Ref.Category, key: mapping.Key(c.Ref.Subcategory)}
		if seen[k] {
			return
		}
		seen[k] = true
		r.Claims = append(r.Claims, c)
	}

	for i, col := range n.columns {
		cell := cells[i]
		switch col.role {
		case RoleCurrentLevel, RoleTeamNeed:
			lvl, err := levels.Parse(cell)
			if err != nil {
				warnings = append(warnings, Warnf(line, WarnUnknownLevel,
					"%v for %s; treated as N/A", err, col.ref))
			}
			kind := model.ClaimCurrent
			if col.role == RoleTeamNeed {
				kind = model.ClaimTeamNeed
			}
			add(model.Claim{Ref: col.ref, Kind: kind, Level: lvl, Raw: cell, Match: col.match})

		case RoleCurrentText, RoleFutureUse, RoleFutureLearn:
			kind := model.ClaimCurrent
			switch col.role {
			case RoleFutureUse:
				kind = model.ClaimFutureUse
			case RoleFutureLearn:
				kind = model.ClaimFutureLearn
			}
			for _, token := range n.split(cell) {
				res := n.matcher.Match(token, col.category)
				ref := res.Ref
				if !res.Matched() {
					ref = mapping.Ref{Category: mapping.Uncategorized, Subcategory: token}
					warnings = append(warnings, Warnf(line, WarnUnmatchedSkill,
						"%q under %q matches no subcategory; recorded as %s", token, col.category, mapping.Uncategorized))
				}
				add(model.Claim{Ref: ref, Kind: kind, Level: levels.NotApplicable, Raw: token, Match: res.Kind, Selected: true})
			}
		}
	}
	return r, warnings, true
}

type claimKey struct {
	kind     model.ClaimKind
	selected bool
	category string
	key      string
}

func (n *Normalizer) cell(cells []string, idx int) string {
	if idx < 0 {
		return ""
	}
	return cells[idx]
}

// split breaks a list answer into cleaned, non-empty tokens.
func (n *Normalizer) split(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return strings.ContainsRune(n.seps, r)
	})
	out := parts[:0]
	for _, p := range parts {
		if p = mapping.CleanName(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
