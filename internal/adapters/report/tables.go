package report

import (
	"strconv"

	"github.com/devops-chapter/skills-analysis/internal/domain/aggregate"
	"github.com/devops-chapter/skills-analysis/internal/domain/bio"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
)

// Row types of aggregate tables.
const (
	RowEntry    = "entry"
	RowSubtotal = "subtotal"
	RowTotal    = "total"
)

// CurrentTable renders a current skills report.
func CurrentTable(r *aggregate.Report) Table {
	t := Table{Header: []string{"Row Type", "Category", "SubCategory", "Respondents", "Avg Skill Level", "Avg Team Need"}}
	for _, s := range r.Subtotals {
		for _, e := range r.Entries {
			if e.Category != s.Category {
				continue
			}
			lvl, lvlOK := e.AvgLevel()
			need, needOK := e.AvgNeed()
			t.Rows = append(t.Rows, []string{
				RowEntry, e.Category, e.Subcategory, strconv.Itoa(e.Count),
				average(lvl, lvlOK), average(need, needOK),
			})
		}
		t.Rows = append(t.Rows, []string{RowSubtotal, s.Category, "", strconv.Itoa(s.Count), "", ""})
	}
	t.Rows = append(t.Rows, []string{RowTotal, "", "", strconv.Itoa(r.Respondents), "", ""})
	return t
}

// FutureTable renders a future skills report.
func FutureTable(r *aggregate.Report) Table {
	t := Table{Header: []string{"Row Type", "Category", "SubCategory", "Respondents", "Use", "Learn"}}
	var use, learn int
	for _, s := range r.Subtotals {
		for _, e := range r.Entries {
			if e.Category != s.Category {
				continue
			}
			t.Rows = append(t.Rows, []string{
				RowEntry, e.Category, e.Subcategory, strconv.Itoa(e.Count),
				strconv.Itoa(e.Use), strconv.Itoa(e.Learn),
			})
		}
		t.Rows = append(t.Rows, []string{
			RowSubtotal, s.Category, "", strconv.Itoa(s.Count), strconv.Itoa(s.Use), strconv.Itoa(s.Learn),
		})
		use += s.Use
		learn += s.Learn
	}
	t.Rows = append(t.Rows, []string{
		RowTotal, "", "", strconv.Itoa(r.Respondents), strconv.Itoa(use), strconv.Itoa(learn),
	})
	return t
}

// BiosTable renders mad-libs bios.
func BiosTable(bios []bio.Bio) Table {
	t := Table{Header: []string{"FullName", "Mad Libs"}}
	for _, b := range bios {
		t.Rows = append(t.Rows, []string{b.Name, b.Text})
	}
	return t
}

// CurrentDetailTable lists every level answer of every respondent, one row
// per respondent and subcategory.
func CurrentDetailTable(rs []model.Respondent) Table {
	t := Table{Header: []string{
		"Name", "Classification", "Team", "Category", "SubCategory",
		"Skill Level Value", "Skill Level Desc", "Team Need Value", "Team Need Desc",
	}}
	for _, r := range rs {
		type pair struct{ current, need *model.Claim }
		var order []string
		pairs := make(map[string]*pair)
		for i := range r.Claims {
			c := &r.Claims[i]
			if c.Selected || (c.Kind != model.ClaimCurrent && c.Kind != model.ClaimTeamNeed) {
				continue
			}
			key := c.Ref.String()
			p, ok := pairs[key]
			if !ok {
				p = &pair{}
				pairs[key] = p
				order = append(order, key)
			}
			if c.Kind == model.ClaimCurrent {
				p.current = c
			} else {
				p.need = c
			}
		}
		for _, key := range order {
			p := pairs[key]
			ref := p.current
			if ref == nil {
				ref = p.need
			}
			row := []string{r.ID, r.Classification, r.Team, ref.Ref.Category, ref.Ref.Subcategory}
			row = append(row, levelCells(p.current)...)
			row = append(row, levelCells(p.need)...)
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// FutureDetailTable lists every future selection of every respondent with
// 1/0 use and learn flags.
func FutureDetailTable(rs []model.Respondent) Table {
	t := Table{Header: []string{"Name", "Classification", "Team", "Category", "SubCategory", "Use", "Learn"}}
	for _, r := range rs {
		type flags struct{ use, learn bool }
		var order []*model.Claim
		seen := make(map[string]*flags)
		for _, kind := range []model.ClaimKind{model.ClaimFutureUse, model.ClaimFutureLearn} {
			for i := range r.Claims {
				c := &r.Claims[i]
				if c.Kind != kind {
					continue
				}
				key := c.Ref.String()
				f, ok := seen[key]
				if !ok {
					f = &flags{}
					seen[key] = f
					order = append(order, c)
				}
				if kind == model.ClaimFutureUse {
					f.use = true
				} else {
					f.learn = true
				}
			}
		}
		for _, c := range order {
			f := seen[c.Ref.String()]
			t.Rows = append(t.Rows, []string{
				r.ID, r.Classification, r.Team, c.Ref.Category, c.Ref.Subcategory, flag(f.use), flag(f.learn),
			})
		}
	}
	return t
}

func levelCells(c *model.Claim) []string {
	if c == nil {
		return []string{"N/A", "N/A"}
	}
	return []string{c.Level.Value(), c.Level.String()}
}

func average(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
