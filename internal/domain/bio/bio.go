// Package bio fills a mad-libs sentence per respondent.
//
// Templates are text/template sources with these functions:
//
//	skill N            the respondent's N-th top skill (1-based)
//	skills             every top skill, joined into a phrase
//	field "Header" [d] the answer under Header; d, then "N/A", when blank
//
// Data fields are .Name, .Team and .Classification. Missing skills are
// filled with a placeholder phrase instead of failing.
package bio

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrTemplate = errors.New("invalid bio template")
	ErrRender   = errors.New("render bio failed")
)

// Missing is written for survey fields left blank.
const Missing = "N/A"

// DefaultTemplate is the mad-libs sentence of the chapter survey followed by
// the top skills clause.
const DefaultTemplate = `Hi, my name is {{field "Your Name" .Name}}, and I am on the {{field "What team are you on?" .Team}} Team. ` +
	`I am a {{field "Adjective (how would you describe yourself?)"}} {{field "Role/Title (Your role or what best describes your work)"}} ` +
	`who loves working with {{field "Tool/System/Approach (What do you love working with?)"}}. ` +
	`My superpower is {{field "Skill or Strength (What’s something you're great at?)"}}, ` +
	`and my biggest challenge is {{field "Biggest Challenge or Growth Area (What do you find tricky?)"}}. ` +
	`In the past, I have {{field "Notable Experience or Achievement (Something cool you’ve done)"}}, ` +
	`and my favorite part of my work is {{field "Favorite Part of Work (What makes your job fun, meaningful, or energizing)"}}! ` +
	`My top skills are {{skills}}.`

// Questions are the free-text survey headers DefaultTemplate reads, in
// sentence order.
var Questions = []string{
	"Adjective (how would you describe yourself?)",
	"Role/Title (Your role or what best describes your work)",
	"Tool/System/Approach (What do you love working with?)",
	"Skill or Strength (What’s something you're great at?)",
	"Biggest Challenge or Growth Area (What do you find tricky?)",
	"Notable Experience or Achievement (Something cool you’ve done)",
	"Favorite Part of Work (What makes your job fun, meaningful, or energizing)",
}

// Bio is the generated text of one respondent.
type Bio struct {
	Name string
	Text string
}

// Generator renders bios from one template.
type Generator struct {
	mapping     *mapping.Mapping
	source      string
	top         int
	placeholder string
	tmpl        *template.Template
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemplate sets the template source. Empty keeps DefaultTemplate.
func WithTemplate(src string) Option {
	return func(g *Generator) {
		if src != "" {
			g.source = src
		}
	}
}

// WithTopSkills sets how many skills a bio mentions.
func WithTopSkills(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.top = n
		}
	}
}

// WithPlaceholder sets the phrase used for missing skills.
func WithPlaceholder(p string) Option {
	return func(g *Generator) {
		if p != "" {
			g.placeholder = p
		}
	}
}

// New parses the template. Parse failures wrap ErrTemplate.
func New(mp *mapping.Mapping, opts ...Option) (*Generator, error) {
	g := &Generator{
		mapping:     mp,
		source:      DefaultTemplate,
		top:         3,
		placeholder: "a mystery skill",
	}
	for _, opt := range opts {
		opt(g)
	}

	// Parse-time stubs; Generate binds the real functions per respondent.
	tmpl, err := template.New("bio").Funcs(g.funcs(nil, nil)).Parse(g.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	g.tmpl = tmpl
	return g, nil
}

type data struct {
	Name           string
	Team           string
	Classification string
}

// Generate renders the bio of r.
func (g *Generator) Generate(r model.Respondent) (Bio, error) {
	tmpl, err := g.tmpl.Clone()
	if err != nil {
		return Bio{}, fmt.Errorf("%w: %w", ErrRender, err)
	}
	tmpl.Funcs(g.funcs(&r, g.TopSkills(r)))

	var buf bytes.Buffer
	d := data{Name: r.ID, Team: r.Team, Classification: r.Classification}
	if err := tmpl.Execute(&buf, d); err != nil {
		return Bio{}, fmt.Errorf("%w: %s: %w", ErrRender, r.ID, err)
	}
	return Bio{Name: r.ID, Text: buf.String()}, nil
}

func (g *Generator) funcs(r *model.Respondent, top []string) template.FuncMap {
	return template.FuncMap{
		"skill": func(n int) string {
			if n < 1 || n > g.top || n > len(top) {
				return g.placeholder
			}
			return top[n-1]
		},
		"skills": func() string {
			return g.phrase(top)
		},
		"field": func(header string, fallback ...string) string {
			if r != nil {
				if v := strings.TrimSpace(r.Answer(header)); v != "" {
					return v
				}
			}
			for _, f := range fallback {
				if f != "" {
					return f
				}
			}
			return Missing
		},
	}
}

// phrase joins exactly top skills, padding with the placeholder:
// "AWS, Terraform and a mystery skill".
func (g *Generator) phrase(top []string) string {
	n := g.top
	if n == 0 {
		return g.placeholder
	}
	items := make([]string, n)
	for i := range items {
		if i < len(top) {
			items[i] = top[i]
		} else {
			items[i] = g.placeholder
		}
	}
	if n == 1 {
		return items[0]
	}
	return strings.Join(items[:n-1], ", ") + " and " + items[n-1]
}

// TopSkills returns up to the configured number of mapped current skills of
// r: rated levels first, highest first, then free-text selections; ties keep
// mapping order.
func (g *Generator) TopSkills(r model.Respondent) []string {
	type candidate struct {
		ref   mapping.Ref
		level int
		index int
	}

	best := make(map[mapping.Ref]candidate)
	for _, c := range r.ClaimsOf(model.ClaimCurrent) {
		if c.Ref.IsUncategorized() || !(c.Selected || c.Level.Claims()) {
			continue
		}
		cand := candidate{ref: c.Ref, level: int(c.Level), index: g.mapping.Index(c.Ref)}
		if prev, ok := best[c.Ref]; !ok || cand.level > prev.level {
			best[c.Ref] = cand
		}
	}

	list := make([]candidate, 0, len(best))
	for _, c := range best {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].level != list[j].level {
			return list[i].level > list[j].level
		}
		return list[i].index < list[j].index
	})

	if len(list) > g.top {
		list = list[:g.top]
	}
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ref.Subcategory
	}
	return out
}
