// Package surveygen writes synthetic survey exports shaped like the real
// chapter survey, for demos and end-to-end tests.
package surveygen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/devops-chapter/skills-analysis/internal/config"
	"github.com/devops-chapter/skills-analysis/internal/domain/bio"
	"github.com/devops-chapter/skills-analysis/internal/domain/levels"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
)

// Defaults.
const (
	defaultRespondents = 25
	defaultNoise       = 0.2

	// Chance that a level question is left blank.
	blankLevel = 0.15
	// Upper bound of skills picked for one list answer.
	maxPicks = 3
)

// idSpace namespaces respondent ids so they stay stable across runs.
var idSpace = uuid.MustParse("5b0f7a52-8a55-4d3e-9f59-9d1f0c7a6b21")

var (
	classifications = []string{"Associate", "Engineer", "Senior Engineer", "Staff Engineer", "Principal"}
	offMapping      = []string{"Kubernetes", "Rust", "Mainframe", "Excel", "Ansible Tower"}
	answerWords     = []string{"curious", "platform engineer", "automation", "debugging", "legacy systems", "a migration", "helping others"}
)

// Survey is a generated export.
type Survey struct {
	Header []string
	Rows   [][]string
}

// Generator builds surveys for one team mapping.
type Generator struct {
	mapping     *mapping.Mapping
	respondents int
	seed        int64
	noise       float64
}

// New creates a generator for mp.
func New(mp *mapping.Mapping, opts ...Option) *Generator {
	g := &Generator{
		mapping:     mp,
		respondents: defaultRespondents,
		seed:        1,
		noise:       defaultNoise,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Header returns the survey header in the default survey wording.
func (g *Generator) Header() []string {
	cols := config.New().Columns
	header := []string{cols.Name, cols.Classification, cols.Team}
	header = append(header, bio.Questions...)

	for _, c := range g.mapping.Categories() {
		for _, sub := range c.Subcategories {
			header = append(header, CurrentLevelHeader(c.Name, sub))
		}
	}
	for _, c := range g.mapping.Categories() {
		for _, sub := range c.Subcategories {
			header = append(header, TeamNeedHeader(c.Name, sub))
		}
	}
	for _, c := range g.mapping.Categories() {
		header = append(header, CurrentTextHeader(c.Name), FutureUseHeader(c.Name), FutureLearnHeader(c.Name))
	}
	return header
}

// Generate builds the survey. It is deterministic for a given seed.
func (g *Generator) Generate(ctx context.Context) (*Survey, error) {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // synthetic data, not security sensitive
	s := &Survey{Header: g.Header()}

	for i := 0; i < g.respondents; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate respondent %d: %w", i, err)
		}
		s.Rows = append(s.Rows, g.row(rng, i))
	}
	return s, nil
}

func (g *Generator) row(rng *rand.Rand, i int) []string {
	id := uuid.NewSHA1(idSpace, []byte(g.mapping.Team()+"/"+strconv.FormatInt(g.seed, 10)+"/"+strconv.Itoa(i)))
	row := []string{
		"Respondent " + id.String()[:8],
		classifications[rng.Intn(len(classifications))],
		g.mapping.Team(),
	}
	for range bio.Questions {
		row = append(row, answerWords[rng.Intn(len(answerWords))])
	}

	// Current level, then team need, for every pair.
	for pass := 0; pass < 2; pass++ {
		for _, c := range g.mapping.Categories() {
			for range c.Subcategories {
				row = append(row, level(rng))
			}
		}
	}
	for _, c := range g.mapping.Categories() {
		row = append(row, g.pick(rng, c), g.pick(rng, c), g.pick(rng, c))
	}
	return row
}

func level(rng *rand.Rand) string {
	if rng.Float64() < blankLevel {
		return ""
	}
	return levels.Level(rng.Intn(int(levels.Expert) + 1)).String()
}

// pick answers a list question: a few subcategories of c, sometimes in
// another case, sometimes with a skill the mapping does not know.
func (g *Generator) pick(rng *rand.Rand, c mapping.Category) string {
	var picks []string
	if len(c.Subcategories) > 0 {
		n := rng.Intn(maxPicks + 1)
		for _, idx := range rng.Perm(len(c.Subcategories))[:min(n, len(c.Subcategories))] {
			s := c.Subcategories[idx]
			if rng.Intn(4) == 0 {
				s = strings.ToLower(s)
			}
			picks = append(picks, s)
		}
	}
	if rng.Float64() < g.noise {
		picks = append(picks, offMapping[rng.Intn(len(offMapping))])
	}
	return strings.Join(picks, "; ")
}

// WriteCSV writes the survey as a CSV export.
func (s *Survey) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// CurrentLevelHeader is the header of the current level question of a pair.
func CurrentLevelHeader(category, subcategory string) string {
	return "How would you describe your current experience or comfort level with " + category + "?." + subcategory
}

// TeamNeedHeader is the header of the team need question of a pair.
func TeamNeedHeader(category, subcategory string) string {
	return "Based on what you know today, what level of " + category +
		" skills do you think your team will need over the next 12 months?." + subcategory
}

// CurrentTextHeader is the header of a category's free-text current skills question.
func CurrentTextHeader(category string) string {
	return "What other " + category + " skills do you have today?"
}

// FutureUseHeader is the header of a category's "would like to use" question.
func FutureUseHeader(category string) string {
	return "Which " + category + " skills would you like to use in your day-to-day work, or feel are underused?"
}

// FutureLearnHeader is the header of a category's "would like to learn" question.
func FutureLearnHeader(category string) string {
	return "Are there " + category + " skills you are interested in learning or continuing to develop?"
}
