// Package model contains domain models passed between layers.
package model

import (
	"github.com/devops-chapter/skills-analysis/internal/domain/levels"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/matching"
)

// ClaimKind tells which survey question a claim came from.
type ClaimKind string

const (
	ClaimCurrent     ClaimKind = "current"      // current skill level or free-text selection
	ClaimTeamNeed    ClaimKind = "team_need"    // level the team will need
	ClaimFutureUse   ClaimKind = "future_use"   // would like to use day to day
	ClaimFutureLearn ClaimKind = "future_learn" // would like to learn
)

// Claim is one normalized skill statement of a respondent.
type Claim struct {
	Ref   mapping.Ref
	Kind  ClaimKind
	Level levels.Level // NotApplicable for selections
	Raw   string       // cell text; the token for list answers
	Match matching.Kind

	// Selected is set for claims read from a list answer rather than a
	// level question.
	Selected bool
}

// Respondent is one survey row after normalization.
type Respondent struct {
	ID             string
	Line           int
	Classification string
	Team           string

	// Answers maps every header to the cleaned cell text.
	Answers map[string]string

	Claims []Claim
}

// Answer returns the cleaned cell of header, or "" when absent.
func (r *Respondent) Answer(header string) string {
	return r.Answers[header]
}

// ClaimsOf returns the claims of the given kinds, in order.
func (r *Respondent) ClaimsOf(kinds ...ClaimKind) []Claim {
	var out []Claim
	for _, c := range r.Claims {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
