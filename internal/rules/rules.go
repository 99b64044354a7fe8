// Package rules holds the per-occupation relevance rules used to gate candidate titles.
//
// The tables are a closed enumeration keyed by types.Occupation, built once at package
// initialization and read-only afterwards, so concurrent readers need no locking.
package rules

import (
	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/types"
)

// RuleSet is the allow/deny configuration of one occupation.
//
// ForbidAny vetoes a candidate whenever one of its keywords appears, overriding every
// allow condition. MustAll, when set, requires every keyword. MustAny, when non-empty,
// requires at least one keyword.
type RuleSet struct {
	MustAny   []string
	MustAll   []string
	ForbidAny []string
}

// IsAdmissible decides whether candidateText passes rs. A nil rule set admits everything,
// so an unconfigured occupation never silently returns zero results.
func IsAdmissible(candidateText string, rs *RuleSet) bool {
	if rs == nil {
		return true
	}

	text := parsing.Normalize(candidateText)

	if parsing.ContainsAnyKeyword(text, rs.ForbidAny) {
		return false
	}

	for _, k := range rs.MustAll {
		if !parsing.ContainsKeyword(text, k) {
			return false
		}
	}

	if len(rs.MustAny) > 0 && !parsing.ContainsAnyKeyword(text, rs.MustAny) {
		return false
	}

	return true
}

// For returns the rule set of an occupation, or nil when none is configured.
func For(o types.Occupation) *RuleSet {
	rs, ok := relevance[o]
	if !ok {
		return nil
	}
	return &rs
}

// Missing lists the occupations that have no relevance rule set or no enrichment profile.
// A gap is a configuration defect to log at startup; runtime behavior stays fail-open.
func Missing() []types.Occupation {
	var missing []types.Occupation
	for _, o := range types.AllOccupations() {
		_, hasRules := relevance[o]
		_, hasProfile := enrichment[o]
		if !hasRules || !hasProfile {
			missing = append(missing, o)
		}
	}
	return missing
}
