// Package enrichment finds training programs outside the reference dataset by searching
// the web, summarizing the hits into candidates and keeping only the candidates that
// survive every verification step.
package enrichment

import (
	"strings"

	"github.com/jonathan/formation-finder/internal/parsing"
)

// RawCandidate is one program as reported by the summarizer, before any verification.
type RawCandidate struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	City         string `json:"city"`
	Address      string `json:"address"`
	URL1         string `json:"url1"`
	URL2         string `json:"url2"`
	DiplomaHint  string `json:"diploma_hint"`
}

// Complete reports whether every mandatory field is present.
func (c *RawCandidate) Complete() bool {
	return c.Title != "" && c.Organization != "" && c.City != "" && c.URL1 != "" && c.URL2 != ""
}

// Text returns the normalized text used for keyword checks.
func (c *RawCandidate) Text() string {
	return parsing.Normalize(strings.Join([]string{c.Title, c.Organization, c.City, c.Address}, " "))
}

func (c *RawCandidate) trim() {
	c.Title = strings.TrimSpace(c.Title)
	c.Organization = strings.TrimSpace(c.Organization)
	c.City = strings.TrimSpace(c.City)
	c.Address = strings.TrimSpace(c.Address)
	c.URL1 = strings.TrimSpace(c.URL1)
	c.URL2 = strings.TrimSpace(c.URL2)
	c.DiplomaHint = strings.TrimSpace(c.DiplomaHint)
}

// labelStopwords are label words too generic to prove coherence on their own.
var labelStopwords = map[string]bool{
	"avec": true, "dans": true, "pour": true, "des": true, "les": true,
	"une": true, "sur": true, "agent": true, "chef": true,
}

// labelTokens returns the words of an occupation label usable as fallback keywords.
func labelTokens(label string) []string {
	var out []string
	for _, tok := range parsing.Tokens(label) {
		if len(tok) >= 4 && !labelStopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// isCoherent reports whether normalized candidate text relates to the occupation. With no
// keyword list the label words are used; a label with no usable word admits everything.
func isCoherent(text string, jobKeywords []string, label string) bool {
	keywords := jobKeywords
	if len(keywords) == 0 {
		keywords = labelTokens(label)
		if len(keywords) == 0 {
			return true
		}
	}
	return parsing.ContainsAnyKeyword(text, keywords)
}

func isBanned(text string, banned []string) bool {
	return parsing.ContainsAnyKeyword(text, banned)
}
