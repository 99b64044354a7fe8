// Package research runs the web searches that feed the enrichment stage.
package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/formation-finder/internal/prompts"
)

// DefaultResultsPerQuery is the page size requested from the search provider (its maximum).
const DefaultResultsPerQuery = 10

// Snippet is one raw search hit.
type Snippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher runs a web query. Provider failures yield an empty result, never an error:
// a failed search only means enrichment has nothing to work with.
type Searcher interface {
	Search(ctx context.Context, query string) []Snippet
}

// GoogleSearcher queries the Google Programmable Search Engine.
type GoogleSearcher struct {
	svc    *customsearch.Service
	cx     string
	num    int64
	logger *zap.Logger
}

// NewGoogleSearcher creates a searcher bound to the search engine cx. Extra client options
// (endpoint, HTTP client) are passed through to the service.
func NewGoogleSearcher(ctx context.Context, apiKey, cx string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search API key and engine id are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearcher{
		svc:    svc,
		cx:     cx,
		num:    DefaultResultsPerQuery,
		logger: logger,
	}, nil
}

// Search returns the hits for query, restricted to French-language pages.
func (s *GoogleSearcher) Search(ctx context.Context, query string) []Snippet {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	resp, err := s.svc.Cse.List().Cx(s.cx).Q(query).Num(s.num).Lr("lang_fr").Gl("fr").Context(ctx).Do()
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	snippets := make([]Snippet, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Content: strings.TrimSpace(item.Snippet),
		})
	}

	s.logger.Debug("search done", zap.String("query", query), zap.Int("hits", len(snippets)))
	return snippets
}

// SearchAll runs every query in order and returns the hits with duplicate URLs removed,
// keeping the first occurrence.
func SearchAll(ctx context.Context, s Searcher, queries []string) []Snippet {
	var all []Snippet
	seen := make(map[string]bool)
	for _, q := range queries {
		for _, sn := range s.Search(ctx, q) {
			key := strings.TrimSuffix(strings.ToLower(sn.URL), "/")
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, sn)
		}
	}
	return all
}

// TrainingQueries returns the searches used to find programs preparing for an occupation
// around a city.
func TrainingQueries(occupationLabel, city string) []string {
	base := prompts.Format(prompts.MustGet(prompts.EnrichmentFile, prompts.KeySearchQuery), map[string]string{
		"Occupation": occupationLabel,
		"City":       city,
	})
	return []string{
		base,
		fmt.Sprintf("%s formation alternance près de %s", occupationLabel, city),
		fmt.Sprintf("CAP Bac Pro BTS %s lycée agricole CFA %s", occupationLabel, city),
	}
}
