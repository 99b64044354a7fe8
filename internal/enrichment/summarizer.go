package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/formation-finder/internal/llm"
	"github.com/jonathan/formation-finder/internal/prompts"
	"github.com/jonathan/formation-finder/internal/research"
	"github.com/jonathan/formation-finder/internal/schemas"
	"github.com/jonathan/formation-finder/internal/types"
	shipped "github.com/jonathan/formation-finder/schemas"
)

// maxSnippetChars bounds each snippet's content in the prompt.
const maxSnippetChars = 600

// Summarizer turns raw search hits into candidate programs.
type Summarizer interface {
	Summarize(ctx context.Context, snippets []research.Snippet, occupation types.Occupation, city string) ([]RawCandidate, error)
}

// LLMSummarizer is a Summarizer backed by a language model.
type LLMSummarizer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// NewLLMSummarizer creates a summarizer using client at the given tier.
func NewLLMSummarizer(client llm.Client, tier llm.ModelTier, logger *zap.Logger) *LLMSummarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSummarizer{
		client: client,
		tier:   tier,
		logger: logger,
	}
}

type candidatesEnvelope struct {
	Candidates []json.RawMessage `json:"candidates"`
}

// Summarize asks the model for the programs mentioned in snippets. An unusable response as
// a whole is an error; individual malformed items are dropped.
func (s *LLMSummarizer) Summarize(ctx context.Context, snippets []research.Snippet, occupation types.Occupation, city string) ([]RawCandidate, error) {
	if len(snippets) == 0 {
		return nil, nil
	}

	prompt := buildSummarizePrompt(snippets, occupation, city)

	resp, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	return s.parse(resp)
}

func (s *LLMSummarizer) parse(resp string) ([]RawCandidate, error) {
	resp = llm.CleanJSONBlock(resp)
	if err := schemas.ValidateDocument(shipped.Candidates, []byte(resp)); err != nil {
		return nil, fmt.Errorf("summarizer response rejected: %w", err)
	}

	var envelope candidatesEnvelope
	if err := json.Unmarshal([]byte(resp), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode summarizer response: %w", err)
	}

	candidates := make([]RawCandidate, 0, len(envelope.Candidates))
	for i, item := range envelope.Candidates {
		var c RawCandidate
		if err := json.Unmarshal(item, &c); err != nil {
			s.logger.Debug("dropping malformed candidate", zap.Int("index", i), zap.Error(err))
			continue
		}
		c.trim()
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func buildSummarizePrompt(snippets []research.Snippet, occupation types.Occupation, city string) string {
	preamble := prompts.Format(prompts.MustGet(prompts.EnrichmentFile, prompts.KeySummarizeCandidates), map[string]string{
		"Occupation": occupation.Label(),
		"City":       city,
	})

	var sb strings.Builder
	for i, sn := range snippets {
		content := sn.Content
		if len(content) > maxSnippetChars {
			content = truncateRunes(content, maxSnippetChars) + "..."
		}
		fmt.Fprintf(&sb, "[%d] %s\nURL: %s\n%s\n\n", i+1, sn.Title, sn.URL, content)
	}

	return llm.BuildExtractionPrompt(llm.TrainingCandidatesSchema(preamble), strings.TrimSpace(sb.String()))
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
