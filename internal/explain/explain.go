// Package explain turns flashcard definitions into tutor-style AI
// explanations. Results are cached per card and prompt type so a term
// is only ever explained once per user.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/avashisk/prepdeck/internal/llm"
	"github.com/avashisk/prepdeck/internal/progress"
)

// Prompt types.
const (
	PromptSimplify = "simplify"
	PromptScenario = "scenario"
)

const systemPrompt = "You are a patient tutor helping someone prepare " +
	"for an insurance foundation exam. Answer in two or three short " +
	"sentences of plain prose. No markdown, no bullet points."

const maxTokens = 512

// Service generates and caches flashcard explanations.
type Service struct {
	provider llm.Provider
	progress *progress.Store
}

// NewService wires an LLM provider to the progress store's explanation
// cache.
func NewService(provider llm.Provider, store *progress.Store) *Service {
	return &Service{provider: provider, progress: store}
}

// Available reports whether an LLM provider is configured.
func (s *Service) Available() bool {
	return s.provider != nil
}

// Explain returns an explanation for the flashcard, serving from the
// cache when one exists. Cached results report cached=true and never
// touch the provider.
func (s *Service) Explain(ctx context.Context, userID, topicID, cardID, term, definition, promptType string) (text string, cached bool, err error) {
	prompt, err := buildPrompt(term, definition, promptType)
	if err != nil {
		return "", false, err
	}

	if got, ok, err := s.progress.Explanation(ctx, userID, topicID, cardID, promptType); err != nil {
		return "", false, err
	} else if ok {
		return got, true, nil
	}

	if s.provider == nil {
		return "", false, fmt.Errorf("explain: no LLM provider configured")
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "explain-"+promptType), llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", false, fmt.Errorf("explain %q: %w", term, err)
	}

	text = strings.TrimSpace(resp.Text)
	if text == "" {
		return "", false, fmt.Errorf("explain %q: empty response", term)
	}

	if err := s.progress.CacheExplanation(ctx, userID, topicID, cardID, promptType, text); err != nil {
		return "", false, err
	}
	return text, false, nil
}

func buildPrompt(term, definition, promptType string) (string, error) {
	switch promptType {
	case PromptSimplify:
		return fmt.Sprintf("Explain the following insurance definition in simple terms, "+
			"as if you were talking to someone new to the industry. Definition: %q", definition), nil
	case PromptScenario:
		return fmt.Sprintf("Provide a short, clear, real-world scenario or example for the "+
			"insurance concept %q. The definition is: %q", term, definition), nil
	default:
		return "", fmt.Errorf("explain: invalid prompt type %q", promptType)
	}
}
