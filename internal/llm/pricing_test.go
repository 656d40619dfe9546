package llm

import (
	"math"
	"testing"
)

func TestLookupCost_CoversResolvableModels(t *testing.T) {
	// Every model ID the provider alias tables can resolve to must be
	// priced, or llm stats under-reports spend for a default config.
	for _, models := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		for alias, id := range models {
			if LookupCost(id) == nil {
				t.Errorf("no pricing for %s (alias %s)", id, alias)
			}
		}
	}
}

func TestLookupCost_UnknownModel(t *testing.T) {
	if c := LookupCost("google/gemini-2.0-flash-exp"); c != nil {
		t.Errorf("expected nil for an OpenRouter route, got %+v", c)
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 2.5, OutputPerMTok: 10}

	got := c.Cost(1_000_000, 500_000)
	if math.Abs(got-7.5) > 1e-9 {
		t.Errorf("Cost = %f, want 7.5", got)
	}
	if c.Cost(0, 0) != 0 {
		t.Error("zero tokens should cost zero")
	}
}
