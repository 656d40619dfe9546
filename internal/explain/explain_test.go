package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avashisk/prepdeck/internal/llm"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
)

// memRepo is an in-memory ProfileRepo.
type memRepo struct {
	data    []byte
	version int64
}

func (r *memRepo) Load(context.Context) (*store.Record, error) {
	if r.data == nil {
		return nil, nil
	}
	return &store.Record{Data: r.data, Version: r.version}, nil
}

func (r *memRepo) Save(_ context.Context, data []byte, expect int64) (int64, error) {
	if expect != r.version {
		return 0, store.ErrVersionConflict
	}
	r.data = append([]byte(nil), data...)
	r.version++
	return r.version, nil
}

func (r *memRepo) PruneSnapshots(context.Context, int) error { return nil }

func (r *memRepo) Reset(context.Context) error {
	r.data = nil
	r.version = 0
	return nil
}

func newTestService(t *testing.T, provider llm.Provider) (*Service, string) {
	t.Helper()
	prog := progress.New(&memRepo{})
	userID, err := prog.AddUser(context.Background(), "Asha")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	return NewService(provider, prog), userID
}

func TestExplainGeneratesAndCaches(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "It means you would lose money if the insured thing were damaged."},
	)
	svc, userID := newTestService(t, mock)
	ctx := context.Background()

	text, cached, err := svc.Explain(ctx, userID, "ch4", "ch4-f1",
		"Insurable interest", "The legally recognised financial relationship...", PromptSimplify)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if cached {
		t.Error("first call reported cached")
	}
	if text == "" {
		t.Fatal("empty explanation")
	}

	// Second call must come from the cache without touching the provider.
	again, cached, err := svc.Explain(ctx, userID, "ch4", "ch4-f1",
		"Insurable interest", "The legally recognised financial relationship...", PromptSimplify)
	if err != nil {
		t.Fatalf("Explain (cached): %v", err)
	}
	if !cached {
		t.Error("second call not served from cache")
	}
	if again != text {
		t.Errorf("cached text %q differs from original %q", again, text)
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", mock.CallCount())
	}
}

func TestExplainPromptTypesAreCachedSeparately(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "simple version"},
		llm.MockResponse{Text: "scenario version"},
	)
	svc, userID := newTestService(t, mock)
	ctx := context.Background()

	if _, _, err := svc.Explain(ctx, userID, "ch1", "ch1-f1", "Peril", "An event...", PromptSimplify); err != nil {
		t.Fatalf("simplify: %v", err)
	}
	text, cached, err := svc.Explain(ctx, userID, "ch1", "ch1-f1", "Peril", "An event...", PromptScenario)
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	if cached {
		t.Error("scenario served from simplify's cache entry")
	}
	if text != "scenario version" {
		t.Errorf("text = %q, want scenario version", text)
	}
	if mock.CallCount() != 2 {
		t.Errorf("provider called %d times, want 2", mock.CallCount())
	}
}

func TestExplainBuildsDistinctPrompts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "a"},
		llm.MockResponse{Text: "b"},
	)
	svc, userID := newTestService(t, mock)
	ctx := context.Background()

	_, _, _ = svc.Explain(ctx, userID, "ch1", "c1", "Peril", "An event that causes loss.", PromptSimplify)
	_, _, _ = svc.Explain(ctx, userID, "ch1", "c1", "Peril", "An event that causes loss.", PromptScenario)

	if len(mock.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(mock.Calls))
	}
	simplify := mock.Calls[0].Messages[0].Content
	scenario := mock.Calls[1].Messages[0].Content
	if !strings.Contains(simplify, "simple terms") {
		t.Errorf("simplify prompt missing phrasing: %q", simplify)
	}
	if !strings.Contains(scenario, "real-world scenario") {
		t.Errorf("scenario prompt missing phrasing: %q", scenario)
	}
	if !strings.Contains(scenario, "Peril") {
		t.Errorf("scenario prompt missing term: %q", scenario)
	}
}

func TestExplainInvalidPromptType(t *testing.T) {
	svc, userID := newTestService(t, llm.NewMockProvider())
	if _, _, err := svc.Explain(context.Background(), userID, "ch1", "c1", "Peril", "def", "essay"); err == nil {
		t.Fatal("expected error for invalid prompt type")
	}
}

func TestExplainProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	svc, userID := newTestService(t, mock)

	_, _, err := svc.Explain(context.Background(), userID, "ch1", "c1", "Peril", "def", PromptSimplify)
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}

	// Nothing should have been cached for the failed call.
	if _, ok, _ := svc.progress.Explanation(context.Background(), userID, "ch1", "c1", PromptSimplify); ok {
		t.Error("failed explanation was cached")
	}
}

func TestExplainNoProvider(t *testing.T) {
	svc, userID := newTestService(t, nil)
	if svc.Available() {
		t.Error("Available() = true with nil provider")
	}
	if _, _, err := svc.Explain(context.Background(), userID, "ch1", "c1", "Peril", "def", PromptSimplify); err == nil {
		t.Fatal("expected error with no provider")
	}
}
