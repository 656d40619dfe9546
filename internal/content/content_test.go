package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedSyllabus(t *testing.T) {
	topics, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("embedded syllabus has no topics")
	}

	if _, ok := FindTopic(topics, SpecimenTopicID); !ok {
		t.Error("embedded syllabus missing specimen exam topic")
	}

	for _, topic := range topics {
		if topic.ID != SpecimenTopicID && len(topic.Flashcards) == 0 {
			t.Errorf("chapter %q has no flashcards", topic.ID)
		}
		for _, q := range topic.Questions {
			if q.Type == "mcq" && q.CorrectIndex() < 0 {
				t.Errorf("question %q: correct answer not among options", q.ID)
			}
		}
	}
}

func TestChaptersExcludesSpecimen(t *testing.T) {
	topics, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	for _, topic := range Chapters(topics) {
		if topic.ID == SpecimenTopicID {
			t.Fatal("Chapters() returned the specimen exam")
		}
	}
	if len(Chapters(topics)) != len(topics)-1 {
		t.Errorf("Chapters() = %d topics, want %d", len(Chapters(topics)), len(topics)-1)
	}
}

func TestCorrectIndex(t *testing.T) {
	q := Question{
		Type:          "mcq",
		Options:       []string{"alpha", "beta", "gamma"},
		CorrectAnswer: "beta",
	}
	if got := q.CorrectIndex(); got != 1 {
		t.Errorf("CorrectIndex() = %d, want 1", got)
	}

	q.CorrectAnswer = "delta"
	if got := q.CorrectIndex(); got != -1 {
		t.Errorf("CorrectIndex() with missing answer = %d, want -1", got)
	}
}

func TestIsMCQ(t *testing.T) {
	mcq := Question{Type: "mcq", Options: []string{"a", "b"}}
	if !mcq.IsMCQ() {
		t.Error("two-option mcq not recognised")
	}
	fill := Question{Type: "fill"}
	if fill.IsMCQ() {
		t.Error("fill question reported as mcq")
	}
	bare := Question{Type: "mcq", Options: []string{"only"}}
	if bare.IsMCQ() {
		t.Error("single-option question reported as mcq")
	}
}

func TestLoadFileRejectsInvalidPack(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		data string
	}{
		{"not json", `{"topics": [`},
		{"wrong shape", `{"topics": [{"id": "x"}]}`},
		{"bad question type", `{"topics": [{"id": "x", "title": "X", "questions": [{"id": "q1", "type": "essay", "question": "?", "correctAnswer": "a"}], "flashcards": []}]}`},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, "pack.json")
		if err := os.WriteFile(path, []byte(tc.data), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Errorf("%s: LoadFile accepted invalid pack", tc.name)
		}
	}
}

func TestLoadFileEmptyPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"topics": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrNoContent) {
		t.Errorf("LoadFile(empty) error = %v, want ErrNoContent", err)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.json")
	data := `{
		"topics": [{
			"id": "t1",
			"title": "Topic One",
			"los": [{"id": "lo1", "title": "First", "weight": 2}],
			"questions": [{
				"id": "q1", "type": "mcq", "loId": "lo1",
				"question": "Pick one", "options": ["a", "b"],
				"correctAnswer": "b", "explanation": "because"
			}],
			"flashcards": [{"id": "f1", "term": "T", "definition": "D"}]
		}]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	topics, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}
	topic := topics[0]
	if topic.LOs[0].Weight != 2 {
		t.Errorf("lo weight = %d, want 2", topic.LOs[0].Weight)
	}
	if topic.Questions[0].CorrectIndex() != 1 {
		t.Errorf("correct index = %d, want 1", topic.Questions[0].CorrectIndex())
	}
}
