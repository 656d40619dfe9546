// Package content loads the syllabus: the read-only set of topics,
// questions, and flashcards the app studies from. A default syllabus
// ships embedded in the binary; a content file can override it.
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed syllabus.json
var embedded []byte

//go:embed schema.json
var schemaJSON []byte

// SpecimenTopicID is the fixed-paper pseudo-chapter. It is excluded from
// chapter lists, mock-exam pools, and mastery charts.
const SpecimenTopicID = "specimen_exam"

// ErrNoContent is returned when a content pack contains no topics.
var ErrNoContent = errors.New("content: syllabus has no topics")

// LearningObjective is an exam learning outcome with its syllabus weight.
type LearningObjective struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Weight int    `json:"weight"`
}

// Question is a single syllabus question. MCQs carry options; fill
// questions accept one or more answer spellings.
type Question struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"` // "mcq" or "fill"
	LOID            string   `json:"loId,omitempty"`
	Concept         string   `json:"concept,omitempty"`
	Text            string   `json:"question"`
	Options         []string `json:"options,omitempty"`
	CorrectAnswer   string   `json:"correctAnswer"`
	AcceptedAnswers []string `json:"acceptedAnswers,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
}

// IsMCQ reports whether the question is a usable multiple-choice item.
func (q Question) IsMCQ() bool {
	return q.Type == "mcq" && len(q.Options) > 1
}

// CorrectIndex returns the option index holding the correct answer, or
// -1 when the question is not an MCQ or the answer text is missing from
// the options.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Flashcard is a term/definition pair.
type Flashcard struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	LOID       string `json:"loId,omitempty"`
}

// Topic is one syllabus chapter.
type Topic struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	LOs        []LearningObjective `json:"los,omitempty"`
	Questions  []Question          `json:"questions"`
	Flashcards []Flashcard         `json:"flashcards"`
}

type pack struct {
	Topics []Topic `json:"topics"`
}

// Load returns the embedded default syllabus.
func Load() ([]Topic, error) {
	return decode(embedded)
}

// LoadFile loads and validates a syllabus override file.
func LoadFile(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return decode(data)
}

// decode validates raw syllabus JSON against the pack schema and parses
// it.
func decode(data []byte) ([]Topic, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse syllabus: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate syllabus: %w", err)
	}

	var p pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode syllabus: %w", err)
	}
	if len(p.Topics) == 0 {
		return nil, ErrNoContent
	}
	return p.Topics, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	raw, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse syllabus schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("syllabus.schema.json", raw); err != nil {
		return nil, fmt.Errorf("register syllabus schema: %w", err)
	}
	schema, err := c.Compile("syllabus.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile syllabus schema: %w", err)
	}
	return schema, nil
}

// FindTopic looks a topic up by ID.
func FindTopic(topics []Topic, id string) (Topic, bool) {
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// Chapters returns the studyable topics, excluding the specimen paper.
func Chapters(topics []Topic) []Topic {
	var out []Topic
	for _, t := range topics {
		if t.ID != SpecimenTopicID {
			out = append(out, t)
		}
	}
	return out
}
