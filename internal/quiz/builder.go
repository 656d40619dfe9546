// Package quiz assembles question sets for the five session types:
// single chapter, custom chapter selection, quick quiz, weighted mock
// exam, and the fixed specimen paper.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/avashisk/prepdeck/internal/content"
)

// Session types.
const (
	TypeChapter  = "chapter"
	TypeCustom   = "custom"
	TypeQuick    = "quick_quiz"
	TypeMock     = "mock"
	TypeSpecimen = "specimen"
)

// Defaults for the timed and quick session types.
const (
	ExamDuration   = 120 * time.Minute
	MockSize       = 100
	QuickQuizSize  = 10
	DefaultQuizLen = 10
)

var (
	ErrUnknownType = errors.New("quiz: unknown quiz type")
	ErrEmptyPool   = errors.New("quiz: no questions available")
)

// Question is a syllabus question tagged with the topic it came from.
// Mock and quick sessions pool questions across chapters, so the tag is
// what lets results attribute answers back to a topic.
type Question struct {
	content.Question
	TopicID string
}

// Config describes the quiz to build. TopicID applies to chapter
// quizzes, TopicIDs to custom ones. Total is ignored for the specimen
// paper, which always uses the full fixed set.
type Config struct {
	Type     string
	TopicID  string
	TopicIDs []string
	Total    int
}

// Build assembles a question set from the syllabus. Only MCQs enter
// sampled pools; the result is deduplicated by question ID and shuffled.
func Build(topics []content.Topic, cfg Config, rng *rand.Rand) ([]Question, error) {
	total := cfg.Total
	if total <= 0 {
		total = DefaultQuizLen
	}

	var picked []Question
	switch cfg.Type {
	case TypeChapter:
		topic, ok := content.FindTopic(topics, cfg.TopicID)
		if !ok {
			return nil, fmt.Errorf("quiz: unknown topic %q", cfg.TopicID)
		}
		pool := tagged(topic)
		picked = sample(pool, min(total, len(pool)), rng)

	case TypeCustom:
		var pool []Question
		for _, id := range cfg.TopicIDs {
			if topic, ok := content.FindTopic(topics, id); ok {
				pool = append(pool, tagged(topic)...)
			}
		}
		picked = sample(pool, min(total, len(pool)), rng)

	case TypeQuick:
		if cfg.Total <= 0 {
			total = QuickQuizSize
		}
		var pool []Question
		for _, topic := range content.Chapters(topics) {
			pool = append(pool, tagged(topic)...)
		}
		picked = sample(pool, min(total, len(pool)), rng)

	case TypeMock:
		if cfg.Total <= 0 {
			total = MockSize
		}
		picked = buildMock(topics, total, rng)

	case TypeSpecimen:
		topic, ok := content.FindTopic(topics, content.SpecimenTopicID)
		if !ok {
			return nil, ErrEmptyPool
		}
		picked = tagged(topic)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}

	picked = dedupe(picked)
	if cfg.Type != TypeSpecimen {
		shuffle(picked, rng)
		if len(picked) > total {
			picked = picked[:total]
		}
	}
	if len(picked) == 0 {
		return nil, ErrEmptyPool
	}
	return picked, nil
}

// buildMock draws questions per learning objective according to the
// syllabus weights, then tops up from the remaining pool if any
// objective ran short.
func buildMock(topics []content.Topic, total int, rng *rand.Rand) []Question {
	chapters := content.Chapters(topics)

	pools := make(map[string][]Question)
	var los []loPool
	seen := make(map[string]bool)
	for _, topic := range chapters {
		for _, q := range tagged(topic) {
			pools[q.LOID] = append(pools[q.LOID], q)
		}
		for _, lo := range topic.LOs {
			if !seen[lo.ID] {
				seen[lo.ID] = true
				los = append(los, loPool{ID: lo.ID, Weight: lo.Weight})
			}
		}
	}
	for i := range los {
		los[i].PoolSize = len(pools[los[i].ID])
	}

	counts := allocateByWeights(los, total)
	var picked []Question
	for _, lo := range los {
		picked = append(picked, sample(pools[lo.ID], counts[lo.ID], rng)...)
	}

	// Questions without a learning objective tag, or shortfall from thin
	// pools, are made up from the leftover pool at random.
	if len(picked) < total {
		used := make(map[string]bool, len(picked))
		for _, q := range picked {
			used[q.ID] = true
		}
		var rest []Question
		for _, topic := range chapters {
			for _, q := range tagged(topic) {
				if !used[q.ID] {
					rest = append(rest, q)
				}
			}
		}
		picked = append(picked, sample(rest, total-len(picked), rng)...)
	}
	return picked
}

// tagged returns the topic's usable MCQs carrying the topic ID.
func tagged(topic content.Topic) []Question {
	var out []Question
	for _, q := range topic.Questions {
		if q.IsMCQ() {
			out = append(out, Question{Question: q, TopicID: topic.ID})
		}
	}
	return out
}

// sample returns n elements drawn without replacement.
func sample(pool []Question, n int, rng *rand.Rand) []Question {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	arr := make([]Question, len(pool))
	copy(arr, pool)
	shuffle(arr, rng)
	if n > len(arr) {
		n = len(arr)
	}
	return arr[:n]
}

func shuffle(qs []Question, rng *rand.Rand) {
	rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}

func dedupe(qs []Question) []Question {
	seen := make(map[string]bool, len(qs))
	var out []Question
	for _, q := range qs {
		key := q.ID
		if key == "" {
			key = q.Text
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, q)
		}
	}
	return out
}

// ShuffleOptions returns a copy of the question with its options
// permuted. The correct answer is tracked by text, so CorrectIndex stays
// accurate after the permutation.
func ShuffleOptions(q Question, rng *rand.Rand) Question {
	if !q.IsMCQ() {
		return q
	}
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	q.Options = opts
	return q
}

// IsTimed reports whether the session type runs against an exam clock.
func IsTimed(quizType string) bool {
	return quizType == TypeMock || quizType == TypeSpecimen
}

// Deadline returns the submission deadline for a timed session, or the
// zero time when the type is untimed.
func Deadline(quizType string, start time.Time) time.Time {
	if !IsTimed(quizType) {
		return time.Time{}
	}
	return start.Add(ExamDuration)
}

// NewAttemptID mints the identifier for a fresh attempt.
func NewAttemptID() string {
	return uuid.NewString()
}
