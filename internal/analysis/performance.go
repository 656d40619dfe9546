// Package analysis aggregates quiz-attempt history into per-topic
// strength/weakness classifications.
package analysis

import "sort"

// Thresholds for classification. Topics with fewer than MinSampleSize
// recorded answers are excluded entirely: a 2/2 streak says nothing.
const (
	MinSampleSize        = 5
	StrengthThresholdPct = 70.0
	MaxListed            = 3
)

// pseudoTopics are aggregate quiz buckets with no single-topic identity.
// Answers recorded under them are curated out of per-topic stats.
var pseudoTopics = map[string]bool{
	"mock_exam":     true,
	"specimen_exam": true,
	"quick_quiz":    true,
}

// Answer records the outcome of a single quiz question. The same shape
// is persisted inside completed attempt results.
type Answer struct {
	QuestionID string `json:"questionId"`
	TopicID    string `json:"topicId"`
	Correct    bool   `json:"correct"`
	LOID       string `json:"loId,omitempty"`
}

// Attempt is the slice of attempt state the analyzer needs.
type Attempt struct {
	Completed bool
	Answers   []Answer
}

// TopicStat is an aggregated per-topic accuracy figure.
type TopicStat struct {
	TopicID    string
	Correct    int
	Total      int
	Percentage float64
}

// Report lists the learner's strongest and weakest topics. Either list
// may be empty; a topic never appears in both.
type Report struct {
	Strengths  []TopicStat
	Weaknesses []TopicStat
}

// Analyze aggregates answers from completed attempts per topic and
// classifies topics with enough data. Strengths are the top three at or
// above 70%, weaknesses the bottom three below it.
func Analyze(attempts []Attempt) Report {
	type tally struct {
		correct int
		total   int
	}
	counts := make(map[string]*tally)

	for _, at := range attempts {
		if !at.Completed {
			continue
		}
		for _, ans := range at.Answers {
			if ans.TopicID == "" || pseudoTopics[ans.TopicID] {
				continue
			}
			t := counts[ans.TopicID]
			if t == nil {
				t = &tally{}
				counts[ans.TopicID] = t
			}
			t.total++
			if ans.Correct {
				t.correct++
			}
		}
	}

	var stats []TopicStat
	for id, t := range counts {
		if t.total < MinSampleSize {
			continue
		}
		stats = append(stats, TopicStat{
			TopicID:    id,
			Correct:    t.correct,
			Total:      t.total,
			Percentage: float64(t.correct) / float64(t.total) * 100,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Percentage != stats[j].Percentage {
			return stats[i].Percentage > stats[j].Percentage
		}
		return stats[i].TopicID < stats[j].TopicID
	})

	var report Report
	for _, s := range stats {
		if s.Percentage >= StrengthThresholdPct && len(report.Strengths) < MaxListed {
			report.Strengths = append(report.Strengths, s)
		}
	}
	for i := len(stats) - 1; i >= 0; i-- {
		s := stats[i]
		if s.Percentage < StrengthThresholdPct && len(report.Weaknesses) < MaxListed {
			report.Weaknesses = append(report.Weaknesses, s)
		}
	}

	return report
}
