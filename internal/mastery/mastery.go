// Package mastery derives topic proficiency scores from flashcard
// confidence history.
package mastery

import "github.com/avashisk/prepdeck/internal/srs"

// maxContribution is the top score a single card can contribute: a
// confidence of 5 maps to (5-1)/4 = 1.
const maxContribution = 4.0

// TopicScore computes a topic's mastery in [0,1] as the average of
// (confidence-1)/4 over its rated cards. Cards that have never been
// rated (confidence 0) are excluded; counting them would drag the score
// negative. A topic with no rated cards scores 0.
func TopicScore(items []srs.Item) float64 {
	var sum float64
	var rated int
	for _, it := range items {
		if !it.Rated() {
			continue
		}
		sum += float64(it.Confidence-1) / maxContribution
		rated++
	}
	if rated == 0 {
		return 0
	}
	score := sum / float64(rated)
	return clamp01(score)
}

// Overall averages per-topic mastery scores into a single figure.
// Returns 0 when no topics have been started.
func Overall(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return clamp01(sum / float64(len(scores)))
}

// StatusCounts tallies cards by display status for the dashboard.
type StatusCounts struct {
	New      int
	Learning int
	Mastered int
}

// CountStatuses buckets cards by status. Unrated cards count as new.
func CountStatuses(items []srs.Item) StatusCounts {
	var c StatusCounts
	for _, it := range items {
		switch it.Status {
		case srs.StatusMastered:
			c.Mastered++
		case srs.StatusLearning:
			c.Learning++
		default:
			c.New++
		}
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
