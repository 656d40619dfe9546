package srs

import "time"

// Status classifies a card by its most recent self-rating.
type Status string

const (
	// StatusNew covers both never-rated cards and cards that lapsed hard
	// (rating <= 1) and need relearning from scratch.
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusMastered Status = "mastered"
)

// Scheduling defaults for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// PassThreshold is the lowest rating that counts as a successful
	// recall. Anything below it is a lapse.
	PassThreshold = 3
)

// Item holds the per-user scheduling state for a single flashcard.
type Item struct {
	ItemID  string `json:"itemId"`
	TopicID string `json:"topicId"`

	// Confidence is the last self-rating, 1-5. Zero means never rated.
	Confidence int `json:"confidence"`

	// IntervalDays is the current review interval. Resets to 1 on a lapse.
	IntervalDays int `json:"interval"`

	// EaseFactor controls interval growth. Never drops below MinEaseFactor.
	EaseFactor float64 `json:"easeFactor"`

	// ConsecutiveCorrect counts successive ratings >= PassThreshold.
	ConsecutiveCorrect int `json:"consecutiveCorrect"`

	NextReviewDate time.Time `json:"nextReviewDate"`
	LastReviewed   time.Time `json:"lastReviewed"`

	Status Status `json:"status"`
}

// NewItem returns the default scheduling state for a card that has never
// been reviewed.
func NewItem(itemID, topicID string) Item {
	return Item{
		ItemID:     itemID,
		TopicID:    topicID,
		EaseFactor: DefaultEaseFactor,
		Status:     StatusNew,
	}
}

// Rated reports whether the card has ever received a self-rating.
func (it Item) Rated() bool {
	return it.Confidence > 0
}

// IsDue reports whether the card is at or past its review date. A card
// that has never been reviewed is always due.
func (it Item) IsDue(now time.Time) bool {
	if it.NextReviewDate.IsZero() {
		return true
	}
	return !now.Before(it.NextReviewDate)
}

// OverdueDays returns how many days past due the card is, or 0 if it is
// not yet due.
func (it Item) OverdueDays(now time.Time) float64 {
	if it.NextReviewDate.IsZero() || now.Before(it.NextReviewDate) {
		return 0
	}
	return now.Sub(it.NextReviewDate).Hours() / 24.0
}

// DaysUntilReview returns the number of whole days until the next review.
// Returns 0 if the card is already due.
func (it Item) DaysUntilReview(now time.Time) int {
	if it.IsDue(now) {
		return 0
	}
	return int(it.NextReviewDate.Sub(now).Hours()/24.0) + 1
}

// Due filters items down to the ones due for review, preserving order.
func Due(items []Item, now time.Time) []Item {
	var due []Item
	for _, it := range items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}
	return due
}
