package srs

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidRating is returned when a rating falls outside 1-5.
var ErrInvalidRating = errors.New("srs: rating must be between 1 and 5")

// Review interval ladder for the first two successful recalls. After the
// second success the interval grows geometrically by the ease factor.
const (
	firstInterval  = 1
	secondInterval = 6
)

// Schedule applies one SM-2 review step to an item and returns the
// updated state. It is a pure function of (item, rating, now): the same
// inputs always produce the same output.
//
// A rating below PassThreshold is a lapse: the interval resets to 1 and
// the consecutive-correct counter clears. Successful recalls walk the
// 1 -> 6 -> ceil(interval * ease) ladder. The ease factor moves by the
// standard SM-2 delta and is floored at MinEaseFactor.
func Schedule(item Item, rating int, now time.Time) (Item, error) {
	if rating < 1 || rating > 5 {
		return Item{}, ErrInvalidRating
	}

	// Old records may predate the scheduling fields.
	if item.EaseFactor == 0 {
		item.EaseFactor = DefaultEaseFactor
	}

	if rating < PassThreshold {
		item.IntervalDays = firstInterval
		item.ConsecutiveCorrect = 0
	} else {
		item.ConsecutiveCorrect++
		switch item.ConsecutiveCorrect {
		case 1:
			item.IntervalDays = firstInterval
		case 2:
			item.IntervalDays = secondInterval
		default:
			item.IntervalDays = int(math.Ceil(float64(item.IntervalDays) * item.EaseFactor))
		}
	}

	item.EaseFactor += 0.1 - float64(5-rating)*(0.08+float64(5-rating)*0.02)
	if item.EaseFactor < MinEaseFactor {
		item.EaseFactor = MinEaseFactor
	}

	item.Confidence = rating
	item.LastReviewed = now
	item.NextReviewDate = now.AddDate(0, 0, item.IntervalDays)
	item.Status = statusFor(rating)

	return item, nil
}

// statusFor derives the display status from a rating.
func statusFor(rating int) Status {
	switch {
	case rating >= 4:
		return StatusMastered
	case rating >= 2:
		return StatusLearning
	default:
		return StatusNew
	}
}
