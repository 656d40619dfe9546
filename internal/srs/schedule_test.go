package srs

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const epsilon = 0.0001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSchedule_RejectsOutOfRangeRating(t *testing.T) {
	item := NewItem("card-1", "ch1")
	for _, rating := range []int{-1, 0, 6, 100} {
		if _, err := Schedule(item, rating, testNow); err != ErrInvalidRating {
			t.Errorf("Schedule(rating=%d) err = %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestSchedule_LapseResetsInterval(t *testing.T) {
	item := Item{
		ItemID:             "card-1",
		TopicID:            "ch1",
		Confidence:         4,
		IntervalDays:       15,
		EaseFactor:         2.5,
		ConsecutiveCorrect: 3,
	}

	for _, rating := range []int{1, 2} {
		got, err := Schedule(item, rating, testNow)
		if err != nil {
			t.Fatalf("Schedule(rating=%d): %v", rating, err)
		}
		if got.IntervalDays != 1 {
			t.Errorf("rating=%d: IntervalDays = %d, want 1", rating, got.IntervalDays)
		}
		if got.ConsecutiveCorrect != 0 {
			t.Errorf("rating=%d: ConsecutiveCorrect = %d, want 0", rating, got.ConsecutiveCorrect)
		}
	}
}

func TestSchedule_FreshItemHardLapse(t *testing.T) {
	item := Item{ItemID: "card-1", TopicID: "ch1", EaseFactor: 2.5}

	got, err := Schedule(item, 1, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if got.ConsecutiveCorrect != 0 {
		t.Errorf("ConsecutiveCorrect = %d, want 0", got.ConsecutiveCorrect)
	}
	if got.Status != StatusNew {
		t.Errorf("Status = %q, want %q", got.Status, StatusNew)
	}
}

func TestSchedule_EscalationLadder(t *testing.T) {
	item := NewItem("card-1", "ch1")

	wantIntervals := []int{1, 6}
	for i, want := range wantIntervals {
		var err error
		item, err = Schedule(item, 4, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if item.IntervalDays != want {
			t.Fatalf("review %d: IntervalDays = %d, want %d", i+1, item.IntervalDays, want)
		}
	}

	// Third success: ceil(6 * ease). A rating of 4 leaves the ease factor
	// untouched (delta 0.1 - 1*(0.08 + 1*0.02) = 0), so it is still 2.5.
	easeBefore := item.EaseFactor
	if !almostEqual(easeBefore, 2.5) {
		t.Fatalf("ease after two reviews = %f, want 2.5", easeBefore)
	}
	item, err := Schedule(item, 4, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if item.IntervalDays != 15 {
		t.Errorf("third interval = %d, want 15 (ceil(6 * 2.5))", item.IntervalDays)
	}
}

func TestSchedule_EaseFloorHolds(t *testing.T) {
	item := NewItem("card-1", "ch1")

	// Worst-case rating sequence hammers the ease factor downward.
	ratings := []int{1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 3, 1, 1}
	for _, r := range ratings {
		var err error
		item, err = Schedule(item, r, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if item.EaseFactor < MinEaseFactor-epsilon {
			t.Fatalf("EaseFactor = %f dropped below floor %f", item.EaseFactor, MinEaseFactor)
		}
	}
	if !almostEqual(item.EaseFactor, MinEaseFactor) {
		t.Errorf("EaseFactor = %f, want pinned at %f", item.EaseFactor, MinEaseFactor)
	}
}

func TestSchedule_EaseDelta(t *testing.T) {
	tests := []struct {
		rating int
		want   float64
	}{
		{5, 2.6},  // +0.1
		{4, 2.5},  // unchanged
		{3, 2.36}, // -0.14
		{2, 2.18}, // -0.32
		{1, 1.96}, // -0.54
	}
	for _, tt := range tests {
		item := NewItem("card-1", "ch1")
		got, err := Schedule(item, tt.rating, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if !almostEqual(got.EaseFactor, tt.want) {
			t.Errorf("rating=%d: EaseFactor = %f, want %f", tt.rating, got.EaseFactor, tt.want)
		}
	}
}

func TestSchedule_DatesAndConfidence(t *testing.T) {
	item := NewItem("card-1", "ch1")
	got, err := Schedule(item, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if !got.LastReviewed.Equal(testNow) {
		t.Errorf("LastReviewed = %v, want %v", got.LastReviewed, testNow)
	}
	wantNext := testNow.AddDate(0, 0, got.IntervalDays)
	if !got.NextReviewDate.Equal(wantNext) {
		t.Errorf("NextReviewDate = %v, want %v", got.NextReviewDate, wantNext)
	}
	if got.Confidence != 5 {
		t.Errorf("Confidence = %d, want 5", got.Confidence)
	}
}

func TestSchedule_StatusTiers(t *testing.T) {
	tests := []struct {
		rating int
		want   Status
	}{
		{1, StatusNew},
		{2, StatusLearning},
		{3, StatusLearning},
		{4, StatusMastered},
		{5, StatusMastered},
	}
	for _, tt := range tests {
		got, err := Schedule(NewItem("c", "ch1"), tt.rating, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != tt.want {
			t.Errorf("rating=%d: Status = %q, want %q", tt.rating, got.Status, tt.want)
		}
	}
}

func TestSchedule_DefaultsMissingEase(t *testing.T) {
	// Records written before the scheduling fields existed carry a zero
	// ease factor; Schedule treats them as fresh cards.
	item := Item{ItemID: "old", TopicID: "ch1"}
	got, err := Schedule(item, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got.EaseFactor, 2.6) {
		t.Errorf("EaseFactor = %f, want 2.6", got.EaseFactor)
	}
}

func TestSchedule_IsPure(t *testing.T) {
	item := Item{
		ItemID: "card-1", TopicID: "ch1",
		Confidence: 3, IntervalDays: 6, EaseFactor: 2.2, ConsecutiveCorrect: 2,
	}
	a, err := Schedule(item, 4, testNow)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Schedule(item, 4, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Schedule is not deterministic: %+v != %+v", a, b)
	}
}
