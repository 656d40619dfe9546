// Package progress owns the per-user study state: flashcard scheduling,
// topic mastery, quiz attempts, activity history, and streaks. All
// mutations are full read-modify-write cycles against the profile
// repository so a partial write can never be observed.
package progress

import (
	"time"

	"github.com/avashisk/prepdeck/internal/analysis"
	"github.com/avashisk/prepdeck/internal/srs"
)

// SchemaVersion is the current persisted record shape. Version 1 was the
// implicit single-user layout (a bare profile at the root); version 2
// introduced the users map.
const SchemaVersion = 2

// DefaultUserID is the profile a legacy single-user record migrates into.
const (
	DefaultUserID   = "default-user"
	DefaultUserName = "Default User"
)

// maxRecentActivity bounds the per-user activity feed.
const maxRecentActivity = 10

// RootRecord is the single persisted object: the current-user pointer
// plus every profile, keyed by user ID.
type RootRecord struct {
	SchemaVersion int                     `json:"schemaVersion"`
	CurrentUser   string                  `json:"currentUser,omitempty"`
	Users         map[string]*UserProfile `json:"users"`
}

// UserProfile holds all state owned by one user. Profiles never share
// entities.
type UserProfile struct {
	Name           string                    `json:"name"`
	Chapters       map[string]*TopicProgress `json:"chapters"`
	RecentActivity []Activity                `json:"recentActivity"`
	QuizAttempts   map[string]*QuizAttempt   `json:"quizAttempts"`
	StudyStreak    StudyStreak               `json:"studyStreak"`
	HasSeenWelcome bool                      `json:"hasSeenWelcome"`
}

// TopicProgress is one syllabus chapter's state for one user.
type TopicProgress struct {
	Title   string `json:"title"`
	Mastery float64 `json:"mastery"`

	// Flashcards maps card ID to its scheduling state.
	Flashcards map[string]srs.Item `json:"flashcards"`

	// Explanations caches AI explanations per card and prompt type.
	Explanations map[string]map[string]string `json:"aiExplanations,omitempty"`
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	Type    string    `json:"type"` // "quiz", "flashcards", "due-flashcards"
	Chapter string    `json:"chapter,omitempty"`
	TopicID string    `json:"chapterId,omitempty"`
	Score   string    `json:"score,omitempty"`
	Date    time.Time `json:"date"`
}

// StudyStreak tracks consecutive study days.
type StudyStreak struct {
	Current          int       `json:"current"`
	Longest          int       `json:"longest"`
	LastActivityDate time.Time `json:"lastActivityDate"`
}

// AttemptQuestion is one question slot within a quiz attempt.
type AttemptQuestion struct {
	QuestionID string `json:"questionId"`
	TopicID    string `json:"topicId"`
	Flagged    bool   `json:"flagged"`
}

// AttemptResults is populated exactly once, when the attempt completes.
type AttemptResults struct {
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Percentage float64           `json:"percentage"`
	Answers    []analysis.Answer `json:"answers"`
}

// QuizAttempt is one quiz session.
type QuizAttempt struct {
	AttemptID string            `json:"attemptId"`
	Kind      string            `json:"kind,omitempty"`
	StartTime time.Time         `json:"startTime"`
	EndTime   *time.Time        `json:"endTime,omitempty"`
	Completed bool              `json:"completed"`
	Questions []AttemptQuestion `json:"questions"`
	Results   *AttemptResults   `json:"results,omitempty"`
}

// User pairs a profile ID with its display name.
type User struct {
	ID   string
	Name string
}

// StreakResult reports the streak effect of a logged activity.
type StreakResult struct {
	Extended bool
	Current  int
}

// NewProfile returns an empty profile, equal to the state a brand-new
// user starts with.
func NewProfile(name string) *UserProfile {
	return &UserProfile{
		Name:         name,
		Chapters:     make(map[string]*TopicProgress),
		QuizAttempts: make(map[string]*QuizAttempt),
	}
}

// Items returns the topic's flashcard states in no particular order.
func (tp *TopicProgress) Items() []srs.Item {
	items := make([]srs.Item, 0, len(tp.Flashcards))
	for _, it := range tp.Flashcards {
		items = append(items, it)
	}
	return items
}

// newRoot returns the initial empty persisted record.
func newRoot() *RootRecord {
	return &RootRecord{
		SchemaVersion: SchemaVersion,
		Users:         make(map[string]*UserProfile),
	}
}

// normalize backfills nil maps after JSON decoding so callers can index
// without nil checks.
func (r *RootRecord) normalize() {
	if r.Users == nil {
		r.Users = make(map[string]*UserProfile)
	}
	for _, p := range r.Users {
		p.normalize()
	}
}

func (p *UserProfile) normalize() {
	if p.Chapters == nil {
		p.Chapters = make(map[string]*TopicProgress)
	}
	if p.QuizAttempts == nil {
		p.QuizAttempts = make(map[string]*QuizAttempt)
	}
	for _, tp := range p.Chapters {
		if tp.Flashcards == nil {
			tp.Flashcards = make(map[string]srs.Item)
		}
	}
}
