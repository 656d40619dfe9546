package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/avashisk/prepdeck/internal/analysis"
	"github.com/avashisk/prepdeck/internal/mastery"
	"github.com/avashisk/prepdeck/internal/srs"
	"github.com/avashisk/prepdeck/internal/store"
)

var (
	// ErrUserNotFound is returned by mutating operations invoked for an
	// unknown user ID.
	ErrUserNotFound = errors.New("progress: user not found")

	// ErrAttemptNotFound is returned when an operation references a quiz
	// attempt that was never started.
	ErrAttemptNotFound = errors.New("progress: quiz attempt not found")
)

// Store exposes all user-scoped progress operations over the persisted
// root record. Every operation is one load → mutate → guarded-save
// cycle.
type Store struct {
	repo store.ProfileRepo
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall-clock source. Tests use this to pin time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a progress store over the given repository.
func New(repo store.ProfileRepo, opts ...Option) *Store {
	s := &Store{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads and decodes the root record. A missing record yields the
// initial empty state. A corrupt record is abandoned: the repository is
// reset and an empty state returned (local data is not recoverable).
func (s *Store) load(ctx context.Context) (*RootRecord, int64, error) {
	rec, err := s.repo.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	if rec == nil {
		return newRoot(), 0, nil
	}

	root, err := decodeRoot(rec.Data)
	if err != nil {
		if resetErr := s.repo.Reset(ctx); resetErr != nil {
			return nil, 0, fmt.Errorf("reset corrupt record: %w", resetErr)
		}
		return newRoot(), 0, nil
	}
	return root, rec.Version, nil
}

func (s *Store) save(ctx context.Context, root *RootRecord, version int64) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}
	if _, err := s.repo.Save(ctx, data, version); err != nil {
		return err
	}
	return nil
}

// update runs one read-modify-write cycle scoped to an existing user.
func (s *Store) update(ctx context.Context, userID string, fn func(p *UserProfile) error) error {
	root, version, err := s.load(ctx)
	if err != nil {
		return err
	}
	p, ok := root.Users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err := fn(p); err != nil {
		return err
	}
	return s.save(ctx, root, version)
}

// Users returns all profiles sorted by name.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	root, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(root.Users))
	for id, p := range root.Users {
		users = append(users, User{ID: id, Name: p.Name})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// CurrentUser returns the active user ID, or "" when none is selected.
func (s *Store) CurrentUser(ctx context.Context) (string, error) {
	root, _, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return root.CurrentUser, nil
}

// AddUser creates a profile with a fresh ID and makes it current.
func (s *Store) AddUser(ctx context.Context, name string) (string, error) {
	root, version, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	root.Users[id] = NewProfile(name)
	root.CurrentUser = id
	if err := s.save(ctx, root, version); err != nil {
		return "", err
	}
	return id, nil
}

// SetCurrentUser switches the active profile.
func (s *Store) SetCurrentUser(ctx context.Context, userID string) error {
	root, version, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := root.Users[userID]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	root.CurrentUser = userID
	return s.save(ctx, root, version)
}

// GetProfile returns the user's profile, or a fresh empty profile when
// the user is unknown. It never creates the user as a side effect.
func (s *Store) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	root, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := root.Users[userID]; ok {
		return p, nil
	}
	return NewProfile(""), nil
}

// RateFlashcard records a 1-5 self-rating for a card: the scheduler
// computes the card's next review state and the owning topic's mastery
// is recomputed, all within one atomic write.
func (s *Store) RateFlashcard(ctx context.Context, userID, topicID, topicTitle, itemID string, rating int) (srs.Item, error) {
	var updated srs.Item
	err := s.update(ctx, userID, func(p *UserProfile) error {
		tp, ok := p.Chapters[topicID]
		if !ok {
			tp = &TopicProgress{Title: topicTitle, Flashcards: make(map[string]srs.Item)}
			p.Chapters[topicID] = tp
		}
		if topicTitle != "" {
			tp.Title = topicTitle
		}

		item, ok := tp.Flashcards[itemID]
		if !ok {
			item = srs.NewItem(itemID, topicID)
		}

		var err error
		item, err = srs.Schedule(item, rating, s.now())
		if err != nil {
			return err
		}

		tp.Flashcards[itemID] = item
		tp.Mastery = mastery.TopicScore(tp.Items())
		updated = item
		return nil
	})
	return updated, err
}

// StartQuizAttempt records a new attempt. Starting an attempt that
// already exists is a no-op so re-entry cannot reset flag state.
func (s *Store) StartQuizAttempt(ctx context.Context, userID, attemptID, kind string, questions []AttemptQuestion) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		if _, ok := p.QuizAttempts[attemptID]; ok {
			return nil
		}
		p.QuizAttempts[attemptID] = &QuizAttempt{
			AttemptID: attemptID,
			Kind:      kind,
			StartTime: s.now(),
			Questions: questions,
		}
		return nil
	})
}

// SetFlagged toggles the review flag on one question within an attempt.
func (s *Store) SetFlagged(ctx context.Context, userID, attemptID, questionID string, flagged bool) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		at, ok := p.QuizAttempts[attemptID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAttemptNotFound, attemptID)
		}
		for i := range at.Questions {
			if at.Questions[i].QuestionID == questionID {
				at.Questions[i].Flagged = flagged
				break
			}
		}
		return nil
	})
}

// CompleteAttempt scores an attempt and stores its results. Completing
// an already-completed attempt is a no-op: results are written exactly
// once.
func (s *Store) CompleteAttempt(ctx context.Context, userID, attemptID string, answers []analysis.Answer) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		at, ok := p.QuizAttempts[attemptID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAttemptNotFound, attemptID)
		}
		if at.Completed {
			return nil
		}

		score := 0
		for _, a := range answers {
			if a.Correct {
				score++
			}
		}
		total := len(at.Questions)
		if total == 0 {
			total = len(answers)
		}
		var pct float64
		if total > 0 {
			pct = float64(score) / float64(total) * 100
		}

		end := s.now()
		at.Completed = true
		at.EndTime = &end
		at.Results = &AttemptResults{
			Score:      score,
			Total:      total,
			Percentage: pct,
			Answers:    answers,
		}
		return nil
	})
}

// LogActivity prepends an entry to the recent-activity feed (capped at
// the ten newest) and advances the study streak. The returned result
// tells the UI whether to celebrate.
func (s *Store) LogActivity(ctx context.Context, userID string, activity Activity) (StreakResult, error) {
	var result StreakResult
	err := s.update(ctx, userID, func(p *UserProfile) error {
		activity.Date = s.now()
		p.RecentActivity = append([]Activity{activity}, p.RecentActivity...)
		if len(p.RecentActivity) > maxRecentActivity {
			p.RecentActivity = p.RecentActivity[:maxRecentActivity]
		}
		result = touchStreak(&p.StudyStreak, s.now())
		return nil
	})
	return result, err
}

// MarkWelcomeSeen records that the user has dismissed the welcome note.
func (s *Store) MarkWelcomeSeen(ctx context.Context, userID string) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		p.HasSeenWelcome = true
		return nil
	})
}

// CacheExplanation stores an AI explanation for a card under its prompt
// type. The core never calls the AI service itself; this is a
// pass-through annotation.
func (s *Store) CacheExplanation(ctx context.Context, userID, topicID, itemID, promptType, text string) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		tp, ok := p.Chapters[topicID]
		if !ok {
			tp = &TopicProgress{Flashcards: make(map[string]srs.Item)}
			p.Chapters[topicID] = tp
		}
		if tp.Explanations == nil {
			tp.Explanations = make(map[string]map[string]string)
		}
		if tp.Explanations[itemID] == nil {
			tp.Explanations[itemID] = make(map[string]string)
		}
		tp.Explanations[itemID][promptType] = text
		return nil
	})
}

// Explanation looks up a cached AI explanation.
func (s *Store) Explanation(ctx context.Context, userID, topicID, itemID, promptType string) (string, bool, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", false, err
	}
	tp, ok := p.Chapters[topicID]
	if !ok || tp.Explanations == nil {
		return "", false, nil
	}
	text, ok := tp.Explanations[itemID][promptType]
	return text, ok, nil
}

// ResetUser wipes one user's profile back to its initial empty state
// without touching other users.
func (s *Store) ResetUser(ctx context.Context, userID string) error {
	return s.update(ctx, userID, func(p *UserProfile) error {
		*p = *NewProfile(p.Name)
		return nil
	})
}

// DueItems returns every flashcard due for review across all of the
// user's chapters, most overdue first.
func (s *Store) DueItems(ctx context.Context, userID string, now time.Time) ([]srs.Item, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	var due []srs.Item
	for _, tp := range p.Chapters {
		due = append(due, srs.Due(tp.Items(), now)...)
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].OverdueDays(now) != due[j].OverdueDays(now) {
			return due[i].OverdueDays(now) > due[j].OverdueDays(now)
		}
		return due[i].ItemID < due[j].ItemID
	})
	return due, nil
}

// PerformanceReport runs the analyzer over the user's completed quiz
// attempts.
func (s *Store) PerformanceReport(ctx context.Context, userID string) (analysis.Report, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return analysis.Report{}, err
	}
	attempts := make([]analysis.Attempt, 0, len(p.QuizAttempts))
	for _, at := range p.QuizAttempts {
		a := analysis.Attempt{Completed: at.Completed}
		if at.Results != nil {
			a.Answers = at.Results.Answers
		}
		attempts = append(attempts, a)
	}
	return analysis.Analyze(attempts), nil
}
