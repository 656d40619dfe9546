package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/analysis"
	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/progress"
	qz "github.com/avashisk/prepdeck/internal/quiz"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/screens/results"
	"github.com/avashisk/prepdeck/internal/ui/components"
	"github.com/avashisk/prepdeck/internal/ui/layout"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// timerTickMsg drives the exam countdown.
type timerTickMsg time.Time

// QuizScreen runs one quiz attempt from first question to results.
type QuizScreen struct {
	store  *progress.Store
	userID string
	cfg    qz.Config

	questions []qz.Question
	attemptID string
	kind      string
	deadline  time.Time

	index       int
	mc          components.MultiChoice
	answers     []analysis.Answer
	flagged     map[string]bool
	quitConfirm bool
	finished    bool
	timeUp      bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscInterceptor = (*QuizScreen)(nil)

// New builds the question set, registers the attempt, and presents the
// first question.
func New(store *progress.Store, syllabus []content.Topic, cfg qz.Config) *QuizScreen {
	s := &QuizScreen{
		store:   store,
		cfg:     cfg,
		kind:    cfg.Type,
		flagged: make(map[string]bool),
	}

	ctx := context.Background()
	userID, err := store.CurrentUser(ctx)
	if err != nil || userID == "" {
		s.errMsg = "no active user"
		return s
	}
	s.userID = userID

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	questions, err := qz.Build(syllabus, cfg, rng)
	if err != nil {
		s.errMsg = err.Error()
		return s
	}

	// The specimen paper keeps its printed option order.
	if cfg.Type != qz.TypeSpecimen {
		for i := range questions {
			questions[i] = qz.ShuffleOptions(questions[i], rng)
		}
	}
	s.questions = questions

	s.attemptID = qz.NewAttemptID()
	slots := make([]progress.AttemptQuestion, len(questions))
	for i, q := range questions {
		slots[i] = progress.AttemptQuestion{QuestionID: q.ID, TopicID: q.TopicID}
	}
	if err := store.StartQuizAttempt(ctx, userID, s.attemptID, cfg.Type, slots); err != nil {
		s.errMsg = err.Error()
		return s
	}

	start := time.Now()
	s.deadline = qz.Deadline(cfg.Type, start)
	s.loadQuestion()
	return s
}

func (s *QuizScreen) loadQuestion() {
	q := s.questions[s.index]
	s.mc = components.NewMultiChoice(q.Text, q.Options, q.CorrectIndex())
}

func (s *QuizScreen) Init() tea.Cmd {
	if !s.deadline.IsZero() {
		return tickCmd()
	}
	return nil
}

func (s *QuizScreen) Title() string {
	switch s.kind {
	case qz.TypeMock:
		return "Mock Exam"
	case qz.TypeSpecimen:
		return "Specimen Exam"
	case qz.TypeQuick:
		return "Quick Quiz"
	case qz.TypeCustom:
		return "Custom Quiz"
	default:
		return "Quiz"
	}
}

// InterceptEsc turns Esc into a quit confirmation while the quiz runs.
func (s *QuizScreen) InterceptEsc() bool {
	return s.errMsg == "" && !s.finished
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.mc.Submitted:
		return []layout.KeyHint{{Key: "any key", Description: "Next question"}}
	default:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Answer"},
			{Key: "F", Description: "Flag"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.finished || s.errMsg != "" || s.deadline.IsZero() {
		return s, nil
	}
	if !time.Now().Before(s.deadline) {
		s.timeUp = true
		return s.finish()
	}
	return s, tickCmd()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.finished {
		return s, nil
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.quitConfirm = true
		return s, nil
	}

	// Feedback shown; any key advances.
	if s.mc.Submitted {
		return s.nextQuestion()
	}

	switch key {
	case "f", "F":
		q := s.questions[s.index]
		s.flagged[q.ID] = !s.flagged[q.ID]
		_ = s.store.SetFlagged(context.Background(), s.userID, s.attemptID, q.ID, s.flagged[q.ID])
		return s, nil
	case "1", "2", "3", "4":
		idx := int(key[0] - '1')
		if idx < len(s.mc.Options) {
			s.mc.Selected = idx
			s.mc.Submitted = true
			s.mc.ChosenIndex = idx
			s.recordAnswer()
		}
		return s, nil
	}

	was := s.mc.Submitted
	var cmd tea.Cmd
	s.mc, cmd = s.mc.Update(msg)
	if !was && s.mc.Submitted {
		s.recordAnswer()
	}
	return s, cmd
}

func (s *QuizScreen) recordAnswer() {
	q := s.questions[s.index]
	s.answers = append(s.answers, analysis.Answer{
		QuestionID: q.ID,
		TopicID:    q.TopicID,
		Correct:    s.mc.IsCorrect(),
		LOID:       q.LOID,
	})
}

func (s *QuizScreen) nextQuestion() (screen.Screen, tea.Cmd) {
	if s.timeUp || s.index+1 >= len(s.questions) {
		return s.finish()
	}
	s.index++
	s.loadQuestion()
	return s, nil
}

// finish scores the attempt, logs it, and swaps in the results screen.
func (s *QuizScreen) finish() (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	s.finished = true

	ctx := context.Background()
	if err := s.store.CompleteAttempt(ctx, s.userID, s.attemptID, s.answers); err != nil {
		s.errMsg = err.Error()
		s.finished = false
		return s, nil
	}

	score := 0
	for _, a := range s.answers {
		if a.Correct {
			score++
		}
	}
	_, _ = s.store.LogActivity(ctx, s.userID, progress.Activity{
		Type:    "quiz",
		Chapter: s.Title(),
		TopicID: s.cfg.TopicID,
		Score:   fmt.Sprintf("%d/%d", score, len(s.questions)),
	})

	next := results.New(s.questions, s.answers, s.flagged, s.Title(), s.timeUp)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", s.errMsg))
	}
	if s.finished || len(s.questions) == 0 {
		return ""
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	q := s.questions[s.index]

	var b strings.Builder

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Q %d/%d", s.index+1, len(s.questions)))

	var rightParts []string
	if s.flagged[q.ID] {
		rightParts = append(rightParts, lipgloss.NewStyle().Foreground(theme.Accent).Render("⚑ flagged"))
	}
	if !s.deadline.IsZero() {
		remaining := time.Until(s.deadline)
		if remaining < 0 {
			remaining = 0
		}
		mins := int(remaining.Minutes())
		secs := int(remaining.Seconds()) % 60
		style := theme.TextDim
		if remaining < 10*time.Minute {
			style = theme.Error
		}
		rightParts = append(rightParts, lipgloss.NewStyle().
			Foreground(style).
			Render(fmt.Sprintf("⏱ %d:%02d", mins, secs)))
	}
	right := strings.Join(rightParts, "   ")

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad > 0 {
		b.WriteString(left + strings.Repeat(" ", pad) + right)
	} else {
		b.WriteString(left)
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	mcView := s.mc.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mcView))

	if s.mc.Submitted {
		b.WriteString("\n")
		if s.mc.IsCorrect() {
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Success).
				Bold(true).
				Render("Correct!"))
		} else {
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Error).
				Bold(true).
				Render("Not quite"))
		}
		if q.Explanation != "" {
			b.WriteString("\n\n")
			exp := lipgloss.NewStyle().
				Width(min(width-8, 70)).
				Foreground(theme.Text).
				Render(q.Explanation)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Press any key to continue..."))
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Abandon this quiz?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("The attempt stays incomplete and is excluded from your stats."))
	b.WriteString("\n\n")
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		components.NewButton("Y  Yes, abandon", true, nil).View(),
		"   ",
		components.NewButton("N  Keep going", false, nil).View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))
	return b.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
