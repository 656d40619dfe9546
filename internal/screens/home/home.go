package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/mastery"
	"github.com/avashisk/prepdeck/internal/progress"
	qz "github.com/avashisk/prepdeck/internal/quiz"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/screens/dashboard"
	"github.com/avashisk/prepdeck/internal/screens/learning"
	quizscreen "github.com/avashisk/prepdeck/internal/screens/quiz"
	"github.com/avashisk/prepdeck/internal/screens/topics"
	"github.com/avashisk/prepdeck/internal/screens/users"
	"github.com/avashisk/prepdeck/internal/ui/components"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// HomeScreen is the main menu: study entry points, exam modes, and a
// snapshot of the active user's progress.
type HomeScreen struct {
	store   *progress.Store
	topics  []content.Topic
	explain *explain.Service

	menu     components.Menu
	userName string
	streak   int
	dueCount int
	overall  float64
	recent   []progress.Activity
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(store *progress.Store, syllabus []content.Topic, explainSvc *explain.Service) *HomeScreen {
	h := &HomeScreen{
		store:   store,
		topics:  syllabus,
		explain: explainSvc,
	}
	h.loadStats()
	h.buildMenu()
	return h
}

// loadStats reloads the profile-derived numbers shown on the screen.
func (h *HomeScreen) loadStats() {
	ctx := context.Background()

	h.userName = ""
	h.streak = 0
	h.dueCount = 0
	h.overall = 0
	h.recent = nil

	userID, err := h.store.CurrentUser(ctx)
	if err != nil || userID == "" {
		return
	}
	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		return
	}

	h.userName = profile.Name
	h.streak = profile.StudyStreak.Current
	h.recent = profile.RecentActivity

	var scores []float64
	for _, t := range content.Chapters(h.topics) {
		if tp, ok := profile.Chapters[t.ID]; ok {
			scores = append(scores, tp.Mastery)
		} else {
			scores = append(scores, 0)
		}
	}
	h.overall = mastery.Overall(scores)

	due, err := h.store.DueItems(ctx, userID, time.Now())
	if err == nil {
		h.dueCount = len(due)
	}
}

func (h *HomeScreen) buildMenu() {
	dueLabel := "REVIEW DUE CARDS"
	if h.dueCount > 0 {
		dueLabel = fmt.Sprintf("REVIEW DUE CARDS (%d)", h.dueCount)
	}

	push := func(s screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}
	pushQuiz := func(quizType string) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: quizscreen.New(h.store, h.topics, qz.Config{Type: quizType}),
				}
			}
		}
	}

	items := []components.MenuItem{
		{Label: "STUDY FLASHCARDS", Action: func() tea.Cmd {
			return push(topics.New(h.store, h.topics, h.explain, topics.ModeStudy))()
		}},
		{Label: dueLabel, Disabled: h.dueCount == 0, Action: func() tea.Cmd {
			return push(learning.NewDueSession(h.store, h.topics, h.explain))()
		}},
		{Label: "CHAPTER QUIZ", Action: func() tea.Cmd {
			return push(topics.New(h.store, h.topics, h.explain, topics.ModeQuiz))()
		}},
		{Label: "CUSTOM QUIZ", Action: func() tea.Cmd {
			return push(topics.New(h.store, h.topics, h.explain, topics.ModeCustom))()
		}},
		{Label: "QUICK QUIZ", Action: pushQuiz(qz.TypeQuick)},
		{Label: "MOCK EXAM", Action: pushQuiz(qz.TypeMock)},
		{Label: "SPECIMEN EXAM", Action: pushQuiz(qz.TypeSpecimen)},
		{Label: "MY PROGRESS", Action: func() tea.Cmd {
			return push(dashboard.New(h.store, h.topics))()
		}},
		{Label: "SWITCH USER", Action: func() tea.Cmd {
			homeFactory := func() screen.Screen {
				return New(h.store, h.topics, h.explain)
			}
			return push(users.New(h.store, homeFactory))()
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

// Init refreshes stats; it runs again each time the screen is exposed
// by a pop, so the numbers reflect whatever the user just finished.
func (h *HomeScreen) Init() tea.Cmd {
	h.loadStats()
	h.buildMenu()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := theme.Title.Width(width).Render("PREPDECK")
	subtitle := theme.Subtitle.Width(width).Render("Insurance exam preparation")
	sections = append(sections, title+"\n"+subtitle)

	if h.userName != "" {
		stats := fmt.Sprintf("%s   mastery %d%%   streak %d day   %d due",
			h.userName, int(h.overall*100), h.streak, h.dueCount)
		sections = append(sections, lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(stats))
	}

	menu := lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View())
	sections = append(sections, menu)

	if len(h.recent) > 0 {
		sections = append(sections, h.renderRecent(width))
	}

	return "\n" + strings.Join(sections, "\n\n")
}

// renderRecent shows the newest activity entries.
func (h *HomeScreen) renderRecent(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Recent activity"))
	b.WriteString("\n")

	n := len(h.recent)
	if n > 3 {
		n = 3
	}
	for _, a := range h.recent[:n] {
		line := formatActivity(a)
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.TrimRight(b.String(), "\n"))
}

func formatActivity(a progress.Activity) string {
	label := a.Chapter
	if label == "" {
		label = a.Type
	}
	when := a.Date.Format("Jan 2")
	if a.Score != "" {
		return fmt.Sprintf("%s  %s  %s", when, label, a.Score)
	}
	return fmt.Sprintf("%s  %s", when, label)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
