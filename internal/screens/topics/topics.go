package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/progress"
	qz "github.com/avashisk/prepdeck/internal/quiz"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/screens/learning"
	quizscreen "github.com/avashisk/prepdeck/internal/screens/quiz"
	"github.com/avashisk/prepdeck/internal/ui/layout"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// Mode selects what happens when a chapter is picked.
type Mode int

const (
	// ModeStudy opens the chapter's flashcards.
	ModeStudy Mode = iota
	// ModeQuiz starts a single-chapter quiz.
	ModeQuiz
	// ModeCustom multi-selects chapters for a combined quiz.
	ModeCustom
)

// TopicsScreen lists syllabus chapters with per-chapter mastery.
type TopicsScreen struct {
	store   *progress.Store
	topics  []content.Topic
	explain *explain.Service
	mode    Mode

	chapters []content.Topic
	mastery  map[string]float64
	selected int
	checked  map[string]bool
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a new TopicsScreen.
func New(store *progress.Store, syllabus []content.Topic, explainSvc *explain.Service, mode Mode) *TopicsScreen {
	t := &TopicsScreen{
		store:    store,
		topics:   syllabus,
		explain:  explainSvc,
		mode:     mode,
		chapters: content.Chapters(syllabus),
		checked:  make(map[string]bool),
	}
	t.loadMastery()
	return t
}

func (t *TopicsScreen) loadMastery() {
	t.mastery = make(map[string]float64)
	ctx := context.Background()
	userID, err := t.store.CurrentUser(ctx)
	if err != nil || userID == "" {
		return
	}
	profile, err := t.store.GetProfile(ctx, userID)
	if err != nil {
		return
	}
	for id, tp := range profile.Chapters {
		t.mastery[id] = tp.Mastery
	}
}

// Init refreshes mastery when the screen is re-exposed after a study or
// quiz session.
func (t *TopicsScreen) Init() tea.Cmd {
	t.loadMastery()
	return nil
}

func (t *TopicsScreen) Title() string {
	switch t.mode {
	case ModeStudy:
		return "Flashcards"
	case ModeCustom:
		return "Custom Quiz"
	default:
		return "Chapter Quiz"
	}
}

func (t *TopicsScreen) KeyHints() []layout.KeyHint {
	if t.mode == ModeCustom {
		return []layout.KeyHint{
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Start quiz"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (t *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if t.selected > 0 {
			t.selected--
		}
	case "down", "j":
		if t.selected < len(t.chapters)-1 {
			t.selected++
		}
	case "space", " ":
		if t.mode == ModeCustom && t.selected < len(t.chapters) {
			id := t.chapters[t.selected].ID
			t.checked[id] = !t.checked[id]
		}
	case "enter":
		return t.pick()
	}
	return t, nil
}

func (t *TopicsScreen) pick() (screen.Screen, tea.Cmd) {
	if len(t.chapters) == 0 {
		return t, nil
	}

	switch t.mode {
	case ModeStudy:
		topic := t.chapters[t.selected]
		if len(topic.Flashcards) == 0 {
			return t, nil
		}
		next := learning.NewTopicSession(t.store, t.topics, t.explain, topic.ID)
		return t, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case ModeCustom:
		var ids []string
		for _, ch := range t.chapters {
			if t.checked[ch.ID] {
				ids = append(ids, ch.ID)
			}
		}
		if len(ids) == 0 {
			return t, nil
		}
		next := quizscreen.New(t.store, t.topics, qz.Config{Type: qz.TypeCustom, TopicIDs: ids})
		return t, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	default:
		topic := t.chapters[t.selected]
		next := quizscreen.New(t.store, t.topics, qz.Config{Type: qz.TypeChapter, TopicID: topic.ID})
		return t, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
}

func (t *TopicsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	heading := "Pick a chapter"
	if t.mode == ModeCustom {
		heading = "Pick chapters, then press Enter"
	}
	b.WriteString(theme.Title.Width(width).Render(heading))
	b.WriteString("\n\n")

	var list strings.Builder
	for i, ch := range t.chapters {
		pct := int(t.mastery[ch.ID] * 100)

		var mark string
		if t.mode == ModeCustom {
			if t.checked[ch.ID] {
				mark = "[x] "
			} else {
				mark = "[ ] "
			}
		}

		line := fmt.Sprintf("%s%-36s %3d%%", mark, ch.Title, pct)
		if i == t.selected {
			list.WriteString(theme.Selected.Render("  ▸ " + line))
		} else {
			list.WriteString(theme.Unselected.Render("    " + line))
		}
		list.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list.String()))

	if t.mode == ModeStudy && t.selected < len(t.chapters) {
		topic := t.chapters[t.selected]
		info := fmt.Sprintf("%d flashcards, %d questions", len(topic.Flashcards), len(topic.Questions))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(info))
	}

	return b.String()
}
