package learning

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/srs"
	"github.com/avashisk/prepdeck/internal/ui/layout"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// card is one deck entry with enough context to rate and explain it.
type card struct {
	content.Flashcard
	TopicID    string
	TopicTitle string
}

// explainReadyMsg carries an AI explanation result back to the screen.
type explainReadyMsg struct {
	CardID     string
	PromptType string
	Text       string
	Err        error
}

// LearningScreen runs one flashcard session: flip, self-rate 1-5, and
// optionally ask the AI tutor about the current card.
type LearningScreen struct {
	store      *progress.Store
	explain    *explain.Service
	userID     string
	dueSession bool

	deck    []card
	index   int
	flipped bool
	rated   int
	done    bool
	logged  bool
	errMsg  string

	lastItem  *srs.Item
	streak    *progress.StreakResult
	aiText    string
	aiLoading bool
	aiErr     string
}

var _ screen.Screen = (*LearningScreen)(nil)
var _ screen.KeyHintProvider = (*LearningScreen)(nil)

// NewTopicSession opens every flashcard of one chapter.
func NewTopicSession(store *progress.Store, syllabus []content.Topic, explainSvc *explain.Service, topicID string) *LearningScreen {
	l := newScreen(store, explainSvc, false)
	topic, ok := content.FindTopic(syllabus, topicID)
	if !ok {
		l.errMsg = fmt.Sprintf("unknown chapter %q", topicID)
		return l
	}
	for _, fc := range topic.Flashcards {
		l.deck = append(l.deck, card{Flashcard: fc, TopicID: topic.ID, TopicTitle: topic.Title})
	}
	return l
}

// NewDueSession opens every card currently due, most overdue first.
func NewDueSession(store *progress.Store, syllabus []content.Topic, explainSvc *explain.Service) *LearningScreen {
	l := newScreen(store, explainSvc, true)
	if l.userID == "" {
		return l
	}

	due, err := store.DueItems(context.Background(), l.userID, time.Now())
	if err != nil {
		l.errMsg = err.Error()
		return l
	}

	// Index flashcards by topic and ID to resolve due items back to text.
	byTopic := make(map[string]content.Topic)
	for _, t := range syllabus {
		byTopic[t.ID] = t
	}
	for _, item := range due {
		topic, ok := byTopic[item.TopicID]
		if !ok {
			continue
		}
		for _, fc := range topic.Flashcards {
			if fc.ID == item.ItemID {
				l.deck = append(l.deck, card{Flashcard: fc, TopicID: topic.ID, TopicTitle: topic.Title})
				break
			}
		}
	}
	return l
}

func newScreen(store *progress.Store, explainSvc *explain.Service, dueSession bool) *LearningScreen {
	l := &LearningScreen{
		store:      store,
		explain:    explainSvc,
		dueSession: dueSession,
	}
	userID, err := store.CurrentUser(context.Background())
	if err != nil {
		l.errMsg = err.Error()
		return l
	}
	if userID == "" {
		l.errMsg = "no active user"
		return l
	}
	l.userID = userID
	return l
}

func (l *LearningScreen) Init() tea.Cmd {
	return nil
}

func (l *LearningScreen) Title() string {
	if l.dueSession {
		return "Due Cards"
	}
	return "Flashcards"
}

func (l *LearningScreen) KeyHints() []layout.KeyHint {
	switch {
	case l.errMsg != "" || l.done || len(l.deck) == 0:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case !l.flipped:
		return []layout.KeyHint{
			{Key: "Space", Description: "Flip"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		hints := []layout.KeyHint{{Key: "1-5", Description: "Rate recall"}}
		if l.explain != nil && l.explain.Available() {
			hints = append(hints,
				layout.KeyHint{Key: "E", Description: "Explain simply"},
				layout.KeyHint{Key: "X", Description: "Example scenario"},
			)
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
}

func (l *LearningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explainReadyMsg:
		return l.handleExplainReady(msg)
	case tea.KeyMsg:
		return l.handleKey(msg)
	}
	return l, nil
}

func (l *LearningScreen) handleExplainReady(msg explainReadyMsg) (screen.Screen, tea.Cmd) {
	// Ignore stale replies after the deck moved on.
	if l.index >= len(l.deck) || l.deck[l.index].ID != msg.CardID {
		return l, nil
	}
	l.aiLoading = false
	if msg.Err != nil {
		l.aiErr = msg.Err.Error()
		return l, nil
	}
	l.aiText = msg.Text
	return l, nil
}

func (l *LearningScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if l.errMsg != "" || len(l.deck) == 0 {
		return l, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if l.done {
		return l, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if !l.flipped {
		switch key {
		case "space", " ", "enter":
			l.flipped = true
		}
		return l, nil
	}

	switch key {
	case "1", "2", "3", "4", "5":
		return l.rate(int(key[0] - '0'))
	case "e", "E":
		return l.askAI(explain.PromptSimplify)
	case "x", "X":
		return l.askAI(explain.PromptScenario)
	}
	return l, nil
}

// rate records the self-rating and advances the deck.
func (l *LearningScreen) rate(rating int) (screen.Screen, tea.Cmd) {
	c := l.deck[l.index]
	item, err := l.store.RateFlashcard(context.Background(), l.userID, c.TopicID, c.TopicTitle, c.ID, rating)
	if err != nil {
		l.errMsg = err.Error()
		return l, nil
	}
	l.lastItem = &item
	l.rated++
	return l.advance()
}

func (l *LearningScreen) advance() (screen.Screen, tea.Cmd) {
	l.flipped = false
	l.aiText = ""
	l.aiErr = ""
	l.aiLoading = false
	l.index++

	if l.index >= len(l.deck) {
		l.done = true
		return l, l.logSession()
	}
	return l, nil
}

// logSession records the finished session in the activity feed exactly
// once.
func (l *LearningScreen) logSession() tea.Cmd {
	if l.logged || l.rated == 0 {
		return nil
	}
	l.logged = true

	activityType := "flashcards"
	chapter := ""
	topicID := ""
	if l.dueSession {
		activityType = "due-flashcards"
		chapter = "Due cards"
	} else if len(l.deck) > 0 {
		chapter = l.deck[0].TopicTitle
		topicID = l.deck[0].TopicID
	}

	res, err := l.store.LogActivity(context.Background(), l.userID, progress.Activity{
		Type:    activityType,
		Chapter: chapter,
		TopicID: topicID,
		Score:   fmt.Sprintf("%d cards", l.rated),
	})
	if err != nil {
		l.errMsg = err.Error()
		return nil
	}
	l.streak = &res
	return nil
}

// askAI requests an explanation for the current card.
func (l *LearningScreen) askAI(promptType string) (screen.Screen, tea.Cmd) {
	if l.explain == nil || !l.explain.Available() || l.aiLoading {
		return l, nil
	}

	c := l.deck[l.index]
	l.aiLoading = true
	l.aiErr = ""
	l.aiText = ""

	userID := l.userID
	svc := l.explain
	return l, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		text, _, err := svc.Explain(ctx, userID, c.TopicID, c.ID, c.Term, c.Definition, promptType)
		return explainReadyMsg{CardID: c.ID, PromptType: promptType, Text: text, Err: err}
	}
}

func (l *LearningScreen) View(width, height int) string {
	if l.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", l.errMsg))
	}

	if len(l.deck) == 0 {
		text := "No flashcards here yet."
		if l.dueSession {
			text = "Nothing due. Come back tomorrow!"
		}
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n" + text)
	}

	if l.done {
		return l.renderDone(width)
	}

	return l.renderCard(width, height)
}

func (l *LearningScreen) renderCard(width, height int) string {
	c := l.deck[l.index]

	var b strings.Builder

	counter := fmt.Sprintf("Card %d/%d", l.index+1, len(l.deck))
	info := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + c.TopicTitle)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)
	pad := width - lipgloss.Width(info) - lipgloss.Width(right) - 4
	if pad > 0 {
		b.WriteString(info + strings.Repeat(" ", pad) + right)
	} else {
		b.WriteString(info)
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Scheduling feedback from the previous rating.
	if l.lastItem != nil && !l.flipped {
		days := l.lastItem.IntervalDays
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("next review of the last card in %d %s", days, unit)))
		b.WriteString("\n\n")
	}

	cardWidth := min(width-8, 64)
	var face string
	if l.flipped {
		face = lipgloss.NewStyle().Foreground(theme.TextDim).Render(c.Term) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Render(c.Definition)
	} else {
		face = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Term)
	}
	cardBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cardWidth).
		Padding(1, 2).
		Align(lipgloss.Center).
		Render(face)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cardBox))
	b.WriteString("\n\n")

	if !l.flipped {
		b.WriteString(theme.Hint.
			Width(width).
			Align(lipgloss.Center).
			Render("press space to flip"))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("How well did you know it?  1 blank ... 5 perfect"))

	if l.aiLoading {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Asking the tutor..."))
	}
	if l.aiErr != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("Tutor unavailable: " + l.aiErr))
	}
	if l.aiText != "" {
		b.WriteString("\n\n")
		aiBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Width(cardWidth).
			Padding(0, 2).
			Foreground(theme.Text).
			Render(l.aiText)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, aiBox))
	}

	return b.String()
}

func (l *LearningScreen) renderDone(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Bold(true).
		Render("Session complete!"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("You reviewed %d cards.", l.rated)))
	b.WriteString("\n\n")
	if l.streak != nil && l.streak.Extended {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Bold(true).
			Render(fmt.Sprintf("Streak extended: %d day(s) in a row!", l.streak.Current)))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Press any key to go back."))
	return b.String()
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
