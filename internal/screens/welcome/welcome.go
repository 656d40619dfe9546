package welcome

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// WelcomeScreen greets a brand-new profile once, then hands over to the
// home screen.
type WelcomeScreen struct {
	store       *progress.Store
	userID      string
	homeFactory func() screen.Screen
	dismissed   bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that transitions to the screen produced
// by homeFactory.
func New(store *progress.Store, userID string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		store:       store,
		userID:      userID,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); !ok {
		return w, nil
	}
	if w.dismissed {
		return w, nil
	}
	w.dismissed = true

	// The note shows only once per profile.
	_ = w.store.MarkWelcomeSeen(context.Background(), w.userID)

	homeScreen := w.homeFactory()
	return w, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width))

	sections = append(sections, "",
		theme.Title.Render("Welcome"),
		"",
		lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(min(width-8, 56)).
			Align(lipgloss.Center).
			Render("Study flashcards, sit timed mock exams, and let spaced repetition decide what you review next. A little every day beats a lot the night before."),
		"",
		lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to start"),
	)

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
