package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/screens/home"
	"github.com/avashisk/prepdeck/internal/screens/users"
	"github.com/avashisk/prepdeck/internal/screens/welcome"
	"github.com/avashisk/prepdeck/internal/ui/layout"
)

// Options carries the services the TUI runs against.
type Options struct {
	Progress *progress.Store
	Topics   []content.Topic
	Explain  *explain.Service
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
	streak int
	due    int
}

// newAppModel creates a new AppModel with the appropriate initial
// screen: the user picker when no user is active, the welcome note on a
// user's first run, and the home screen otherwise.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(opts.Progress, opts.Topics, opts.Explain)
	}

	ctx := context.Background()
	var initial screen.Screen
	userID, err := opts.Progress.CurrentUser(ctx)
	switch {
	case err != nil || userID == "":
		initial = users.New(opts.Progress, homeFactory)
	default:
		profile, perr := opts.Progress.GetProfile(ctx, userID)
		if perr == nil && !profile.HasSeenWelcome {
			initial = welcome.New(opts.Progress, userID, homeFactory)
		} else {
			initial = homeFactory()
		}
	}

	m := AppModel{
		opts:   opts,
		router: router.New(initial),
	}
	m.refreshHeaderStats()
	return m
}

// refreshHeaderStats reloads the streak and due-card counters shown in
// the header. Called after every keypress so the numbers never go stale
// mid-session; the profile record is small enough that the reload is
// not noticeable.
func (m *AppModel) refreshHeaderStats() {
	ctx := context.Background()
	m.streak = 0
	m.due = 0

	userID, err := m.opts.Progress.CurrentUser(ctx)
	if err != nil || userID == "" {
		return
	}
	profile, err := m.opts.Progress.GetProfile(ctx, userID)
	if err != nil {
		return
	}
	m.streak = profile.StudyStreak.Current

	due, err := m.opts.Progress.DueItems(ctx, userID, time.Now())
	if err != nil {
		return
	}
	m.due = len(due)
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if ei, ok := m.router.Active().(screen.EscInterceptor); ok && ei.InterceptEsc() {
				break // screen handles Esc itself
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.refreshHeaderStats()
	}
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.streak, m.due, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
