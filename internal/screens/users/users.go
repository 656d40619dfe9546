package users

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/router"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/screens/welcome"
	"github.com/avashisk/prepdeck/internal/ui/components"
	"github.com/avashisk/prepdeck/internal/ui/layout"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeResetConfirm
)

// UsersScreen lists profiles and lets the learner switch, create, or
// reset one. Selecting a profile resets the navigation stack so no
// screen built for the previous user survives the switch.
type UsersScreen struct {
	store       *progress.Store
	homeFactory func() screen.Screen

	users     []progress.User
	currentID string
	selected  int
	mode      mode
	input     components.TextInput
	errMsg    string
}

var _ screen.Screen = (*UsersScreen)(nil)
var _ screen.KeyHintProvider = (*UsersScreen)(nil)
var _ screen.EscInterceptor = (*UsersScreen)(nil)

// New creates a new UsersScreen. homeFactory builds the screen shown
// after a profile is picked; it is a factory so this package does not
// depend on the home package.
func New(store *progress.Store, homeFactory func() screen.Screen) *UsersScreen {
	u := &UsersScreen{
		store:       store,
		homeFactory: homeFactory,
	}
	u.loadUsers()
	return u
}

func (u *UsersScreen) loadUsers() {
	ctx := context.Background()
	users, err := u.store.Users(ctx)
	if err != nil {
		u.errMsg = err.Error()
		return
	}
	u.users = users
	u.currentID, _ = u.store.CurrentUser(ctx)
	if u.selected >= len(u.users) {
		u.selected = 0
	}
	if len(u.users) == 0 {
		u.mode = modeAdd
		u.input = components.NewTextInput("Your name...", false, 30)
	}
}

func (u *UsersScreen) Init() tea.Cmd {
	if u.mode == modeAdd {
		return u.input.Init()
	}
	return nil
}

func (u *UsersScreen) Title() string {
	return "Profiles"
}

// InterceptEsc keeps Esc local while a dialog or the add form is open.
func (u *UsersScreen) InterceptEsc() bool {
	return u.mode != modeList
}

func (u *UsersScreen) KeyHints() []layout.KeyHint {
	switch u.mode {
	case modeAdd:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Create"},
			{Key: "Esc", Description: "Back"},
		}
	case modeResetConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset profile"},
			{Key: "N", Description: "Cancel"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Select"},
			{Key: "A", Description: "Add"},
			{Key: "R", Description: "Reset"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (u *UsersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if u.mode == modeAdd {
			var cmd tea.Cmd
			u.input, cmd = u.input.Update(msg)
			return u, cmd
		}
		return u, nil
	}

	switch u.mode {
	case modeAdd:
		return u.updateAdd(kmsg)
	case modeResetConfirm:
		return u.updateResetConfirm(kmsg)
	default:
		return u.updateList(kmsg)
	}
}

func (u *UsersScreen) updateList(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if u.selected > 0 {
			u.selected--
		}
	case "down", "j":
		if u.selected < len(u.users)-1 {
			u.selected++
		}
	case "a", "A":
		u.mode = modeAdd
		u.input = components.NewTextInput("Your name...", false, 30)
		return u, u.input.Init()
	case "r", "R":
		if len(u.users) > 0 {
			u.mode = modeResetConfirm
		}
	case "enter":
		if u.selected >= 0 && u.selected < len(u.users) {
			return u.pickUser(u.users[u.selected].ID)
		}
	}
	return u, nil
}

func (u *UsersScreen) updateAdd(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if len(u.users) > 0 {
			u.mode = modeList
			return u, nil
		}
		// Nothing to go back to without any profile.
		return u, nil
	case "enter":
		name := strings.TrimSpace(u.input.Value())
		if name == "" {
			return u, nil
		}
		ctx := context.Background()
		userID, err := u.store.AddUser(ctx, name)
		if err != nil {
			u.errMsg = err.Error()
			return u, nil
		}
		return u.pickUser(userID)
	}

	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return u, cmd
}

func (u *UsersScreen) updateResetConfirm(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if u.selected >= 0 && u.selected < len(u.users) {
			ctx := context.Background()
			if err := u.store.ResetUser(ctx, u.users[u.selected].ID); err != nil {
				u.errMsg = err.Error()
			}
		}
		u.mode = modeList
	case "n", "N", "esc":
		u.mode = modeList
	}
	return u, nil
}

// pickUser makes the profile current and rebuilds the stack on top of
// it: the welcome note for a first run, the home screen otherwise.
func (u *UsersScreen) pickUser(userID string) (screen.Screen, tea.Cmd) {
	ctx := context.Background()
	if err := u.store.SetCurrentUser(ctx, userID); err != nil {
		u.errMsg = err.Error()
		return u, nil
	}

	profile, err := u.store.GetProfile(ctx, userID)
	if err == nil && !profile.HasSeenWelcome {
		next := welcome.New(u.store, userID, u.homeFactory)
		return u, func() tea.Msg { return router.ResetStackMsg{Screen: next} }
	}
	return u, func() tea.Msg { return router.ResetStackMsg{Screen: u.homeFactory()} }
}

func (u *UsersScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Who is studying?"))
	b.WriteString("\n\n")

	if u.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(u.errMsg))
		b.WriteString("\n\n")
	}

	switch u.mode {
	case modeAdd:
		prompt := "Create a new profile"
		if len(u.users) == 0 {
			prompt = "Create your first profile"
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Render(prompt))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, u.input.View()))

	case modeResetConfirm:
		name := ""
		if u.selected >= 0 && u.selected < len(u.users) {
			name = u.users[u.selected].Name
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Bold(true).
			Render(fmt.Sprintf("Reset all progress for %s?", name)))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Flashcard history, quiz attempts, and streaks will be wiped."))
		b.WriteString("\n\n")
		buttons := lipgloss.JoinHorizontal(lipgloss.Top,
			components.NewButton("Y  Yes, reset", true, nil).View(),
			"   ",
			components.NewButton("N  Cancel", false, nil).View())
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))

	default:
		var list strings.Builder
		for i, usr := range u.users {
			label := usr.Name
			if usr.ID == u.currentID {
				label += "  (current)"
			}
			if i == u.selected {
				list.WriteString(theme.Selected.Render("  ▸ " + label))
			} else {
				list.WriteString(theme.Unselected.Render("    " + label))
			}
			list.WriteString("\n")
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list.String()))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("press A to add a profile"))
	}

	return b.String()
}
