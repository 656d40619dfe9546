package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/analysis"
	qz "github.com/avashisk/prepdeck/internal/quiz"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/ui/layout"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// passThreshold mirrors the exam pass mark.
const passThreshold = 70.0

// ResultsScreen shows the outcome of a finished quiz and a per-question
// review.
type ResultsScreen struct {
	questions []qz.Question
	outcomes  map[string]*analysis.Answer
	flagged   map[string]bool
	label     string
	timeUp    bool

	score    int
	pct      float64
	selected int
	review   bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen for a completed attempt.
func New(questions []qz.Question, answers []analysis.Answer, flagged map[string]bool, label string, timeUp bool) *ResultsScreen {
	outcomes := make(map[string]*analysis.Answer, len(answers))
	score := 0
	for i := range answers {
		outcomes[answers[i].QuestionID] = &answers[i]
		if answers[i].Correct {
			score++
		}
	}

	var pct float64
	if len(questions) > 0 {
		pct = float64(score) / float64(len(questions)) * 100
	}

	return &ResultsScreen{
		questions: questions,
		outcomes:  outcomes,
		flagged:   flagged,
		label:     label,
		timeUp:    timeUp,
		score:     score,
		pct:       pct,
	}
}

func (r *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (r *ResultsScreen) Title() string {
	return "Results"
}

func (r *ResultsScreen) KeyHints() []layout.KeyHint {
	if r.review {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Browse"},
			{Key: "R", Description: "Summary"},
			{Key: "Esc", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "R", Description: "Review answers"},
		{Key: "Esc", Description: "Done"},
	}
}

func (r *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}

	switch kmsg.String() {
	case "r", "R":
		r.review = !r.review
	case "up", "k":
		if r.review && r.selected > 0 {
			r.selected--
		}
	case "down", "j":
		if r.review && r.selected < len(r.questions)-1 {
			r.selected++
		}
	}
	return r, nil
}

func (r *ResultsScreen) View(width, height int) string {
	if r.review {
		return r.renderReview(width, height)
	}
	return r.renderSummary(width)
}

func (r *ResultsScreen) renderSummary(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	verdict := "PASS"
	verdictStyle := theme.Correct
	if r.pct < passThreshold {
		verdict = "NOT YET"
		verdictStyle = theme.Incorrect
	}

	b.WriteString(theme.Title.Width(width).Render(r.label + " complete"))
	b.WriteString("\n\n")

	if r.timeUp {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render("Time ran out — unanswered questions score zero."))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("%d / %d  (%.0f%%)", r.score, len(r.questions), r.pct)))
	b.WriteString("\n\n")
	b.WriteString(verdictStyle.Width(width).Align(lipgloss.Center).Render(verdict))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("pass mark %.0f%%", passThreshold)))

	flaggedCount := 0
	for _, f := range r.flagged {
		if f {
			flaggedCount++
		}
	}
	if flaggedCount > 0 {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(fmt.Sprintf("⚑ %d question(s) flagged for review — press R", flaggedCount)))
	}

	return b.String()
}

func (r *ResultsScreen) renderReview(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	// Keep the selected row visible in a window of list rows.
	listRows := height - 12
	if listRows < 3 {
		listRows = 3
	}
	start := 0
	if r.selected >= listRows {
		start = r.selected - listRows + 1
	}
	end := start + listRows
	if end > len(r.questions) {
		end = len(r.questions)
	}

	var list strings.Builder
	for i := start; i < end; i++ {
		q := r.questions[i]

		mark := lipgloss.NewStyle().Foreground(theme.TextDim).Render("—")
		if a, ok := r.outcomes[q.ID]; ok {
			if a.Correct {
				mark = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
			} else {
				mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
			}
		}
		flag := "  "
		if r.flagged[q.ID] {
			flag = lipgloss.NewStyle().Foreground(theme.Accent).Render("⚑ ")
		}

		text := q.Text
		if maxLen := width - 16; maxLen > 8 && len(text) > maxLen {
			text = text[:maxLen-3] + "..."
		}

		line := fmt.Sprintf("%s %sQ%-3d %s", mark, flag, i+1, text)
		if i == r.selected {
			list.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}
	b.WriteString(list.String())

	if r.selected < len(r.questions) {
		q := r.questions[r.selected]
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Answer: "))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render(q.CorrectAnswer))
		if q.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Width(min(width-4, 76)).
				Foreground(theme.Text).
				Render(q.Explanation))
		}
	}

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
