package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/avashisk/prepdeck/internal/analysis"
	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/mastery"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/screen"
	"github.com/avashisk/prepdeck/internal/srs"
	"github.com/avashisk/prepdeck/internal/ui/components"
	"github.com/avashisk/prepdeck/internal/ui/theme"
)

// chapterRow is one chapter's line on the dashboard.
type chapterRow struct {
	Title   string
	Mastery float64
}

// DashboardScreen summarizes the active user's study state: mastery per
// chapter, card statuses, streaks, and quiz strengths and weaknesses.
type DashboardScreen struct {
	store  *progress.Store
	topics []content.Topic

	userName string
	rows     []chapterRow
	overall  float64
	counts   mastery.StatusCounts
	streak   progress.StudyStreak
	report   analysis.Report
	titles   map[string]string
	recent   []progress.Activity
	errMsg   string
}

var _ screen.Screen = (*DashboardScreen)(nil)

// New creates a new DashboardScreen.
func New(store *progress.Store, syllabus []content.Topic) *DashboardScreen {
	d := &DashboardScreen{
		store:  store,
		topics: syllabus,
	}
	d.load()
	return d
}

func (d *DashboardScreen) load() {
	ctx := context.Background()

	userID, err := d.store.CurrentUser(ctx)
	if err != nil || userID == "" {
		d.errMsg = "no active user"
		return
	}
	profile, err := d.store.GetProfile(ctx, userID)
	if err != nil {
		d.errMsg = err.Error()
		return
	}

	d.userName = profile.Name
	d.streak = profile.StudyStreak
	d.recent = profile.RecentActivity

	d.titles = make(map[string]string)
	d.rows = d.rows[:0]
	var scores []float64
	var allItems []srs.Item
	for _, t := range content.Chapters(d.topics) {
		d.titles[t.ID] = t.Title
		var score float64
		if tp, ok := profile.Chapters[t.ID]; ok {
			score = tp.Mastery
			allItems = append(allItems, tp.Items()...)
		}
		d.rows = append(d.rows, chapterRow{Title: t.Title, Mastery: score})
		scores = append(scores, score)
	}
	d.overall = mastery.Overall(scores)
	d.counts = mastery.CountStatuses(allItems)

	report, err := d.store.PerformanceReport(ctx, userID)
	if err != nil {
		d.errMsg = err.Error()
		return
	}
	d.report = report
}

func (d *DashboardScreen) Init() tea.Cmd {
	return nil
}

func (d *DashboardScreen) Title() string {
	return "Progress"
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	if d.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n\n  Error: " + d.errMsg)
	}

	var b strings.Builder
	b.WriteString("\n")

	headline := fmt.Sprintf("%s — overall mastery %d%%", d.userName, int(d.overall*100))
	b.WriteString(theme.Title.Width(width).Render(headline))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("streak %d day (best %d)   cards: %d new / %d learning / %d mastered",
			d.streak.Current, d.streak.Longest,
			d.counts.New, d.counts.Learning, d.counts.Mastered)))
	b.WriteString("\n\n")

	barWidth := min(width-8, 64)
	var bars strings.Builder
	for _, row := range d.rows {
		label := fmt.Sprintf("%-36s", truncate(row.Title, 36))
		bar := components.NewProgressBar(label, row.Mastery, true, barWidth)
		bars.WriteString(bar.View())
		bars.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.TrimRight(bars.String(), "\n")))
	b.WriteString("\n\n")

	b.WriteString(d.renderReport(width))

	if len(d.recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(d.renderActivity(width, height))
	}

	return b.String()
}

// renderReport shows quiz-derived strengths and weaknesses side by side.
func (d *DashboardScreen) renderReport(width int) string {
	if len(d.report.Strengths) == 0 && len(d.report.Weaknesses) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Finish a few quizzes to see your strengths and weak spots.")
	}

	renderList := func(heading string, style lipgloss.Style, stats []analysis.TopicStat) string {
		var col strings.Builder
		col.WriteString(style.Bold(true).Render(heading))
		col.WriteString("\n")
		if len(stats) == 0 {
			col.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("none yet"))
		}
		for _, st := range stats {
			title := d.titles[st.TopicID]
			if title == "" {
				title = st.TopicID
			}
			col.WriteString(fmt.Sprintf("%s  %d%% (%d/%d)\n",
				truncate(title, 28), int(st.Percentage), st.Correct, st.Total))
		}
		return strings.TrimRight(col.String(), "\n")
	}

	left := renderList("Strengths", lipgloss.NewStyle().Foreground(theme.Success), d.report.Strengths)
	right := renderList("Needs work", lipgloss.NewStyle().Foreground(theme.Error), d.report.Weaknesses)

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(36).Render(left),
		lipgloss.NewStyle().Width(36).Render(right),
	)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, cols)
}

func (d *DashboardScreen) renderActivity(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Recent activity"))
	b.WriteString("\n")

	n := len(d.recent)
	if n > 4 {
		n = 4
	}
	for _, a := range d.recent[:n] {
		label := a.Chapter
		if label == "" {
			label = a.Type
		}
		line := fmt.Sprintf("%s  %-28s %s", a.Date.Format("Jan 2"), truncate(label, 28), a.Score)
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line))
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
