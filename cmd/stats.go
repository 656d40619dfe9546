package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/mastery"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics for the active user",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := context.Background()
		prog := progress.New(st.ProfileRepo())

		userID, err := prog.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if userID == "" {
			fmt.Println("No active user. Run prepdeck and create a profile first.")
			return nil
		}
		profile, err := prog.GetProfile(ctx, userID)
		if err != nil {
			return err
		}

		topics, err := content.Load()
		if err != nil {
			return fmt.Errorf("load embedded syllabus: %w", err)
		}

		var scores []float64
		for _, t := range content.Chapters(topics) {
			if tp, ok := profile.Chapters[t.ID]; ok {
				scores = append(scores, tp.Mastery)
			} else {
				scores = append(scores, 0)
			}
		}

		var items int
		counts := mastery.StatusCounts{}
		for _, tp := range profile.Chapters {
			c := mastery.CountStatuses(tp.Items())
			counts.New += c.New
			counts.Learning += c.Learning
			counts.Mastered += c.Mastered
			items += len(tp.Flashcards)
		}

		completed := 0
		for _, at := range profile.QuizAttempts {
			if at.Completed {
				completed++
			}
		}

		due, err := prog.DueItems(ctx, userID, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("User:            %s\n", profile.Name)
		fmt.Printf("Overall mastery: %d%%\n", int(mastery.Overall(scores)*100))
		fmt.Printf("Study streak:    %d day(s), best %d\n", profile.StudyStreak.Current, profile.StudyStreak.Longest)
		fmt.Printf("Cards rated:     %d (%d new / %d learning / %d mastered)\n",
			items, counts.New, counts.Learning, counts.Mastered)
		fmt.Printf("Cards due now:   %d\n", len(due))
		fmt.Printf("Quizzes done:    %d\n", completed)

		report, err := prog.PerformanceReport(ctx, userID)
		if err != nil {
			return err
		}
		if len(report.Weaknesses) > 0 {
			fmt.Println("\nNeeds work:")
			for _, w := range report.Weaknesses {
				title := w.TopicID
				if t, ok := content.FindTopic(topics, w.TopicID); ok {
					title = t.Title
				}
				fmt.Printf("  %-36s %d%% (%d/%d)\n", title, int(w.Percentage), w.Correct, w.Total)
			}
		}

		requests, tokens, err := st.RequestLog().Totals(ctx)
		if err != nil {
			return err
		}
		if requests > 0 {
			fmt.Printf("\nAI tutor:        %d request(s), %d tokens\n", requests, tokens)
		}

		return nil
	},
}
