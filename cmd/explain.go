package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/llm"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

var explainScenario bool

var explainCmd = &cobra.Command{
	Use:   "explain <chapter-id> <card-id>",
	Short: "Ask the AI tutor about a flashcard",
	Long: `Fetches an AI explanation for one flashcard, outside the TUI.
Useful as a smoke test for the LLM configuration. Results are cached
per card, so repeating the command is free.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, cardID := args[0], args[1]

		topics, err := loadSyllabus(cmd)
		if err != nil {
			return err
		}
		topic, ok := content.FindTopic(topics, topicID)
		if !ok {
			return fmt.Errorf("unknown chapter %q", topicID)
		}
		var fc content.Flashcard
		found := false
		for _, c := range topic.Flashcards {
			if c.ID == cardID {
				fc = c
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no flashcard %q in chapter %q", cardID, topicID)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		provider, err := llm.NewProviderFromEnv(ctx, st.RequestLog())
		if err != nil {
			return err
		}

		prog := progress.New(st.ProfileRepo())
		userID, err := prog.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if userID == "" {
			return fmt.Errorf("no active profile; run prepdeck users add first")
		}

		promptType := explain.PromptSimplify
		if explainScenario {
			promptType = explain.PromptScenario
		}

		svc := explain.NewService(provider, prog)
		text, cached, err := svc.Explain(ctx, userID, topicID, cardID, fc.Term, fc.Definition, promptType)
		if err != nil {
			return err
		}
		if cached {
			fmt.Println("(cached)")
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	explainCmd.Flags().BoolVar(&explainScenario, "scenario", false, "ask for a real-world scenario instead of a plain explanation")
}
