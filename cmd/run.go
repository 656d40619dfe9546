package cmd

import (
	"fmt"
	"os"

	"github.com/avashisk/prepdeck/internal/app"
	"github.com/avashisk/prepdeck/internal/content"
	"github.com/avashisk/prepdeck/internal/explain"
	"github.com/avashisk/prepdeck/internal/llm"
	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	topics, err := loadSyllabus(cmd)
	if err != nil {
		return err
	}

	prog := progress.New(st.ProfileRepo())

	var provider llm.Provider
	if p, err := llm.NewProviderFromEnv(ctx, st.RequestLog()); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI explanations will be unavailable.")
	} else {
		provider = p
	}

	return app.Run(app.Options{
		Progress: prog,
		Topics:   topics,
		Explain:  explain.NewService(provider, prog),
	})
}

// loadSyllabus returns the content pack named by --content, or the
// embedded syllabus when the flag is unset.
func loadSyllabus(cmd *cobra.Command) ([]content.Topic, error) {
	if path, _ := cmd.Flags().GetString("content"); path != "" {
		topics, err := content.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load content pack: %w", err)
		}
		return topics, nil
	}
	topics, err := content.Load()
	if err != nil {
		return nil, fmt.Errorf("load embedded syllabus: %w", err)
	}
	return topics, nil
}
