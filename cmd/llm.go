package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/avashisk/prepdeck/internal/llm"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect AI tutor usage",
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost per model",
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

		usage, err := st.RequestLog().Usage(context.Background())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Println("No AI tutor requests recorded.")
			return nil
		}

		fmt.Printf("%-12s  %-32s  %-8s  %-10s  %-10s  %s\n",
			"Provider", "Model", "Reqs", "In", "Out", "Est. cost")
		fmt.Println(strings.Repeat("─", 88))

		var totalCost float64
		costKnown := true
		for _, u := range usage {
			costStr := "unknown"
			if c := llm.LookupCost(u.Model); c != nil {
				cost := c.Cost(u.InputTokens, u.OutputTokens)
				totalCost += cost
				costStr = fmt.Sprintf("$%.4f", cost)
			} else {
				costKnown = false
			}
			model := u.Model
			if len(model) > 32 {
				model = model[:32]
			}
			fmt.Printf("%-12s  %-32s  %-8d  %-10d  %-10d  %s\n",
				u.Provider, model, u.Requests, u.InputTokens, u.OutputTokens, costStr)
		}

		fmt.Println(strings.Repeat("─", 88))
		if costKnown {
			fmt.Printf("Total estimated cost: $%.4f\n", totalCost)
		} else {
			fmt.Printf("Total estimated cost: at least $%.4f (some models unpriced)\n", totalCost)
		}
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmStatsCmd)
}
