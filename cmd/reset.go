package cmd

import (
	"context"
	"fmt"

	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset study progress",
	Long:  "Reset the active user's progress, or wipe every profile with --all.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("this is destructive; re-run with --force to confirm")
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

		ctx := context.Background()

		if all {
			if err := st.ProfileRepo().Reset(ctx); err != nil {
				return err
			}
			fmt.Println("All profiles wiped.")
			return nil
		}

		prog := progress.New(st.ProfileRepo())
		userID, err := prog.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if userID == "" {
			fmt.Println("No active user; nothing to reset.")
			return nil
		}
		if err := prog.ResetUser(ctx, userID); err != nil {
			return err
		}
		profile, err := prog.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("Progress for %s reset.\n", profile.Name)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Wipe every profile, not just the active user")
	resetCmd.Flags().Bool("force", false, "Confirm the reset")
}
