package cmd

import (
	"context"
	"fmt"

	"github.com/avashisk/prepdeck/internal/progress"
	"github.com/avashisk/prepdeck/internal/store"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List study profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProgress(cmd, func(ctx context.Context, prog *progress.Store) error {
			users, err := prog.Users(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("No profiles yet. Run prepdeck to create one.")
				return nil
			}
			currentID, _ := prog.CurrentUser(ctx)
			for _, u := range users {
				marker := " "
				if u.ID == currentID {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, u.Name)
			}
			return nil
		})
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProgress(cmd, func(ctx context.Context, prog *progress.Store) error {
			userID, err := prog.AddUser(ctx, args[0])
			if err != nil {
				return err
			}
			if err := prog.SetCurrentUser(ctx, userID); err != nil {
				return err
			}
			fmt.Printf("Profile %q created and selected.\n", args[0])
			return nil
		})
	},
}

func init() {
	usersCmd.AddCommand(usersAddCmd)
}

// withProgress opens the store for a one-shot CLI action.
func withProgress(cmd *cobra.Command, fn func(context.Context, *progress.Store) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(context.Background(), progress.New(st.ProfileRepo()))
}
