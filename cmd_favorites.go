package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giygas/formulary-browser/favorites"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Inspect or edit the persisted favorite formulary ids",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the favorite ids in the order they were added",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFavorites(func(store *favorites.Store) error {
			for _, id := range store.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Add the id to the favorites, or remove it when already present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFavorites(func(store *favorites.Store) error {
			state := "removed"
			if store.Toggle(args[0]) {
				state = "added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d favorites)\n", args[0], state, store.Len())
			return nil
		})
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesToggleCmd)
}

func withFavorites(fn func(*favorites.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	quietLogger(cfg)

	store, err := openFavorites(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(store)
}
