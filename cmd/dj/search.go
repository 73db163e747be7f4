package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Audius catalog",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSearch(strings.Join(args, " ")); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "number of tracks")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "result offset for paging")
}

func runSearch(query string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	tracks, err := a.library.Search(context.Background(), query, searchLimit, searchOffset)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return renderTracks(tracks)
}
