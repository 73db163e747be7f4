package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	trendingGenre string
	trendingLimit int
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending Audius tracks",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTrending(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(trendingCmd)

	trendingCmd.Flags().StringVarP(&trendingGenre, "genre", "g", "", "restrict to one genre")
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", 20, "number of tracks")
}

func runTrending() error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	tracks, err := a.library.Trending(context.Background(), trendingGenre, trendingLimit)
	if err != nil {
		return fmt.Errorf("trending: %w", err)
	}
	return renderTracks(tracks)
}
