package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

var (
	generateLength    int
	generateMaxLength int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a personalized playlist",
	Long: `Builds the user's taste profile from recorded play events and assembles
a scored playlist from the Audius catalog. Users without enough history get
trending tracks instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGenerate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generateLength, "length", "n", 15, "number of tracks in the session")
	generateCmd.Flags().IntVar(&generateMaxLength, "max-length", 0, "session length cap (0 uses the engine default)")
}

func runGenerate() error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	playlist, err := a.dj.GeneratePlaylist(context.Background(), user, generateLength, generateMaxLength)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	fmt.Printf("\n%s\n\n", playlist.VibeDescription)
	if err := renderTracks(playlist.Tracks); err != nil {
		return err
	}
	if len(playlist.Metadata.TopGenres) > 0 {
		fmt.Printf("\nBased on: %v (completion rate %.0f%%)\n",
			playlist.Metadata.TopGenres, playlist.Metadata.AvgCompletionRate*100)
	}
	return nil
}

func renderTracks(tracks []domain.Track) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Title", "Artist", "Genre", "Length"})
	for i, t := range tracks {
		row := []string{
			strconv.Itoa(i + 1),
			t.Title,
			t.Artist,
			t.Genre,
			formatDuration(t.Duration),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}
