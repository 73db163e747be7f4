package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/karl2522/audiora/backend/internal/core/ports"
)

var (
	historyTrackID  string
	historyTitle    string
	historyArtist   string
	historyGenre    string
	historyMood     string
	historyDuration int
	historyPlayed   int
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Record and inspect play events",
}

var historyLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Record the start of a play",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHistoryLog(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var historyCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark the active play of a track as completed",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHistoryResolve(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var historySkipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Mark the active play of a track as skipped",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHistoryResolve(false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent play events",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHistoryShow(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyLogCmd, historyCompleteCmd, historySkipCmd, historyShowCmd)

	historyLogCmd.Flags().StringVar(&historyTrackID, "track", "", "track ID")
	historyLogCmd.Flags().StringVar(&historyTitle, "title", "", "track title")
	historyLogCmd.Flags().StringVar(&historyArtist, "artist", "", "track artist")
	historyLogCmd.Flags().StringVar(&historyGenre, "genre", "", "track genre")
	historyLogCmd.Flags().StringVar(&historyMood, "mood", "", "track mood")
	historyLogCmd.Flags().IntVar(&historyDuration, "duration", 0, "track duration in seconds")
	historyLogCmd.MarkFlagRequired("track")
	historyLogCmd.MarkFlagRequired("title")
	historyLogCmd.MarkFlagRequired("artist")

	for _, cmd := range []*cobra.Command{historyCompleteCmd, historySkipCmd} {
		cmd.Flags().StringVar(&historyTrackID, "track", "", "track ID")
		cmd.Flags().IntVar(&historyPlayed, "played", 0, "seconds actually listened")
		cmd.MarkFlagRequired("track")
	}

	historyShowCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show")
}

func runHistoryLog() error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	event, err := a.store.LogStart(context.Background(), user, historyTrackID, ports.TrackPlayData{
		Title:    historyTitle,
		Artist:   historyArtist,
		Genre:    historyGenre,
		Mood:     historyMood,
		Duration: historyDuration,
	})
	if err != nil {
		return fmt.Errorf("history log: %w", err)
	}

	fmt.Printf("Recorded play %d: %s by %s\n", event.ID, event.Title, event.Artist)
	return nil
}

func runHistoryResolve(completed bool) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if completed {
		err = a.store.LogComplete(ctx, user, historyTrackID, historyPlayed)
	} else {
		err = a.store.LogSkip(ctx, user, historyTrackID, historyPlayed)
	}
	if err != nil {
		return fmt.Errorf("history update: %w", err)
	}
	return nil
}

func runHistoryShow() error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	events, err := a.store.FindByUserID(context.Background(), user, ports.HistoryQuery{Limit: historyLimit})
	if err != nil {
		return fmt.Errorf("history show: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Started", "Title", "Artist", "Genre", "Played", "State"})
	for _, e := range events {
		state := "active"
		switch {
		case e.Completed:
			state = "completed"
		case e.Skipped:
			state = "skipped"
		}
		row := []string{
			e.StartedAt.Format("2006-01-02 15:04"),
			e.Title,
			e.Artist,
			e.Genre,
			strconv.Itoa(e.DurationPlayed) + "s",
			state,
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
