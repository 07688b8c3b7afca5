package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediad/internal/library"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, kind := range []library.MediaKind{library.MediaKindMovie, library.MediaKindTV} {
		n, err := a.store.CountLinks(kind)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %d links\n", kind, n)
	}
	for _, mt := range []library.MediaType{
		library.MediaTypeMovie, library.MediaTypeTVShow,
		library.MediaTypeTVSeason, library.MediaTypeTVEpisode,
	} {
		n, err := a.store.CountMetadata(mt)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %d metadata records\n", mt, n)
	}

	unmatchedMovies, err := a.store.FindUnmatchedDirectories(library.MediaKindMovie)
	if err != nil {
		return err
	}
	unmatchedShows, err := a.store.FindUnmatchedDirectories(library.MediaKindTV)
	if err != nil {
		return err
	}
	fmt.Printf("unmatched  %d movie, %d tv directories\n", len(unmatchedMovies), len(unmatchedShows))
	return nil
}
