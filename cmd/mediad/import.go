package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediad/internal/importer"
	"github.com/vmunix/mediad/internal/library"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Match scanned directories against metadata catalogs",
	Long: `Finds scanned media directories that have no metadata attached yet
and resolves each one against the configured catalogs, importing the
matched metadata into the library.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// matcher is satisfied by both import processors.
type matcher interface {
	Match(ctx context.Context, link *library.MediaLink) (*importer.Result, error)
}

// matchProcessor adapts a matcher to the batch driver by looking the target
// path back up as a link.
type matchProcessor struct {
	store *library.Store
	m     matcher
}

func (p *matchProcessor) Process(ctx context.Context, path string, userID int64) (*importer.Result, error) {
	link, err := p.store.GetLinkByPath(path)
	if err != nil {
		return nil, err
	}
	return p.m.Match(ctx, link)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	kinds := map[library.MediaKind]matcher{
		library.MediaKindMovie: importer.NewMovieProcessor(a.store, a.resolver, a.log),
		library.MediaKindTV:    importer.NewTVProcessor(a.store, a.resolver, a.log),
	}

	var matched, failed int
	for kind, m := range kinds {
		links, err := a.store.FindUnmatchedDirectories(kind)
		if err != nil {
			return fmt.Errorf("find unmatched %s directories: %w", kind, err)
		}
		if len(links) == 0 {
			continue
		}

		targets := make([]importer.Target, len(links))
		for i, l := range links {
			targets[i] = importer.Target{Path: l.Path, UserID: l.AddedByUserID}
		}

		proc := &matchProcessor{store: a.store, m: m}
		for _, res := range importer.RunBatch(cmd.Context(), proc, targets, a.cfg.Scanner.ImportConcurrency) {
			if res.Err != nil {
				failed++
				fmt.Printf("FAIL %s: %v\n", res.Target.Path, res.Err)
				continue
			}
			matched++
			fmt.Printf("OK   %s -> %s\n", res.Target.Path, res.Result.MetadataGID)
		}
	}

	fmt.Printf("%d matched, %d failed\n", matched, failed)
	return nil
}
