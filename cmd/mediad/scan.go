package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan configured library roots",
	Long: `Walks every configured library root, records newly discovered
directories and media files, and prunes links whose paths no longer
exist on disk.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(a.cfg.Libraries) == 0 {
		return errors.New("no libraries configured")
	}

	tracker := &scanner.StateTracker{}
	scn := scanner.New(a.store, tracker, a.log)

	for _, lib := range a.cfg.Libraries {
		root, err := ensureRootLink(a.store, lib.Root, library.MediaKind(lib.Kind))
		if err != nil {
			return fmt.Errorf("library %s: %w", lib.Root, err)
		}

		res, err := scn.Scan(cmd.Context(), root)
		if err != nil {
			return fmt.Errorf("scan %s: %w", lib.Root, err)
		}
		fmt.Printf("%s: %d added, %d removed, %d existing\n",
			lib.Root, len(res.AddedGIDs), len(res.RemovedGIDs), len(res.ExistingGIDs))
	}
	return nil
}

// ensureRootLink fetches the root link for a configured library, creating it
// on first scan.
func ensureRootLink(store *library.Store, path string, kind library.MediaKind) (*library.MediaLink, error) {
	link, err := store.GetLinkByPath(path)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	link = &library.MediaLink{
		GID:        uuid.NewString(),
		Path:       path,
		Descriptor: library.DescriptorRootDirectory,
		MediaKind:  kind,
	}
	if err := store.InsertLink(link); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			return store.GetLinkByPath(path)
		}
		return nil, err
	}
	return link, nil
}
