// Package scanner reconciles library directory trees against the persisted
// media graph.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vmunix/mediad/internal/library"
)

var (
	// ErrFileNotFound indicates the scan target no longer exists on disk.
	ErrFileNotFound = errors.New("file or directory not found")

	// ErrNothingToScan indicates the library kind has no classifier table.
	ErrNothingToScan = errors.New("nothing to scan for media kind")
)

// Result describes one completed scan: the scanned link plus the GIDs that
// were added, removed, and confirmed still present.
type Result struct {
	ParentGID    string
	AddedGIDs    []string
	RemovedGIDs  []string
	ExistingGIDs []string
}

// Scanner walks a root path and reconciles it against the link store.
type Scanner struct {
	store   *library.Store
	tracker *StateTracker
	log     *slog.Logger
}

// New creates a scanner.
func New(store *library.Store, tracker *StateTracker, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{store: store, tracker: tracker, log: log}
}

// Scan reconciles the filesystem subtree behind a persisted link.
// Directory links recurse; leaf links are checked for existence only.
// The tracker is updated around the whole operation, including error returns.
func (s *Scanner) Scan(ctx context.Context, link *library.MediaLink) (*Result, error) {
	if !HasClassifier(link.MediaKind) {
		return nil, fmt.Errorf("%w: %s", ErrNothingToScan, link.MediaKind)
	}

	s.tracker.Begin(link.GID)
	defer s.tracker.End(link.GID)

	if !link.Descriptor.IsDirectory() {
		if _, err := os.Stat(link.Path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, link.Path)
		}
		return &Result{ParentGID: link.GID, ExistingGIDs: []string{link.GID}}, nil
	}

	return s.scanDirectory(ctx, link)
}

func (s *Scanner) scanDirectory(ctx context.Context, root *library.MediaLink) (*Result, error) {
	info, err := os.Stat(root.Path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, root.Path)
	}

	s.log.Info("scan started", "path", root.Path, "gid", root.GID, "kind", root.MediaKind)

	// Partition the known subtree into still-present and vanished paths.
	knownPaths, err := s.store.FindPathsUnder(root.Path)
	if err != nil {
		return nil, fmt.Errorf("find known paths: %w", err)
	}

	var existingPaths, removedPaths []string
	for _, p := range knownPaths {
		if _, err := os.Stat(p); err == nil {
			existingPaths = append(existingPaths, p)
		} else {
			removedPaths = append(removedPaths, p)
		}
	}

	removedGIDs, err := s.store.FindGIDsByPaths(removedPaths)
	if err != nil {
		return nil, fmt.Errorf("find removed gids: %w", err)
	}
	if len(removedPaths) > 0 {
		n, err := s.store.DeleteLinksByPaths(removedPaths)
		if err != nil {
			return nil, fmt.Errorf("delete removed links: %w", err)
		}
		s.log.Info("pruned vanished links", "path", root.Path, "count", n)
	}

	existingSet := make(map[string]struct{}, len(existingPaths))
	for _, p := range existingPaths {
		existingSet[p] = struct{}{}
	}

	// linksByPath caches materialized directory links so every child finds
	// its parent without a repository round-trip per level.
	linksByPath := map[string]*library.MediaLink{root.Path: root}

	var addedGIDs []string
	var newLeaves []*library.MediaLink

	walkErr := filepath.WalkDir(root.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A subtree that vanished mid-walk is pruned on the next scan.
			s.log.Warn("walk error, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root.Path {
			return nil
		}

		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			dirLink, created, err := s.materializeDirectory(path, root, linksByPath, existingSet)
			if err != nil {
				return err
			}
			linksByPath[path] = dirLink
			if created {
				addedGIDs = append(addedGIDs, dirLink.GID)
			}
			return nil
		}

		if _, known := existingSet[path]; known {
			return nil
		}
		descriptor, ok := Classify(d.Name(), root.MediaKind)
		if !ok {
			return nil
		}
		parent := linksByPath[filepath.Dir(path)]
		if parent == nil {
			// Containing directory failed to materialize; leave the file
			// for a future scan.
			return nil
		}
		newLeaves = append(newLeaves, &library.MediaLink{
			GID:           uuid.NewString(),
			Path:          path,
			Descriptor:    descriptor,
			MediaKind:     root.MediaKind,
			AddedByUserID: root.AddedByUserID,
			ParentID:      &parent.ID,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root.Path, walkErr)
	}

	if err := s.store.InsertLinks(newLeaves); err != nil {
		return nil, fmt.Errorf("insert discovered links: %w", err)
	}
	for _, l := range newLeaves {
		addedGIDs = append(addedGIDs, l.GID)
	}

	existingGIDs, err := s.store.FindGIDsByPaths(existingPaths)
	if err != nil {
		return nil, fmt.Errorf("find existing gids: %w", err)
	}

	s.log.Info("scan complete", "path", root.Path,
		"added", len(addedGIDs), "removed", len(removedGIDs), "existing", len(existingGIDs))

	return &Result{
		ParentGID:    root.GID,
		AddedGIDs:    addedGIDs,
		RemovedGIDs:  removedGIDs,
		ExistingGIDs: existingGIDs,
	}, nil
}

// materializeDirectory returns the link for a directory, creating it when it
// isn't known yet. Descriptor escalation is strict: directories directly
// under a root become media directories, deeper ones child directories.
func (s *Scanner) materializeDirectory(path string, root *library.MediaLink, linksByPath map[string]*library.MediaLink, existingSet map[string]struct{}) (*library.MediaLink, bool, error) {
	if _, known := existingSet[path]; known {
		link, err := s.store.GetLinkByPath(path)
		if err != nil {
			return nil, false, fmt.Errorf("get directory link: %w", err)
		}
		return link, false, nil
	}

	parent := linksByPath[filepath.Dir(path)]
	if parent == nil {
		return nil, false, fmt.Errorf("no parent link for %s", path)
	}

	descriptor := library.DescriptorChildDirectory
	if parent.Descriptor == library.DescriptorRootDirectory {
		descriptor = library.DescriptorMediaDirectory
	}

	link := &library.MediaLink{
		GID:           uuid.NewString(),
		Path:          path,
		Descriptor:    descriptor,
		MediaKind:     root.MediaKind,
		AddedByUserID: root.AddedByUserID,
		ParentID:      &parent.ID,
	}
	if err := s.store.InsertLink(link); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			// A concurrent scan won the insert race; fetch its link.
			existing, gerr := s.store.GetLinkByPath(path)
			if gerr != nil {
				return nil, false, fmt.Errorf("fetch racing link: %w", gerr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert directory link: %w", err)
	}
	return link, true, nil
}
