package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/scanner"
)

// FindLargestVideo returns the largest video file under root. In a movie
// folder the feature is the largest file; samples and extras are smaller.
// Files with "sample" in the name are skipped entirely.
func FindLargestVideo(root string, kind library.MediaKind) (string, int64, error) {
	var best string
	var bestSize int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if desc, ok := scanner.Classify(d.Name(), kind); !ok || desc != library.DescriptorVideo {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), "sample") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Equal sizes keep the first file seen; no tie-break is defined.
		if info.Size() > bestSize || best == "" {
			best = path
			bestSize = info.Size()
		}
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walk directory: %w", err)
	}
	if best == "" {
		return "", 0, fmt.Errorf("%w: %s", ErrNoPlayableFile, root)
	}
	return best, bestSize, nil
}

// isVideoFile reports whether the path classifies as video for the kind.
func isVideoFile(path string, kind library.MediaKind) bool {
	desc, ok := scanner.Classify(filepath.Base(path), kind)
	return ok && desc == library.DescriptorVideo
}

// statTarget verifies the import target exists and reports whether it is a
// directory.
func statTarget(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return info.IsDir(), nil
}
