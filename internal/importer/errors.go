package importer

import (
	"errors"
	"fmt"

	"github.com/vmunix/mediad/internal/metadata"
)

var (
	// ErrFileNotFound indicates the import target doesn't exist on disk.
	ErrFileNotFound = errors.New("file or directory not found")

	// ErrNoPlayableFile indicates the target directory holds no playable file.
	ErrNoPlayableFile = errors.New("no playable file found")
)

// DuplicateLinkError indicates a media link already exists for the resolved
// file path. Imports must never create duplicate links.
type DuplicateLinkError struct {
	Path        string
	ExistingGID string
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("media link already exists for %s (gid %s)", e.Path, e.ExistingGID)
}

// MatchNotFoundError indicates no acceptable catalog match was found. It
// carries the query used and the candidates considered so a bad match can be
// diagnosed without re-running the scan.
type MatchNotFoundError struct {
	Path       string
	Query      string
	Year       int
	Candidates []metadata.Match
}

func (e *MatchNotFoundError) Error() string {
	return fmt.Sprintf("no metadata match for %s (query %q, year %d, %d candidates)",
		e.Path, e.Query, e.Year, len(e.Candidates))
}
