// Package importer ties scanned directories to resolved catalog metadata.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/metadata"
	"github.com/vmunix/mediad/pkg/title"
)

// Result is the outcome of a successful import: the resolved metadata GID
// and the primary media link it was attached to.
type Result struct {
	MetadataGID string
	Link        *library.MediaLink
}

// MovieProcessor imports movie folders and files.
type MovieProcessor struct {
	store    *library.Store
	resolver *metadata.Service
	log      *slog.Logger
}

// NewMovieProcessor creates a movie import processor.
func NewMovieProcessor(store *library.Store, resolver *metadata.Service, log *slog.Logger) *MovieProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &MovieProcessor{store: store, resolver: resolver, log: log}
}

// Process imports a new movie directory or file into the library. Given a
// directory, the largest video file is taken as the feature. The derived
// title and year drive catalog resolution; on success the created link
// carries the resolved metadata GIDs.
func (p *MovieProcessor) Process(ctx context.Context, path string, userID int64) (*Result, error) {
	isDir, err := statTarget(path)
	if err != nil {
		return nil, err
	}

	videoPath := path
	if isDir {
		videoPath, _, err = FindLargestVideo(path, library.MediaKindMovie)
		if err != nil {
			return nil, err
		}
	} else if !isVideoFile(path, library.MediaKindMovie) {
		return nil, fmt.Errorf("%w: %s", ErrNoPlayableFile, path)
	}

	// Never create duplicate links for a path.
	if existing, err := p.store.GetLinkByPath(videoPath); err == nil {
		return nil, &DuplicateLinkError{Path: videoPath, ExistingGID: existing.GID}
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, &metadata.StoreError{Op: "find link", Err: err}
	}

	query, year := title.ParseName(filepath.Base(path))
	gid, err := p.resolve(ctx, path, query, year)
	if err != nil {
		return nil, err
	}

	link, err := p.writeLinks(path, videoPath, isDir, userID, gid)
	if err != nil {
		return nil, err
	}

	p.log.Info("movie imported", "path", path, "metadata_gid", gid, "query", query, "year", year)
	return &Result{MetadataGID: gid, Link: link}, nil
}

// Match attaches metadata to an already-scanned, unmatched movie directory
// link. The directory link and its video leaves all point at the match.
func (p *MovieProcessor) Match(ctx context.Context, link *library.MediaLink) (*Result, error) {
	query, year := title.ParseName(filepath.Base(link.Path))
	gid, err := p.resolve(ctx, link.Path, query, year)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpdateLinkMetadata(link.ID, gid, gid); err != nil {
		return nil, &metadata.StoreError{Op: "update link", Err: err}
	}
	children, err := p.store.FindLinksUnder(link.Path)
	if err != nil {
		return nil, &metadata.StoreError{Op: "find child links", Err: err}
	}
	for _, child := range children {
		if child.Descriptor != library.DescriptorVideo {
			continue
		}
		if err := p.store.UpdateLinkMetadata(child.ID, gid, gid); err != nil {
			return nil, &metadata.StoreError{Op: "update child link", Err: err}
		}
	}

	link.MetadataGID = &gid
	link.RootMetadataGID = &gid
	p.log.Info("movie matched", "path", link.Path, "metadata_gid", gid)
	return &Result{MetadataGID: gid, Link: link}, nil
}

// resolve searches the catalog and returns the metadata GID for the best
// match, importing it first when it doesn't exist locally yet.
func (p *MovieProcessor) resolve(ctx context.Context, path, query string, year int) (string, error) {
	matches, err := p.resolver.Search(ctx, metadata.SearchRequest{
		MediaKind: library.MediaKindMovie,
		Query:     query,
		Year:      year,
	})
	if err != nil {
		return "", err
	}

	match, ok := metadata.SelectMatch(query, matches)
	if !ok {
		return "", &MatchNotFoundError{Path: path, Query: query, Year: year, Candidates: matches}
	}
	if match.Exists {
		return match.MetadataGID, nil
	}

	rid, err := metadata.ParseRemoteID(match.RemoteID)
	if err != nil {
		return "", err
	}
	results, err := p.resolver.Import(ctx, metadata.ImportRequest{
		ProviderID: rid.Provider,
		MediaKind:  library.MediaKindMovie,
		ContentID:  rid.ContentID,
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].Metadata == nil {
		return "", &MatchNotFoundError{Path: path, Query: query, Year: year, Candidates: matches}
	}
	return results[0].Metadata.GID, nil
}

// writeLinks creates the directory and video links for a processed movie,
// parented to any surrounding scanned tree.
func (p *MovieProcessor) writeLinks(path, videoPath string, isDir bool, userID int64, gid string) (*library.MediaLink, error) {
	var parentID *int64
	if parent, err := p.store.GetLinkByPath(filepath.Dir(path)); err == nil {
		parentID = &parent.ID
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, &metadata.StoreError{Op: "find parent link", Err: err}
	}

	if isDir {
		dirLink, err := p.store.GetLinkByPath(path)
		if errors.Is(err, library.ErrNotFound) {
			dirLink = &library.MediaLink{
				GID:             uuid.NewString(),
				Path:            path,
				Descriptor:      library.DescriptorMediaDirectory,
				MediaKind:       library.MediaKindMovie,
				AddedByUserID:   userID,
				ParentID:        parentID,
				MetadataGID:     &gid,
				RootMetadataGID: &gid,
			}
			if err := p.store.InsertLink(dirLink); err != nil {
				return nil, &metadata.StoreError{Op: "insert directory link", Err: err}
			}
		} else if err != nil {
			return nil, &metadata.StoreError{Op: "find directory link", Err: err}
		} else {
			if err := p.store.UpdateLinkMetadata(dirLink.ID, gid, gid); err != nil {
				return nil, &metadata.StoreError{Op: "update directory link", Err: err}
			}
		}
		parentID = &dirLink.ID
	}

	videoLink := &library.MediaLink{
		GID:             uuid.NewString(),
		Path:            videoPath,
		Descriptor:      library.DescriptorVideo,
		MediaKind:       library.MediaKindMovie,
		AddedByUserID:   userID,
		ParentID:        parentID,
		MetadataGID:     &gid,
		RootMetadataGID: &gid,
	}
	if err := p.store.InsertLink(videoLink); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			existing, gerr := p.store.GetLinkByPath(videoPath)
			if gerr == nil {
				return nil, &DuplicateLinkError{Path: videoPath, ExistingGID: existing.GID}
			}
		}
		return nil, &metadata.StoreError{Op: "insert video link", Err: err}
	}
	return videoLink, nil
}
