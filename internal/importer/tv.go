package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/metadata"
	"github.com/vmunix/mediad/internal/scanner"
	"github.com/vmunix/mediad/pkg/title"
)

// TVProcessor imports show directories, mapping season folders and SxxEyy
// file names onto the imported metadata hierarchy.
type TVProcessor struct {
	store    *library.Store
	resolver *metadata.Service
	log      *slog.Logger
}

// NewTVProcessor creates a TV import processor.
func NewTVProcessor(store *library.Store, resolver *metadata.Service, log *slog.Logger) *TVProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &TVProcessor{store: store, resolver: resolver, log: log}
}

// Process imports a new show directory into the library. Season and episode
// numbers are derived from "Season NN" folders and SxxEyy markers; each
// episode link is associated to its metadata row matched by index.
func (p *TVProcessor) Process(ctx context.Context, path string, userID int64) (*Result, error) {
	isDir, err := statTarget(path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, fmt.Errorf("%w: %s is not a show directory", ErrNoPlayableFile, path)
	}

	if existing, err := p.store.GetLinkByPath(path); err == nil {
		return nil, &DuplicateLinkError{Path: path, ExistingGID: existing.GID}
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, &metadata.StoreError{Op: "find link", Err: err}
	}

	hierarchy, err := p.resolve(ctx, path, false)
	if err != nil {
		return nil, err
	}

	var parentID *int64
	if parent, err := p.store.GetLinkByPath(filepath.Dir(path)); err == nil {
		parentID = &parent.ID
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, &metadata.StoreError{Op: "find parent link", Err: err}
	}

	showLink := &library.MediaLink{
		GID:             uuid.NewString(),
		Path:            path,
		Descriptor:      library.DescriptorMediaDirectory,
		MediaKind:       library.MediaKindTV,
		AddedByUserID:   userID,
		ParentID:        parentID,
		MetadataGID:     &hierarchy.showGID,
		RootMetadataGID: &hierarchy.showGID,
	}
	if err := p.store.InsertLink(showLink); err != nil {
		return nil, &metadata.StoreError{Op: "insert show link", Err: err}
	}

	if err := p.walkShow(path, showLink, userID, hierarchy); err != nil {
		return nil, err
	}

	p.log.Info("show imported", "path", path, "metadata_gid", hierarchy.showGID)
	return &Result{MetadataGID: hierarchy.showGID, Link: showLink}, nil
}

// Match attaches metadata to an already-scanned, unmatched show directory
// link, associating every season directory and episode file below it. A show
// that was imported before is refreshed, reusing season and episode GIDs.
func (p *TVProcessor) Match(ctx context.Context, link *library.MediaLink) (*Result, error) {
	hierarchy, err := p.resolve(ctx, link.Path, true)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpdateLinkMetadata(link.ID, hierarchy.showGID, hierarchy.showGID); err != nil {
		return nil, &metadata.StoreError{Op: "update show link", Err: err}
	}

	children, err := p.store.FindLinksUnder(link.Path)
	if err != nil {
		return nil, &metadata.StoreError{Op: "find child links", Err: err}
	}
	for _, child := range children {
		var gid string
		switch {
		case child.Descriptor.IsDirectory():
			season, ok := title.ParseSeasonDir(filepath.Base(child.Path))
			if !ok {
				continue
			}
			gid, ok = hierarchy.season(season)
			if !ok {
				continue
			}
		case child.Descriptor == library.DescriptorVideo:
			season, episode, ok := title.ParseEpisode(filepath.Base(child.Path))
			if !ok {
				continue
			}
			gid, ok = hierarchy.episode(season, episode)
			if !ok {
				p.log.Warn("no metadata for episode file", "path", child.Path,
					"season", season, "episode", episode)
				continue
			}
		default:
			continue
		}
		if err := p.store.UpdateLinkMetadata(child.ID, gid, hierarchy.showGID); err != nil {
			return nil, &metadata.StoreError{Op: "update child link", Err: err}
		}
	}

	link.MetadataGID = &hierarchy.showGID
	link.RootMetadataGID = &hierarchy.showGID
	p.log.Info("show matched", "path", link.Path, "metadata_gid", hierarchy.showGID)
	return &Result{MetadataGID: hierarchy.showGID, Link: link}, nil
}

// showHierarchy indexes imported season and episode GIDs by their numbers.
type showHierarchy struct {
	showGID  string
	seasons  map[int]string    // season number -> gid
	episodes map[[2]int]string // (season, episode) -> gid
}

func (h *showHierarchy) season(n int) (string, bool) {
	gid, ok := h.seasons[n]
	return gid, ok
}

func (h *showHierarchy) episode(season, episode int) (string, bool) {
	gid, ok := h.episodes[[2]int{season, episode}]
	return gid, ok
}

// resolve searches the catalog for the show named by the directory and
// imports (or refreshes) its full hierarchy.
func (p *TVProcessor) resolve(ctx context.Context, path string, refresh bool) (*showHierarchy, error) {
	query, year := title.ParseName(filepath.Base(path))

	matches, err := p.resolver.Search(ctx, metadata.SearchRequest{
		MediaKind: library.MediaKindTV,
		Query:     query,
		Year:      year,
	})
	if err != nil {
		return nil, err
	}
	match, ok := metadata.SelectMatch(query, matches)
	if !ok {
		return nil, &MatchNotFoundError{Path: path, Query: query, Year: year, Candidates: matches}
	}

	rid, err := metadata.ParseRemoteID(match.RemoteID)
	if err != nil {
		return nil, err
	}

	// An existing show is refreshed rather than re-created so season and
	// episode GIDs stay stable for links and playback state.
	results, err := p.resolver.Import(ctx, metadata.ImportRequest{
		ProviderID: rid.Provider,
		MediaKind:  library.MediaKindTV,
		ContentID:  rid.ContentID,
		Refresh:    refresh || match.Exists,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Metadata == nil {
		return nil, &MatchNotFoundError{Path: path, Query: query, Year: year, Candidates: matches}
	}

	imported := results[0]
	hierarchy := &showHierarchy{
		showGID:  imported.Metadata.GID,
		seasons:  make(map[int]string, len(imported.Seasons)),
		episodes: make(map[[2]int]string, len(imported.Episodes)),
	}
	for _, s := range imported.Seasons {
		hierarchy.seasons[s.Index] = s.GID
	}
	for _, e := range imported.Episodes {
		hierarchy.episodes[[2]int{e.ParentIndex, e.Index}] = e.GID
	}
	return hierarchy, nil
}

// walkShow creates season directory and episode file links below a newly
// imported show directory.
func (p *TVProcessor) walkShow(path string, showLink *library.MediaLink, userID int64, hierarchy *showHierarchy) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read show directory: %w", err)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			seasonNum, ok := title.ParseSeasonDir(entry.Name())
			var seasonGID *string
			if ok {
				if gid, found := hierarchy.season(seasonNum); found {
					seasonGID = &gid
				}
			}
			seasonLink := &library.MediaLink{
				GID:             uuid.NewString(),
				Path:            entryPath,
				Descriptor:      library.DescriptorChildDirectory,
				MediaKind:       library.MediaKindTV,
				AddedByUserID:   userID,
				ParentID:        &showLink.ID,
				MetadataGID:     seasonGID,
				RootMetadataGID: &hierarchy.showGID,
			}
			if err := p.store.InsertLink(seasonLink); err != nil {
				return &metadata.StoreError{Op: "insert season link", Err: err}
			}
			if err := p.walkSeason(entryPath, seasonLink, userID, hierarchy); err != nil {
				return err
			}
			continue
		}
		if err := p.insertEpisodeFile(entryPath, entry.Name(), showLink, userID, hierarchy); err != nil {
			return err
		}
	}
	return nil
}

func (p *TVProcessor) walkSeason(path string, seasonLink *library.MediaLink, userID int64, hierarchy *showHierarchy) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read season directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := p.insertEpisodeFile(filepath.Join(path, entry.Name()), entry.Name(), seasonLink, userID, hierarchy); err != nil {
			return err
		}
	}
	return nil
}

func (p *TVProcessor) insertEpisodeFile(path, name string, parent *library.MediaLink, userID int64, hierarchy *showHierarchy) error {
	descriptor, ok := scanner.Classify(name, library.MediaKindTV)
	if !ok {
		return nil
	}

	var metadataGID *string
	if descriptor == library.DescriptorVideo {
		if season, episode, ok := title.ParseEpisode(name); ok {
			if gid, found := hierarchy.episode(season, episode); found {
				metadataGID = &gid
			} else {
				p.log.Warn("no metadata for episode file", "path", path,
					"season", season, "episode", episode)
			}
		}
	}

	link := &library.MediaLink{
		GID:             uuid.NewString(),
		Path:            path,
		Descriptor:      descriptor,
		MediaKind:       library.MediaKindTV,
		AddedByUserID:   userID,
		ParentID:        &parent.ID,
		MetadataGID:     metadataGID,
		RootMetadataGID: &hierarchy.showGID,
	}
	if err := p.store.InsertLink(link); err != nil {
		return &metadata.StoreError{Op: "insert episode link", Err: err}
	}
	return nil
}
