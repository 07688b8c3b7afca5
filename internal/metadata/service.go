package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/pkg/title"
)

// Service dispatches search and import requests across the registered
// providers and fronts the image cache.
type Service struct {
	providers []Provider
	images    *ImageCache // nil disables image caching
	log       *slog.Logger
}

// NewService creates a resolution service over the given providers.
func NewService(providers []Provider, images *ImageCache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{providers: providers, images: images, log: log}
}

// provider returns the provider with the given ID.
func (s *Service) provider(id string) (Provider, error) {
	for _, p := range s.providers {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
}

// capableProviders returns every provider supporting the media kind.
func (s *Service) capableProviders(kind library.MediaKind) []Provider {
	var capable []Provider
	for _, p := range s.providers {
		for _, k := range p.SupportedKinds() {
			if k == kind {
				capable = append(capable, p)
				break
			}
		}
	}
	return capable
}

// Search fans the request out across all capable providers and collects
// partial results. A provider failure is logged and skipped unless every
// provider fails, in which case the last failure is returned.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	capable := s.capableProviders(req.MediaKind)
	if len(capable) == 0 {
		return nil, fmt.Errorf("%w: no provider for kind %s", ErrProviderNotFound, req.MediaKind)
	}

	var matches []Match
	var lastErr error
	for _, p := range capable {
		results, err := p.Search(ctx, req)
		if err != nil {
			s.log.Warn("provider search failed", "provider", p.ID(), "query", req.Query, "error", err)
			lastErr = err
			continue
		}
		matches = append(matches, results...)
	}
	if matches == nil && lastErr != nil {
		return nil, lastErr
	}
	return matches, nil
}

// Import dispatches to the requested provider, or to every capable provider
// when no provider ID is given, collecting partial results.
func (s *Service) Import(ctx context.Context, req ImportRequest) ([]*ImportResult, error) {
	var targets []Provider
	if req.ProviderID != "" {
		p, err := s.provider(req.ProviderID)
		if err != nil {
			return nil, err
		}
		targets = []Provider{p}
	} else {
		targets = s.capableProviders(req.MediaKind)
		if len(targets) == 0 {
			return nil, fmt.Errorf("%w: no provider for kind %s", ErrProviderNotFound, req.MediaKind)
		}
	}

	var results []*ImportResult
	var lastErr error
	for _, p := range targets {
		imported, err := p.Import(ctx, req)
		if err != nil {
			s.log.Warn("provider import failed", "provider", p.ID(), "content_id", req.ContentID, "error", err)
			lastErr = err
			continue
		}
		results = append(results, imported...)
	}
	if results == nil && lastErr != nil {
		return nil, lastErr
	}

	s.cacheImages(ctx, results)
	return results, nil
}

// FindByRemoteID decomposes a composite remote ID, runs a provider-scoped
// query carrying the season/episode extras, and returns the single matching
// result.
func (s *Service) FindByRemoteID(ctx context.Context, remoteID string) (Match, error) {
	rid, err := ParseRemoteID(remoteID)
	if err != nil {
		return Match{}, err
	}

	p, err := s.provider(rid.Provider)
	if err != nil {
		return Match{}, err
	}

	matches, err := p.Search(ctx, SearchRequest{
		MediaKind: rid.MediaKind,
		ContentID: rid.ContentID,
		Season:    rid.Season,
		Episode:   rid.Episode,
	})
	if err != nil {
		return Match{}, err
	}
	if len(matches) == 0 {
		return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, remoteID)
	}
	return matches[0], nil
}

// SelectMatch applies the tie-break policy to a candidate list: an exact
// case-insensitive title match wins, otherwise the provider's first
// (highest-relevance) result is taken. ok is false for an empty list.
func SelectMatch(query string, matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	for _, m := range matches {
		if title.ExactMatch(query, m.Title) {
			return m, true
		}
	}
	return matches[0], true
}

// cacheImages prefetches poster and backdrop art for imported records.
// Failures are logged and never fail the import.
func (s *Service) cacheImages(ctx context.Context, results []*ImportResult) {
	if s.images == nil {
		return
	}
	for _, r := range results {
		records := append([]*library.Metadata{r.Metadata}, r.Seasons...)
		for _, m := range records {
			if m == nil {
				continue
			}
			rootGID := m.GID
			if m.RootGID != nil {
				rootGID = *m.RootGID
			}
			if m.PosterPath != "" {
				if _, err := s.images.Get(ctx, ImagePoster, m.GID, rootGID, m.PosterPath); err != nil {
					s.log.Warn("poster cache failed", "gid", m.GID, "error", err)
				}
			}
			if m.BackdropPath != "" {
				if _, err := s.images.Get(ctx, ImageBackdrop, m.GID, rootGID, m.BackdropPath); err != nil {
					s.log.Warn("backdrop cache failed", "gid", m.GID, "error", err)
				}
			}
		}
	}
}
