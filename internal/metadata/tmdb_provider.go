package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/pkg/title"
	"github.com/vmunix/mediad/pkg/tmdb"
)

// TMDBProviderID is the provider token used in composite remote IDs.
const TMDBProviderID = "tmdb"

const (
	posterSize   = "w500"
	backdropSize = "original"
)

// TMDBProvider resolves movie and TV content against The Movie Database and
// persists imported records through the library store.
type TMDBProvider struct {
	client *tmdb.Client
	store  *library.Store
	log    *slog.Logger
}

// NewTMDBProvider creates a TMDB-backed metadata provider.
func NewTMDBProvider(client *tmdb.Client, store *library.Store, log *slog.Logger) *TMDBProvider {
	if log == nil {
		log = slog.Default()
	}
	return &TMDBProvider{client: client, store: store, log: log}
}

// ID implements Provider.
func (p *TMDBProvider) ID() string { return TMDBProviderID }

// SupportedKinds implements Provider.
func (p *TMDBProvider) SupportedKinds() []library.MediaKind {
	return []library.MediaKind{library.MediaKindMovie, library.MediaKindTV}
}

// Search implements Provider. A ContentID request resolves one specific
// record (honoring season/episode extras); a Query request returns candidates
// in TMDB relevance order.
func (p *TMDBProvider) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	switch req.MediaKind {
	case library.MediaKindMovie:
		if req.ContentID != "" {
			return p.lookupMovie(ctx, req.ContentID)
		}
		return p.searchMovies(ctx, req)
	case library.MediaKindTV:
		if req.ContentID != "" {
			return p.lookupTV(ctx, req)
		}
		return p.searchTV(ctx, req)
	default:
		return nil, fmt.Errorf("%w: kind %s not supported by tmdb", ErrProviderNotFound, req.MediaKind)
	}
}

func (p *TMDBProvider) searchMovies(ctx context.Context, req SearchRequest) ([]Match, error) {
	movies, err := p.client.SearchMovies(ctx, req.Query, req.Year)
	if err != nil {
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}

	matches := make([]Match, 0, len(movies))
	for i := range movies {
		m, err := p.movieMatch(&movies[i], req.Query)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (p *TMDBProvider) lookupMovie(ctx context.Context, contentID string) ([]Match, error) {
	id, err := strconv.ParseInt(contentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: content id %q", ErrInvalidRemoteID, contentID)
	}
	movie, err := p.client.GetMovie(ctx, id)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, nil
		}
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}
	m, err := p.movieMatch(movie, "")
	if err != nil {
		return nil, err
	}
	return []Match{m}, nil
}

func (p *TMDBProvider) movieMatch(movie *tmdb.Movie, query string) (Match, error) {
	match := Match{
		RemoteID: RemoteID{
			Provider:  TMDBProviderID,
			MediaKind: library.MediaKindMovie,
			ContentID: strconv.FormatInt(movie.ID, 10),
		}.String(),
		Title:       movie.Title,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
	}
	if query != "" {
		match.TitleScore = title.Score(query, movie.Title)
	}

	existing, err := p.store.FindMetadataByTMDBID(movie.ID, library.MediaTypeMovie)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		return Match{}, &StoreError{Op: "find movie", Err: err}
	}
	if existing != nil {
		match.Exists = true
		match.MetadataGID = existing.GID
	}
	return match, nil
}

func (p *TMDBProvider) searchTV(ctx context.Context, req SearchRequest) ([]Match, error) {
	shows, err := p.client.SearchTV(ctx, req.Query, req.Year)
	if err != nil {
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}

	matches := make([]Match, 0, len(shows))
	for i := range shows {
		m, err := p.showMatch(&shows[i], req.Query)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (p *TMDBProvider) showMatch(show *tmdb.TVShow, query string) (Match, error) {
	match := Match{
		RemoteID: RemoteID{
			Provider:  TMDBProviderID,
			MediaKind: library.MediaKindTV,
			ContentID: strconv.FormatInt(show.ID, 10),
		}.String(),
		Title:       show.Name,
		Overview:    show.Overview,
		ReleaseDate: show.FirstAirDate,
	}
	if query != "" {
		match.TitleScore = title.Score(query, show.Name)
	}

	existing, err := p.store.FindMetadataByTMDBID(show.ID, library.MediaTypeTVShow)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		return Match{}, &StoreError{Op: "find show", Err: err}
	}
	if existing != nil {
		match.Exists = true
		match.MetadataGID = existing.GID
	}
	return match, nil
}

// lookupTV resolves a show, season, or episode from a provider-scoped ID
// with optional season/episode extras.
func (p *TMDBProvider) lookupTV(ctx context.Context, req SearchRequest) ([]Match, error) {
	id, err := strconv.ParseInt(req.ContentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: content id %q", ErrInvalidRemoteID, req.ContentID)
	}

	show, err := p.client.GetTVShow(ctx, id)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, nil
		}
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}

	if req.Season == nil {
		m, err := p.showMatch(show, "")
		if err != nil {
			return nil, err
		}
		return []Match{m}, nil
	}

	rid := RemoteID{
		Provider:  TMDBProviderID,
		MediaKind: library.MediaKindTV,
		ContentID: req.ContentID,
		Season:    req.Season,
		Episode:   req.Episode,
	}

	match := Match{RemoteID: rid.String()}
	if req.Episode == nil {
		var found bool
		for _, s := range show.Seasons {
			if s.SeasonNumber == *req.Season {
				match.Title = s.Name
				match.Overview = s.Overview
				match.ReleaseDate = s.AirDate
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	} else {
		season, err := p.client.GetSeason(ctx, id, *req.Season)
		if err != nil {
			if errors.Is(err, tmdb.ErrNotFound) {
				return nil, nil
			}
			return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
		}
		var found bool
		for _, ep := range season.Episodes {
			if ep.EpisodeNumber == *req.Episode {
				match.Title = ep.Name
				match.Overview = ep.Overview
				match.ReleaseDate = ep.AirDate
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	}

	gid, ok, err := p.existingShowChild(id, *req.Season, req.Episode)
	if err != nil {
		return nil, err
	}
	if ok {
		match.Exists = true
		match.MetadataGID = gid
	}
	return []Match{match}, nil
}

// existingShowChild resolves the local GID of a season or episode through
// the imported show hierarchy, matched by index.
func (p *TMDBProvider) existingShowChild(showTMDBID int64, seasonNum int, episodeNum *int) (string, bool, error) {
	show, err := p.store.FindMetadataByTMDBID(showTMDBID, library.MediaTypeTVShow)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return "", false, nil
		}
		return "", false, &StoreError{Op: "find show", Err: err}
	}

	seasons, err := p.store.FindSeasons(show.GID)
	if err != nil {
		return "", false, &StoreError{Op: "find seasons", Err: err}
	}
	var season *library.Metadata
	for _, s := range seasons {
		if s.Index == seasonNum {
			season = s
			break
		}
	}
	if season == nil {
		return "", false, nil
	}
	if episodeNum == nil {
		return season.GID, true, nil
	}

	episodes, err := p.store.FindEpisodes(season.GID)
	if err != nil {
		return "", false, &StoreError{Op: "find episodes", Err: err}
	}
	for _, e := range episodes {
		if e.Index == *episodeNum {
			return e.GID, true, nil
		}
	}
	return "", false, nil
}

// Import implements Provider. On refresh, season and episode records are
// matched to existing rows by index and their GIDs reused, never
// regenerated; media links and playback state keep pointing at stable IDs.
func (p *TMDBProvider) Import(ctx context.Context, req ImportRequest) ([]*ImportResult, error) {
	id, err := strconv.ParseInt(req.ContentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: content id %q", ErrInvalidRemoteID, req.ContentID)
	}

	switch req.MediaKind {
	case library.MediaKindMovie:
		result, err := p.importMovie(ctx, id, req.Refresh)
		if err != nil {
			return nil, err
		}
		return []*ImportResult{result}, nil
	case library.MediaKindTV:
		result, err := p.importShow(ctx, id, req.Refresh)
		if err != nil {
			return nil, err
		}
		return []*ImportResult{result}, nil
	default:
		return nil, fmt.Errorf("%w: kind %s not supported by tmdb", ErrProviderNotFound, req.MediaKind)
	}
}

func (p *TMDBProvider) importMovie(ctx context.Context, tmdbID int64, refresh bool) (*ImportResult, error) {
	existing, err := p.store.FindMetadataByTMDBID(tmdbID, library.MediaTypeMovie)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		return nil, &StoreError{Op: "find movie", Err: err}
	}
	if existing != nil && !refresh {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyImported, existing.GID)
	}

	movie, err := p.client.GetMovie(ctx, tmdbID)
	if err != nil {
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}

	meta := &library.Metadata{
		GID:          uuid.NewString(),
		TMDBID:       &movie.ID,
		Title:        movie.Title,
		Overview:     movie.Overview,
		ReleaseDate:  movie.ReleaseDate,
		MediaKind:    library.MediaKindMovie,
		MediaType:    library.MediaTypeMovie,
		PosterPath:   tmdb.ImageURL(movie.PosterPath, posterSize),
		BackdropPath: tmdb.ImageURL(movie.BackdropPath, backdropSize),
	}
	if existing != nil {
		meta.GID = existing.GID
	}
	meta.RootGID = &meta.GID

	if existing != nil {
		if err := p.store.UpdateMetadata(meta); err != nil {
			return nil, &StoreError{Op: "update movie", Err: err}
		}
	} else {
		if err := p.store.InsertMetadata(meta); err != nil {
			return nil, &StoreError{Op: "insert movie", Err: err}
		}
	}

	p.log.Info("imported movie", "tmdb_id", tmdbID, "gid", meta.GID, "title", meta.Title, "refresh", refresh)
	return &ImportResult{Metadata: meta}, nil
}

func (p *TMDBProvider) importShow(ctx context.Context, tmdbID int64, refresh bool) (*ImportResult, error) {
	existing, err := p.store.FindMetadataByTMDBID(tmdbID, library.MediaTypeTVShow)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		return nil, &StoreError{Op: "find show", Err: err}
	}
	if existing != nil && !refresh {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyImported, existing.GID)
	}

	show, err := p.client.GetTVShow(ctx, tmdbID)
	if err != nil {
		return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
	}

	showMeta := &library.Metadata{
		GID:          uuid.NewString(),
		TMDBID:       &show.ID,
		Title:        show.Name,
		Overview:     show.Overview,
		ReleaseDate:  show.FirstAirDate,
		MediaKind:    library.MediaKindTV,
		MediaType:    library.MediaTypeTVShow,
		PosterPath:   tmdb.ImageURL(show.PosterPath, posterSize),
		BackdropPath: tmdb.ImageURL(show.BackdropPath, backdropSize),
	}
	if existing != nil {
		showMeta.GID = existing.GID
	}
	showMeta.RootGID = &showMeta.GID

	// Fetch the full episode lists before opening the write transaction so
	// provider latency never holds database locks.
	fullSeasons := make([]*tmdb.Season, 0, len(show.Seasons))
	for _, s := range show.Seasons {
		full, err := p.client.GetSeason(ctx, tmdbID, s.SeasonNumber)
		if err != nil {
			if errors.Is(err, tmdb.ErrNotFound) {
				continue
			}
			return nil, &ProviderError{Provider: TMDBProviderID, Err: err}
		}
		fullSeasons = append(fullSeasons, full)
	}

	tx, err := p.store.Begin()
	if err != nil {
		return nil, &StoreError{Op: "begin import", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if existing != nil {
		if err := tx.UpdateMetadata(showMeta); err != nil {
			return nil, &StoreError{Op: "update show", Err: err}
		}
	} else {
		if err := tx.InsertMetadata(showMeta); err != nil {
			return nil, &StoreError{Op: "insert show", Err: err}
		}
	}

	existingSeasons := map[int]*library.Metadata{}
	if existing != nil {
		seasons, err := tx.FindSeasons(showMeta.GID)
		if err != nil {
			return nil, &StoreError{Op: "find seasons", Err: err}
		}
		for _, s := range seasons {
			existingSeasons[s.Index] = s
		}
	}

	result := &ImportResult{Metadata: showMeta}
	for _, season := range fullSeasons {
		seasonMeta, episodes, err := p.importSeason(tx, showMeta, season, existingSeasons[season.SeasonNumber])
		if err != nil {
			return nil, err
		}
		result.Seasons = append(result.Seasons, seasonMeta)
		result.Episodes = append(result.Episodes, episodes...)
	}

	if err := tx.Commit(); err != nil {
		return nil, &StoreError{Op: "commit import", Err: err}
	}

	p.log.Info("imported show", "tmdb_id", tmdbID, "gid", showMeta.GID, "title", showMeta.Title,
		"seasons", len(result.Seasons), "episodes", len(result.Episodes), "refresh", refresh)
	return result, nil
}

// importSeason writes one season and its episodes, reusing the GIDs of any
// previously imported rows matched by index.
func (p *TMDBProvider) importSeason(tx *library.Tx, show *library.Metadata, season *tmdb.Season, prior *library.Metadata) (*library.Metadata, []*library.Metadata, error) {
	seasonMeta := &library.Metadata{
		GID:         uuid.NewString(),
		Title:       season.Name,
		Overview:    season.Overview,
		ReleaseDate: season.AirDate,
		Index:       season.SeasonNumber,
		MediaKind:   library.MediaKindTV,
		MediaType:   library.MediaTypeTVSeason,
		ParentGID:   &show.GID,
		RootGID:     &show.GID,
		PosterPath:  tmdb.ImageURL(season.PosterPath, posterSize),
	}

	existingEpisodes := map[int]*library.Metadata{}
	if prior != nil {
		seasonMeta.GID = prior.GID
		if err := tx.UpdateMetadata(seasonMeta); err != nil {
			return nil, nil, &StoreError{Op: "update season", Err: err}
		}
		episodes, err := tx.FindEpisodes(seasonMeta.GID)
		if err != nil {
			return nil, nil, &StoreError{Op: "find episodes", Err: err}
		}
		for _, e := range episodes {
			existingEpisodes[e.Index] = e
		}
	} else {
		if err := tx.InsertMetadata(seasonMeta); err != nil {
			return nil, nil, &StoreError{Op: "insert season", Err: err}
		}
	}

	results := make([]*library.Metadata, 0, len(season.Episodes))
	for _, ep := range season.Episodes {
		epMeta := &library.Metadata{
			GID:         uuid.NewString(),
			Title:       ep.Name,
			Overview:    ep.Overview,
			ReleaseDate: ep.AirDate,
			Index:       ep.EpisodeNumber,
			ParentIndex: season.SeasonNumber,
			MediaKind:   library.MediaKindTV,
			MediaType:   library.MediaTypeTVEpisode,
			ParentGID:   &seasonMeta.GID,
			RootGID:     &show.GID,
		}
		if prior := existingEpisodes[ep.EpisodeNumber]; prior != nil {
			epMeta.GID = prior.GID
			if err := tx.UpdateMetadata(epMeta); err != nil {
				return nil, nil, &StoreError{Op: "update episode", Err: err}
			}
		} else {
			if err := tx.InsertMetadata(epMeta); err != nil {
				return nil, nil, &StoreError{Op: "insert episode", Err: err}
			}
		}
		results = append(results, epMeta)
	}
	return seasonMeta, results, nil
}
