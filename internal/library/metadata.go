package library

import (
	"fmt"
	"time"
)

const metadataColumns = "id, gid, tmdb_id, title, overview, release_date, idx, parent_idx, media_kind, media_type, parent_gid, root_gid, poster_path, backdrop_path, added_at, updated_at"

func scanMetadata(row interface{ Scan(...any) error }) (*Metadata, error) {
	m := &Metadata{}
	err := row.Scan(&m.ID, &m.GID, &m.TMDBID, &m.Title, &m.Overview,
		&m.ReleaseDate, &m.Index, &m.ParentIndex, &m.MediaKind, &m.MediaType,
		&m.ParentGID, &m.RootGID, &m.PosterPath, &m.BackdropPath,
		&m.AddedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func insertMetadata(q querier, m *Metadata) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO metadata (gid, tmdb_id, title, overview, release_date, idx, parent_idx, media_kind, media_type, parent_gid, root_gid, poster_path, backdrop_path, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GID, m.TMDBID, m.Title, m.Overview, m.ReleaseDate, m.Index, m.ParentIndex,
		m.MediaKind, m.MediaType, m.ParentGID, m.RootGID, m.PosterPath, m.BackdropPath,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert metadata: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.AddedAt = now
	m.UpdatedAt = now
	return nil
}

// InsertMetadata inserts a new metadata record.
// Sets ID and timestamps on the struct.
func (s *Store) InsertMetadata(m *Metadata) error { return insertMetadata(s.db, m) }

// InsertMetadata inserts a new metadata record within a transaction.
func (t *Tx) InsertMetadata(m *Metadata) error { return insertMetadata(t.tx, m) }

func updateMetadata(q querier, m *Metadata) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE metadata SET tmdb_id = ?, title = ?, overview = ?, release_date = ?,
			idx = ?, parent_idx = ?, media_kind = ?, media_type = ?,
			parent_gid = ?, root_gid = ?, poster_path = ?, backdrop_path = ?, updated_at = ?
		WHERE gid = ?`,
		m.TMDBID, m.Title, m.Overview, m.ReleaseDate, m.Index, m.ParentIndex,
		m.MediaKind, m.MediaType, m.ParentGID, m.RootGID, m.PosterPath, m.BackdropPath,
		now, m.GID,
	)
	if err != nil {
		return fmt.Errorf("update metadata %s: %w", m.GID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update metadata %s: %w", m.GID, ErrNotFound)
	}
	m.UpdatedAt = now
	return nil
}

// UpdateMetadata updates an existing record, matched by GID.
// Returns ErrNotFound if no record exists.
func (s *Store) UpdateMetadata(m *Metadata) error { return updateMetadata(s.db, m) }

// UpdateMetadata updates a record within a transaction.
func (t *Tx) UpdateMetadata(m *Metadata) error { return updateMetadata(t.tx, m) }

func getMetadata(q querier, gid string) (*Metadata, error) {
	m, err := scanMetadata(q.QueryRow(
		"SELECT "+metadataColumns+" FROM metadata WHERE gid = ?", gid))
	if err != nil {
		return nil, fmt.Errorf("get metadata %s: %w", gid, mapSQLiteError(err))
	}
	return m, nil
}

// GetMetadata retrieves a metadata record by GID.
// Returns ErrNotFound if the record does not exist.
func (s *Store) GetMetadata(gid string) (*Metadata, error) { return getMetadata(s.db, gid) }

// GetMetadata retrieves a record by GID within a transaction.
func (t *Tx) GetMetadata(gid string) (*Metadata, error) { return getMetadata(t.tx, gid) }

func findMetadataByTMDBID(q querier, tmdbID int64, mediaType MediaType) (*Metadata, error) {
	m, err := scanMetadata(q.QueryRow(
		"SELECT "+metadataColumns+" FROM metadata WHERE tmdb_id = ? AND media_type = ?",
		tmdbID, mediaType))
	if err != nil {
		return nil, fmt.Errorf("find metadata by tmdb id %d: %w", tmdbID, mapSQLiteError(err))
	}
	return m, nil
}

// FindMetadataByTMDBID looks up an already-imported movie or show by its
// provider-side numeric ID. Returns ErrNotFound if nothing has been imported.
func (s *Store) FindMetadataByTMDBID(tmdbID int64, mediaType MediaType) (*Metadata, error) {
	return findMetadataByTMDBID(s.db, tmdbID, mediaType)
}

// FindMetadataByTMDBID looks up a record within a transaction.
func (t *Tx) FindMetadataByTMDBID(tmdbID int64, mediaType MediaType) (*Metadata, error) {
	return findMetadataByTMDBID(t.tx, tmdbID, mediaType)
}

func findChildren(q querier, parentGID string, mediaType MediaType) ([]*Metadata, error) {
	rows, err := q.Query(
		"SELECT "+metadataColumns+" FROM metadata WHERE parent_gid = ? AND media_type = ? ORDER BY idx",
		parentGID, mediaType,
	)
	if err != nil {
		return nil, fmt.Errorf("find children of %s: %w", parentGID, err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Metadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata: %w", err)
	}
	return results, nil
}

// FindSeasons returns the season records of a show, ordered by season number.
func (s *Store) FindSeasons(showGID string) ([]*Metadata, error) {
	return findChildren(s.db, showGID, MediaTypeTVSeason)
}

// FindSeasons returns season records within a transaction.
func (t *Tx) FindSeasons(showGID string) ([]*Metadata, error) {
	return findChildren(t.tx, showGID, MediaTypeTVSeason)
}

// FindEpisodes returns the episode records of a season, ordered by episode number.
func (s *Store) FindEpisodes(seasonGID string) ([]*Metadata, error) {
	return findChildren(s.db, seasonGID, MediaTypeTVEpisode)
}

// FindEpisodes returns episode records within a transaction.
func (t *Tx) FindEpisodes(seasonGID string) ([]*Metadata, error) {
	return findChildren(t.tx, seasonGID, MediaTypeTVEpisode)
}

// CountMetadata returns the number of metadata records of the given type.
func (s *Store) CountMetadata(mediaType MediaType) (int, error) {
	var n int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM metadata WHERE media_type = ?", mediaType,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count metadata: %w", err)
	}
	return n, nil
}
