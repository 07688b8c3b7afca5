package library

import (
	"fmt"
	"strings"
	"time"
)

const linkColumns = "id, gid, path, descriptor, media_kind, added_by_user_id, parent_id, metadata_gid, root_metadata_gid, added_at, updated_at"

func scanLink(row interface{ Scan(...any) error }) (*MediaLink, error) {
	l := &MediaLink{}
	err := row.Scan(&l.ID, &l.GID, &l.Path, &l.Descriptor, &l.MediaKind,
		&l.AddedByUserID, &l.ParentID, &l.MetadataGID, &l.RootMetadataGID,
		&l.AddedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func insertLink(q querier, l *MediaLink) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media_links (gid, path, descriptor, media_kind, added_by_user_id, parent_id, metadata_gid, root_metadata_gid, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.GID, l.Path, l.Descriptor, l.MediaKind, l.AddedByUserID,
		l.ParentID, l.MetadataGID, l.RootMetadataGID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	l.ID = id
	l.AddedAt = now
	l.UpdatedAt = now
	return nil
}

// InsertLink inserts a new media link.
// Sets ID and timestamps on the struct. Returns ErrDuplicate if a link
// already exists for the same path.
func (s *Store) InsertLink(l *MediaLink) error { return insertLink(s.db, l) }

// InsertLink inserts a new media link within a transaction.
func (t *Tx) InsertLink(l *MediaLink) error { return insertLink(t.tx, l) }

// InsertLinks inserts a batch of links in a single transaction.
// Parents must be inserted before their children within the batch.
func (s *Store) InsertLinks(links []*MediaLink) error {
	if len(links) == 0 {
		return nil
	}
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range links {
		if err := tx.InsertLink(l); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func getLinkByPath(q querier, path string) (*MediaLink, error) {
	l, err := scanLink(q.QueryRow(
		"SELECT "+linkColumns+" FROM media_links WHERE path = ?", path))
	if err != nil {
		return nil, fmt.Errorf("get link by path %s: %w", path, mapSQLiteError(err))
	}
	return l, nil
}

// GetLinkByPath retrieves a link by its absolute path.
// Returns ErrNotFound if no link exists for the path.
func (s *Store) GetLinkByPath(path string) (*MediaLink, error) { return getLinkByPath(s.db, path) }

// GetLinkByPath retrieves a link by path within a transaction.
func (t *Tx) GetLinkByPath(path string) (*MediaLink, error) { return getLinkByPath(t.tx, path) }

func getLinkByGID(q querier, gid string) (*MediaLink, error) {
	l, err := scanLink(q.QueryRow(
		"SELECT "+linkColumns+" FROM media_links WHERE gid = ?", gid))
	if err != nil {
		return nil, fmt.Errorf("get link %s: %w", gid, mapSQLiteError(err))
	}
	return l, nil
}

// GetLinkByGID retrieves a link by its stable GID.
func (s *Store) GetLinkByGID(gid string) (*MediaLink, error) { return getLinkByGID(s.db, gid) }

// FindPathsUnder returns all known paths strictly below root.
// The prefix comparison avoids LIKE so that "_" and "%" in real paths
// don't act as wildcards.
func (s *Store) FindPathsUnder(root string) ([]string, error) {
	prefix := strings.TrimSuffix(root, "/") + "/"
	rows, err := s.db.Query(
		"SELECT path FROM media_links WHERE substr(path, 1, ?) = ? ORDER BY path",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("find paths under %s: %w", root, err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

// FindLinksUnder returns all links strictly below root, ordered by path so
// parents precede their children.
func (s *Store) FindLinksUnder(root string) ([]*MediaLink, error) {
	prefix := strings.TrimSuffix(root, "/") + "/"
	rows, err := s.db.Query(
		"SELECT "+linkColumns+" FROM media_links WHERE substr(path, 1, ?) = ? ORDER BY path",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("find links under %s: %w", root, err)
	}
	defer func() { _ = rows.Close() }()

	var links []*MediaLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// FindLinksByGIDs returns the links for the given GIDs. Missing GIDs are
// silently omitted from the result.
func (s *Store) FindLinksByGIDs(gids []string) ([]*MediaLink, error) {
	if len(gids) == 0 {
		return nil, nil
	}
	args := make([]any, len(gids))
	for i, g := range gids {
		args[i] = g
	}
	rows, err := s.db.Query(
		"SELECT "+linkColumns+" FROM media_links WHERE gid IN ("+placeholders(len(gids))+") ORDER BY id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find links by gids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []*MediaLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// FindGIDsByPaths returns the GIDs of links whose paths are in the given set.
func (s *Store) FindGIDsByPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p
	}
	rows, err := s.db.Query(
		"SELECT gid FROM media_links WHERE path IN ("+placeholders(len(paths))+") ORDER BY path",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find gids by paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gids []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan gid: %w", err)
		}
		gids = append(gids, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gids: %w", err)
	}
	return gids, nil
}

// DeleteLinksByPaths removes links whose paths are in the given set.
// Child links parented below a deleted directory are removed by the
// ON DELETE CASCADE constraint. Returns the number of rows deleted directly.
func (s *Store) DeleteLinksByPaths(paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p
	}
	result, err := s.db.Exec(
		"DELETE FROM media_links WHERE path IN ("+placeholders(len(paths))+")",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete links by paths: %w", mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func updateLinkMetadata(q querier, id int64, metadataGID, rootMetadataGID string) error {
	result, err := q.Exec(`
		UPDATE media_links SET metadata_gid = ?, root_metadata_gid = ?, updated_at = ?
		WHERE id = ?`,
		metadataGID, rootMetadataGID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update link metadata %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update link metadata %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateLinkMetadata associates a link with resolved metadata.
// Returns ErrNotFound if the link does not exist.
func (s *Store) UpdateLinkMetadata(id int64, metadataGID, rootMetadataGID string) error {
	return updateLinkMetadata(s.db, id, metadataGID, rootMetadataGID)
}

// UpdateLinkMetadata associates a link with metadata within a transaction.
func (t *Tx) UpdateLinkMetadata(id int64, metadataGID, rootMetadataGID string) error {
	return updateLinkMetadata(t.tx, id, metadataGID, rootMetadataGID)
}

// FindUnmatchedDirectories returns media directories of the given kind that
// have no metadata association yet. These are the import processor targets.
func (s *Store) FindUnmatchedDirectories(kind MediaKind) ([]*MediaLink, error) {
	rows, err := s.db.Query(
		"SELECT "+linkColumns+` FROM media_links
		 WHERE media_kind = ? AND descriptor = ? AND metadata_gid IS NULL
		 ORDER BY path`,
		kind, DescriptorMediaDirectory,
	)
	if err != nil {
		return nil, fmt.Errorf("find unmatched directories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []*MediaLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// CountLinks returns the number of links, optionally filtered by kind.
func (s *Store) CountLinks(kind MediaKind) (int, error) {
	query := "SELECT COUNT(*) FROM media_links"
	var args []any
	if kind != "" {
		query += " WHERE media_kind = ?"
		args = append(args, kind)
	}
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return n, nil
}
