package library

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func createTestMovieMetadata(t *testing.T, store *Store) *Metadata {
	t.Helper()
	m := &Metadata{
		GID:         uuid.NewString(),
		TMDBID:      ptr(int64(12092)),
		Title:       "Alice in Wonderland",
		Overview:    "Alice follows a white rabbit down a hole.",
		ReleaseDate: "1951-07-26",
		MediaKind:   MediaKindMovie,
		MediaType:   MediaTypeMovie,
	}
	m.RootGID = &m.GID
	if err := store.InsertMetadata(m); err != nil {
		t.Fatalf("create test movie metadata: %v", err)
	}
	return m
}

// createTestShowTree inserts a show with one season of two episodes.
func createTestShowTree(t *testing.T, store *Store) (show, season *Metadata, episodes []*Metadata) {
	t.Helper()
	show = &Metadata{
		GID:       uuid.NewString(),
		TMDBID:    ptr(int64(1396)),
		Title:     "Breaking Bad",
		MediaKind: MediaKindTV,
		MediaType: MediaTypeTVShow,
	}
	show.RootGID = &show.GID
	if err := store.InsertMetadata(show); err != nil {
		t.Fatalf("insert show: %v", err)
	}

	season = &Metadata{
		GID:       uuid.NewString(),
		Title:     "Season 1",
		Index:     1,
		MediaKind: MediaKindTV,
		MediaType: MediaTypeTVSeason,
		ParentGID: &show.GID,
		RootGID:   &show.GID,
	}
	if err := store.InsertMetadata(season); err != nil {
		t.Fatalf("insert season: %v", err)
	}

	for i, title := range []string{"Pilot", "Cat's in the Bag"} {
		e := &Metadata{
			GID:         uuid.NewString(),
			Title:       title,
			Index:       i + 1,
			ParentIndex: 1,
			MediaKind:   MediaKindTV,
			MediaType:   MediaTypeTVEpisode,
			ParentGID:   &season.GID,
			RootGID:     &show.GID,
		}
		if err := store.InsertMetadata(e); err != nil {
			t.Fatalf("insert episode: %v", err)
		}
		episodes = append(episodes, e)
	}
	return show, season, episodes
}

func TestStore_InsertMetadata(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := createTestMovieMetadata(t, store)
	if m.ID == 0 {
		t.Error("ID should be set after InsertMetadata")
	}

	retrieved, err := store.GetMetadata(m.GID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if retrieved.Title != "Alice in Wonderland" {
		t.Errorf("Title = %q, want Alice in Wonderland", retrieved.Title)
	}
	if retrieved.TMDBID == nil || *retrieved.TMDBID != 12092 {
		t.Errorf("TMDBID = %v, want 12092", retrieved.TMDBID)
	}
	if retrieved.Year() != 1951 {
		t.Errorf("Year() = %d, want 1951", retrieved.Year())
	}
}

func TestStore_InsertMetadata_DuplicateGID(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	m := createTestMovieMetadata(t, store)

	dup := &Metadata{
		GID:       m.GID,
		Title:     "Another",
		MediaKind: MediaKindMovie,
		MediaType: MediaTypeMovie,
	}
	err := store.InsertMetadata(dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("InsertMetadata duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestStore_GetMetadata_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.GetMetadata("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMetadata error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateMetadata(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	m := createTestMovieMetadata(t, store)

	m.Overview = "Updated overview."
	m.PosterPath = "/poster.jpg"
	if err := store.UpdateMetadata(m); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}

	retrieved, err := store.GetMetadata(m.GID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if retrieved.Overview != "Updated overview." {
		t.Errorf("Overview = %q, want updated text", retrieved.Overview)
	}
	if retrieved.PosterPath != "/poster.jpg" {
		t.Errorf("PosterPath = %q, want /poster.jpg", retrieved.PosterPath)
	}
	// GID is the stable identity; it must survive updates.
	if retrieved.GID != m.GID {
		t.Errorf("GID changed on update: %q != %q", retrieved.GID, m.GID)
	}
}

func TestStore_UpdateMetadata_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Metadata{GID: "missing", Title: "x", MediaKind: MediaKindMovie, MediaType: MediaTypeMovie}
	err := store.UpdateMetadata(m)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMetadata error = %v, want ErrNotFound", err)
	}
}

func TestStore_FindMetadataByTMDBID(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	m := createTestMovieMetadata(t, store)

	found, err := store.FindMetadataByTMDBID(12092, MediaTypeMovie)
	if err != nil {
		t.Fatalf("FindMetadataByTMDBID: %v", err)
	}
	if found.GID != m.GID {
		t.Errorf("GID = %q, want %q", found.GID, m.GID)
	}

	// Same numeric ID under a different type is a different record space.
	_, err = store.FindMetadataByTMDBID(12092, MediaTypeTVShow)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindMetadataByTMDBID wrong type error = %v, want ErrNotFound", err)
	}
}

func TestStore_FindSeasonsAndEpisodes(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	show, season, episodes := createTestShowTree(t, store)

	seasons, err := store.FindSeasons(show.GID)
	if err != nil {
		t.Fatalf("FindSeasons: %v", err)
	}
	if len(seasons) != 1 {
		t.Fatalf("len(seasons) = %d, want 1", len(seasons))
	}
	if seasons[0].GID != season.GID {
		t.Errorf("season GID = %q, want %q", seasons[0].GID, season.GID)
	}

	eps, err := store.FindEpisodes(season.GID)
	if err != nil {
		t.Fatalf("FindEpisodes: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("len(episodes) = %d, want 2", len(eps))
	}
	// Ordered by episode number.
	for i, e := range eps {
		if e.Index != i+1 {
			t.Errorf("episodes[%d].Index = %d, want %d", i, e.Index, i+1)
		}
		if e.GID != episodes[i].GID {
			t.Errorf("episodes[%d].GID = %q, want %q", i, e.GID, episodes[i].GID)
		}
		if e.RootGID == nil || *e.RootGID != show.GID {
			t.Errorf("episodes[%d].RootGID = %v, want %q", i, e.RootGID, show.GID)
		}
	}
}

func TestStore_CountMetadata(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	createTestMovieMetadata(t, store)
	createTestShowTree(t, store)

	for _, tc := range []struct {
		mediaType MediaType
		want      int
	}{
		{MediaTypeMovie, 1},
		{MediaTypeTVShow, 1},
		{MediaTypeTVSeason, 1},
		{MediaTypeTVEpisode, 2},
	} {
		n, err := store.CountMetadata(tc.mediaType)
		if err != nil {
			t.Fatalf("CountMetadata(%s): %v", tc.mediaType, err)
		}
		if n != tc.want {
			t.Errorf("CountMetadata(%s) = %d, want %d", tc.mediaType, n, tc.want)
		}
	}
}

func TestTx_InsertMetadata_Commit(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := &Metadata{
		GID:       uuid.NewString(),
		Title:     "Heat",
		MediaKind: MediaKindMovie,
		MediaType: MediaTypeMovie,
	}
	if err := tx.InsertMetadata(m); err != nil {
		t.Fatalf("tx.InsertMetadata: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	retrieved, err := store.GetMetadata(m.GID)
	if err != nil {
		t.Fatalf("GetMetadata after commit: %v", err)
	}
	if retrieved.Title != "Heat" {
		t.Errorf("Title = %q, want Heat", retrieved.Title)
	}
}
