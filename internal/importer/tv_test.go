package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/metadata"
)

// writeShowDir lays out a show with one season folder holding two episodes
// and a specials folder with one.
func writeShowDir(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "Breaking Bad (2008)")
	season := filepath.Join(dir, "Season 01")
	specials := filepath.Join(dir, "Specials")
	require.NoError(t, os.MkdirAll(season, 0o755))
	require.NoError(t, os.MkdirAll(specials, 0o755))
	for _, name := range []string{
		filepath.Join(season, "Breaking.Bad.S01E01.mkv"),
		filepath.Join(season, "Breaking.Bad.S01E02.mkv"),
		filepath.Join(specials, "Breaking.Bad.S00E01.mkv"),
	} {
		require.NoError(t, os.WriteFile(name, make([]byte, 256), 0o644))
	}
	return dir
}

func expectShowSearch(e *env) {
	e.provider.EXPECT().Search(gomock.Any(), metadata.SearchRequest{
		MediaKind: library.MediaKindTV,
		Query:     "Breaking Bad",
		Year:      2008,
	}).Return([]metadata.Match{
		{RemoteID: "tmdb:tv:1396", Title: "Breaking Bad"},
	}, nil)
}

func TestTVProcessor_Process(t *testing.T) {
	e := newEnv(t, library.MediaKindTV)
	proc := NewTVProcessor(e.store, e.resolver, e.log)

	dir := writeShowDir(t, t.TempDir())

	expectShowSearch(e)
	imported := e.stubShowImport(t, "1396", "Breaking Bad", map[int]int{0: 1, 1: 2}, false)

	res, err := proc.Process(context.Background(), dir, 1)
	require.NoError(t, err)
	assert.Equal(t, imported.Metadata.GID, res.MetadataGID)

	hierarchy := map[int]string{}
	for _, s := range imported.Seasons {
		hierarchy[s.Index] = s.GID
	}
	episodeGIDs := map[[2]int]string{}
	for _, ep := range imported.Episodes {
		episodeGIDs[[2]int{ep.ParentIndex, ep.Index}] = ep.GID
	}

	seasonLink, err := e.store.GetLinkByPath(filepath.Join(dir, "Season 01"))
	require.NoError(t, err)
	assert.Equal(t, library.DescriptorChildDirectory, seasonLink.Descriptor)
	require.NotNil(t, seasonLink.MetadataGID)
	assert.Equal(t, hierarchy[1], *seasonLink.MetadataGID)
	require.NotNil(t, seasonLink.RootMetadataGID)
	assert.Equal(t, imported.Metadata.GID, *seasonLink.RootMetadataGID)

	// "Specials" maps to season zero.
	specialsLink, err := e.store.GetLinkByPath(filepath.Join(dir, "Specials"))
	require.NoError(t, err)
	require.NotNil(t, specialsLink.MetadataGID)
	assert.Equal(t, hierarchy[0], *specialsLink.MetadataGID)

	ep1, err := e.store.GetLinkByPath(filepath.Join(dir, "Season 01", "Breaking.Bad.S01E01.mkv"))
	require.NoError(t, err)
	require.NotNil(t, ep1.MetadataGID)
	assert.Equal(t, episodeGIDs[[2]int{1, 1}], *ep1.MetadataGID)
	require.NotNil(t, ep1.ParentID)
	assert.Equal(t, seasonLink.ID, *ep1.ParentID)

	special, err := e.store.GetLinkByPath(filepath.Join(dir, "Specials", "Breaking.Bad.S00E01.mkv"))
	require.NoError(t, err)
	require.NotNil(t, special.MetadataGID)
	assert.Equal(t, episodeGIDs[[2]int{0, 1}], *special.MetadataGID)
}

func TestTVProcessor_Process_ExistingShowRefreshes(t *testing.T) {
	e := newEnv(t, library.MediaKindTV)
	proc := NewTVProcessor(e.store, e.resolver, e.log)

	dir := writeShowDir(t, t.TempDir())

	m := &library.Metadata{
		GID:       uuid.NewString(),
		Title:     "Breaking Bad",
		MediaKind: library.MediaKindTV,
		MediaType: library.MediaTypeTVShow,
	}
	m.RootGID = &m.GID
	require.NoError(t, e.store.InsertMetadata(m))

	// A match that exists locally triggers a refresh import, keeping IDs.
	e.provider.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]metadata.Match{
		{RemoteID: "tmdb:tv:1396", Title: "Breaking Bad", Exists: true, MetadataGID: m.GID},
	}, nil)
	e.stubShowImport(t, "1396", "Breaking Bad", map[int]int{1: 2}, true)

	_, err := proc.Process(context.Background(), dir, 1)
	require.NoError(t, err)
}

func TestTVProcessor_Process_FileTargetRejected(t *testing.T) {
	e := newEnv(t, library.MediaKindTV)
	proc := NewTVProcessor(e.store, e.resolver, e.log)

	file := filepath.Join(t.TempDir(), "episode.mkv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := proc.Process(context.Background(), file, 1)
	assert.ErrorIs(t, err, ErrNoPlayableFile)
}

func TestTVProcessor_Process_DuplicateLink(t *testing.T) {
	e := newEnv(t, library.MediaKindTV)
	proc := NewTVProcessor(e.store, e.resolver, e.log)

	dir := writeShowDir(t, t.TempDir())

	existing := &library.MediaLink{
		GID:        uuid.NewString(),
		Path:       dir,
		Descriptor: library.DescriptorMediaDirectory,
		MediaKind:  library.MediaKindTV,
	}
	require.NoError(t, e.store.InsertLink(existing))

	_, err := proc.Process(context.Background(), dir, 1)
	var dup *DuplicateLinkError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, existing.GID, dup.ExistingGID)
}

func TestTVProcessor_Match_ScannedTree(t *testing.T) {
	e := newEnv(t, library.MediaKindTV)
	proc := NewTVProcessor(e.store, e.resolver, e.log)

	dir := writeShowDir(t, t.TempDir())

	// Simulate a prior scan of the show tree.
	showLink := &library.MediaLink{
		GID:        uuid.NewString(),
		Path:       dir,
		Descriptor: library.DescriptorMediaDirectory,
		MediaKind:  library.MediaKindTV,
	}
	require.NoError(t, e.store.InsertLink(showLink))
	seasonLink := &library.MediaLink{
		GID:        uuid.NewString(),
		Path:       filepath.Join(dir, "Season 01"),
		Descriptor: library.DescriptorChildDirectory,
		MediaKind:  library.MediaKindTV,
		ParentID:   &showLink.ID,
	}
	require.NoError(t, e.store.InsertLink(seasonLink))
	epLink := &library.MediaLink{
		GID:        uuid.NewString(),
		Path:       filepath.Join(dir, "Season 01", "Breaking.Bad.S01E01.mkv"),
		Descriptor: library.DescriptorVideo,
		MediaKind:  library.MediaKindTV,
		ParentID:   &seasonLink.ID,
	}
	require.NoError(t, e.store.InsertLink(epLink))

	expectShowSearch(e)
	// Matching a scanned tree always refreshes so a previously imported
	// hierarchy keeps its GIDs.
	imported := e.stubShowImport(t, "1396", "Breaking Bad", map[int]int{1: 2}, true)

	res, err := proc.Match(context.Background(), showLink)
	require.NoError(t, err)
	assert.Equal(t, imported.Metadata.GID, res.MetadataGID)

	updatedSeason, err := e.store.GetLinkByPath(seasonLink.Path)
	require.NoError(t, err)
	require.NotNil(t, updatedSeason.MetadataGID)
	assert.Equal(t, imported.Seasons[0].GID, *updatedSeason.MetadataGID)

	updatedEp, err := e.store.GetLinkByPath(epLink.Path)
	require.NoError(t, err)
	require.NotNil(t, updatedEp.MetadataGID)
	assert.Equal(t, imported.Episodes[0].GID, *updatedEp.MetadataGID)
	assert.Equal(t, epLink.GID, updatedEp.GID)
}
