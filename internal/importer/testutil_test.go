package importer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/metadata"
	"github.com/vmunix/mediad/internal/metadata/mocks"
	"github.com/vmunix/mediad/internal/migrations"
)

// env wires a real store to a mocked provider behind the resolution service.
type env struct {
	store    *library.Store
	provider *mocks.MockProvider
	resolver *metadata.Service
	log      *slog.Logger
}

func newEnv(t *testing.T, kinds ...library.MediaKind) *env {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	store := library.NewStore(db)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().ID().Return("tmdb").AnyTimes()
	provider.EXPECT().SupportedKinds().Return(kinds).AnyTimes()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := metadata.NewService([]metadata.Provider{provider}, nil, log)

	return &env{store: store, provider: provider, resolver: resolver, log: log}
}

// stubMovieImport arranges for the provider to persist and return one movie
// record when Import is called for the given content ID.
func (e *env) stubMovieImport(t *testing.T, contentID, movieTitle string) {
	t.Helper()
	e.provider.EXPECT().Import(gomock.Any(), metadata.ImportRequest{
		ProviderID: "tmdb",
		MediaKind:  library.MediaKindMovie,
		ContentID:  contentID,
	}).DoAndReturn(func(_ context.Context, _ metadata.ImportRequest) ([]*metadata.ImportResult, error) {
		m := &library.Metadata{
			GID:       uuid.NewString(),
			Title:     movieTitle,
			MediaKind: library.MediaKindMovie,
			MediaType: library.MediaTypeMovie,
		}
		m.RootGID = &m.GID
		require.NoError(t, e.store.InsertMetadata(m))
		return []*metadata.ImportResult{{Metadata: m}}, nil
	})
}

// stubShowImport persists a show with the given seasons (season number ->
// episode count) and returns the import result when the provider is asked to
// import the content ID.
func (e *env) stubShowImport(t *testing.T, contentID, showTitle string, seasons map[int]int, refresh bool) *metadata.ImportResult {
	t.Helper()

	show := &library.Metadata{
		GID:       uuid.NewString(),
		Title:     showTitle,
		MediaKind: library.MediaKindTV,
		MediaType: library.MediaTypeTVShow,
	}
	show.RootGID = &show.GID
	require.NoError(t, e.store.InsertMetadata(show))

	result := &metadata.ImportResult{Metadata: show}
	for seasonNum, episodeCount := range seasons {
		season := &library.Metadata{
			GID:       uuid.NewString(),
			Title:     "Season",
			Index:     seasonNum,
			MediaKind: library.MediaKindTV,
			MediaType: library.MediaTypeTVSeason,
			ParentGID: &show.GID,
			RootGID:   &show.GID,
		}
		require.NoError(t, e.store.InsertMetadata(season))
		result.Seasons = append(result.Seasons, season)

		for epNum := 1; epNum <= episodeCount; epNum++ {
			ep := &library.Metadata{
				GID:         uuid.NewString(),
				Title:       "Episode",
				Index:       epNum,
				ParentIndex: seasonNum,
				MediaKind:   library.MediaKindTV,
				MediaType:   library.MediaTypeTVEpisode,
				ParentGID:   &season.GID,
				RootGID:     &show.GID,
			}
			require.NoError(t, e.store.InsertMetadata(ep))
			result.Episodes = append(result.Episodes, ep)
		}
	}

	e.provider.EXPECT().Import(gomock.Any(), metadata.ImportRequest{
		ProviderID: "tmdb",
		MediaKind:  library.MediaKindTV,
		ContentID:  contentID,
		Refresh:    refresh,
	}).Return([]*metadata.ImportResult{result}, nil)

	return result
}
