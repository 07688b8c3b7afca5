package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediad.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
log_level = "debug"

[database]
path = "/var/lib/mediad/mediad.db"

[images]
cache_dir = "/var/lib/mediad/images"

[scanner]
import_concurrency = 8

[metadata.tmdb]
api_key = "secret"

[[library]]
root = "/srv/media/movies"
kind = "movie"

[[library]]
root = "/srv/media/tv"
kind = "tv"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/mediad/mediad.db", cfg.Database.Path)
	assert.Equal(t, "/var/lib/mediad/images", cfg.Images.CacheDir)
	assert.Equal(t, 8, cfg.Scanner.ImportConcurrency)
	require.NotNil(t, cfg.Metadata.TMDB)
	assert.Equal(t, "secret", cfg.Metadata.TMDB.APIKey)

	require.Len(t, cfg.Libraries, 2)
	assert.Equal(t, "/srv/media/movies", cfg.Libraries[0].Root)
	assert.Equal(t, "movie", cfg.Libraries[0].Kind)
	assert.Equal(t, "tv", cfg.Libraries[1].Kind)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, ``)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "./data/mediad.db", cfg.Database.Path)
	assert.Equal(t, "./data/images", cfg.Images.CacheDir)
	assert.Equal(t, 4, cfg.Scanner.ImportConcurrency)
	assert.Nil(t, cfg.Metadata.TMDB)
	assert.Empty(t, cfg.Libraries)
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("MEDIAD_TMDB_KEY", "from-env")

	path := writeConfig(t, `
[metadata.tmdb]
api_key = "${MEDIAD_TMDB_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Metadata.TMDB)
	assert.Equal(t, "from-env", cfg.Metadata.TMDB.APIKey)
}

func TestLoad_EnvSubstitution_UnsetLeftAlone(t *testing.T) {
	path := writeConfig(t, `
[metadata.tmdb]
api_key = "${MEDIAD_DEFINITELY_UNSET_VAR}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${MEDIAD_DEFINITELY_UNSET_VAR}", cfg.Metadata.TMDB.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, `[server`)
	_, err := Load(path)
	assert.Error(t, err)
}
