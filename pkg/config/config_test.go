package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/contextserve/pkg/automaton"
	"github.com/bastiangx/contextserve/pkg/suggest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, automaton.DefaultWorkLimit, cfg.Suggest.WorkLimit)
	assert.Equal(t, suggest.DefaultLimit, cfg.Suggest.DefaultLimit)
	assert.Equal(t, 1, cfg.Suggest.FuzzyMaxEdits)
	assert.Equal(t, suggest.DefaultFuzzyMinLength, cfg.Suggest.FuzzyMinLength)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 1, cfg.Server.MinPrefix)
	assert.Equal(t, 60, cfg.Server.MaxPrefix)
	assert.True(t, cfg.Server.EnableFilter)
	assert.Empty(t, cfg.Dict.Path)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Suggest.WorkLimit = 2000
	cfg.Server.MaxLimit = 32
	cfg.Dict.Path = "/srv/data/dict.bin"
	require.NoError(t, SaveConfig(cfg, path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_limit = 32\n"), 0o644))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, got.Server.MaxLimit)
	assert.Equal(t, DefaultConfig().Server.MinPrefix, got.Server.MinPrefix)
	assert.Equal(t, DefaultConfig().Suggest.WorkLimit, got.Suggest.WorkLimit)
}

func TestLoadConfigRecoversValidSections(t *testing.T) {
	// work_limit has the wrong type, so strict decoding fails; the
	// recovery pass should still pick up the valid server section
	content := "[suggest]\nwork_limit = \"lots\"\n\n[server]\nmax_limit = 32\nenable_filter = false\n"
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Suggest.WorkLimit, got.Suggest.WorkLimit)
	assert.Equal(t, 32, got.Server.MaxLimit)
	assert.False(t, got.Server.EnableFilter)
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contextserve", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	// second call loads the file it just wrote
	again, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestUpdatePersistsServerSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	require.NoError(t, SaveConfig(cfg, path))

	maxLimit := 16
	enable := false
	require.NoError(t, cfg.Update(path, &maxLimit, nil, nil, &enable))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Server.MaxLimit)
	assert.False(t, got.Server.EnableFilter)
	assert.Equal(t, DefaultConfig().Server.MaxPrefix, got.Server.MaxPrefix)
}
