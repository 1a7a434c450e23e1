package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	logger, closer, err := New(Config{Level: "DEBUG"}, "test")
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger, _, err = New(Config{}, "test")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	_, _, err = New(Config{Level: "loud"}, "test")
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locatew.log")
	cfg := DefaultConfig()
	cfg.Level = "info"
	cfg.File = path
	cfg.JSON = true

	logger, closer, err := New(cfg, "updatedb")
	require.NoError(t, err)
	logger.Info().Str("root", `C:\`).Msg("walked root")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"updatedb"`)
	assert.Contains(t, string(data), `"message":"walked root"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Empty(t, cfg.File)
	assert.Positive(t, cfg.MaxSizeMB)
}
