package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithFormat(t *testing.T) {
	for _, format := range []string{"", "text", "json", "JSON"} {
		logger, err := NewWithFormat(format, slog.LevelInfo)
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}

	_, err := NewWithFormat("xml", slog.LevelInfo)
	assert.Error(t, err)
}

func TestErrorKeyRenamed(t *testing.T) {
	attr := options(slog.LevelInfo).ReplaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", attr.Key)
}
