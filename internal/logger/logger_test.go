package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Config{Level: "warn", Output: &buf}), "scraper")

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Str("community", "golang").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "scraper", entry["component"])
	require.Equal(t, "threadgraph", entry["service"])
	require.Equal(t, "golang", entry["community"])
}

func TestDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "nonsense", Output: &buf})
	l.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	l.Info().Msg("shown")
	require.NotZero(t, buf.Len())
}
