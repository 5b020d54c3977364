package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFactoryWritesToDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Configure(JSONFormat, slog.LevelInfo, &buf)

	log := NewLogger("wave")
	log.Debugf("hidden %v", 1)
	log.Warnf("clamped %v", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "clamped 2", entry["msg"])
	assert.Equal(t, "wave", entry["scope"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, JSONFormat, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
