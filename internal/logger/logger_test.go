package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "warn", false)

	l.Info().Msg("dropped")
	l.Warn().Str("room", "123456").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "123456", line["room"])
	assert.Equal(t, "warn", line["level"])
}

func TestNewWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "loud", false)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewWithWriter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "debug", true)
	l.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
