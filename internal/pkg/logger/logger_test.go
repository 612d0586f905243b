package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	Info().Msg("dropped")
	require.Zero(t, buf.Len())

	lg := Component("registration")
	lg.Warn().Str("eventID", "e1").Msg("capacity reached")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "registration", entry["component"])
	require.Equal(t, "e1", entry["eventID"])
	require.Equal(t, "warn", entry["level"])
}

func TestConfigureUnknownLevelDefaultsToInfo(t *testing.T) {
	Configure(Config{Level: "loud", Output: &bytes.Buffer{}})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings("DEBUG", "console")
	require.Equal(t, DebugLevel, cfg.Level)
	require.True(t, cfg.Pretty)

	require.False(t, ConfigFromSettings("info", "json").Pretty)
}
