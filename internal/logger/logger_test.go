package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewJSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "production", "warn")

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Str("tender_id", "42").Msg("visible")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "visible", entry["message"])
	require.Equal(t, "42", entry["tender_id"])
	require.Equal(t, "warn", entry["level"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "development", "loud")

	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	log.Info().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}
