package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("prod defaults to info and json", func(t *testing.T) {
		var buf bytes.Buffer
		log := setup(&buf, "prod", "")

		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

		log.Info().Str("id", "42").Msg("student created")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "student created", line["message"])
		assert.Equal(t, "42", line["id"])
		assert.Equal(t, "students-api", line["service"])
	})

	t.Run("dev defaults to debug", func(t *testing.T) {
		var buf bytes.Buffer
		_ = setup(&buf, "dev", "")

		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("explicit level wins", func(t *testing.T) {
		var buf bytes.Buffer
		_ = setup(&buf, "dev", "WARN")

		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("invalid level falls back", func(t *testing.T) {
		var buf bytes.Buffer
		_ = setup(&buf, "staging", "loud")

		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})
}
