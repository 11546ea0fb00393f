package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zoomio/formulary/internal/domain/interfaces"
)

func TestLogger(t *testing.T) {
	t.Run("New creates working logger", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(false),
		)

		log.Info().Msg("test message")

		output := buf.String()
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, `"level":"info"`)
	})

	t.Run("Logger respects log levels", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("warn"),
			WithConsoleWriter(false),
		)

		log.Info().Msg("info message")
		assert.Empty(t, buf.String(), "Info message should not be logged at warn level")

		log.Warn().Msg("warn message")
		assert.Contains(t, buf.String(), "warn message")
	})

	t.Run("Console writer uses level abbreviations", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(true),
		)

		log.Info().Msg("pretty message")
		output := buf.String()

		assert.Contains(t, output, "INF")
		assert.NotContains(t, output, `{"level":"info"`)
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("loud"),
			WithConsoleWriter(false),
		)

		log.Debug().Msg("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestDomainLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewDomainLogger(New(
		WithOutput(&buf),
		WithLevel("debug"),
		WithConsoleWriter(false),
	))

	log.Info("rendered formula",
		interfaces.F("formula", "tagify"),
		interfaces.F("version", "1.2.3"),
	)
	log.Error("fetch failed", interfaces.F("error", errors.New("boom")))

	output := buf.String()
	assert.Contains(t, output, `"formula":"tagify"`)
	assert.Contains(t, output, `"version":"1.2.3"`)
	assert.Contains(t, output, `"message":"rendered formula"`)
	assert.Contains(t, output, `"error":"boom"`)
}
