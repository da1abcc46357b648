package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

func TestSetLogLevel(t *testing.T) {
	SetLogLevel("error")
	assert.Equal(t, zerolog.ErrorLevel, GetLogger().GetLevel())

	SetLogLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestToLoggingConfig(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		lc := LoggingConfig{Level: "debug", Format: "json", File: "/tmp/x.log"}
		got := lc.ToLoggingConfig()
		assert.Equal(t, logging.Config{Level: "debug", Format: "json", Output: "file", File: "/tmp/x.log"}, got)
	})

	t.Run("stderr output", func(t *testing.T) {
		lc := LoggingConfig{Level: "info", Format: "console"}
		got := lc.ToLoggingConfig()
		assert.Equal(t, logging.OutputStderr, got.Output)
	})
}
