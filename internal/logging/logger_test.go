package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	defer Setup("info", "json")

	t.Run("should apply a known level and the text formatter", func(t *testing.T) {
		Setup("debug", "text")

		assert.Equal(t, log.DebugLevel, log.GetLevel())
		assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
	})

	t.Run("should fall back to info and JSON", func(t *testing.T) {
		Setup("loud", "")

		assert.Equal(t, log.InfoLevel, log.GetLevel())
		assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
	})
}
