package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Production logs are JSON documents with timestamp, level and message
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	cfg := Config("production")
	properties := gopter.NewProperties(nil)

	properties.Property("production entries are structured JSON", prop.ForAll(
		func(message string, itemID string) bool {
			var buf bytes.Buffer
			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(cfg.EncoderConfig),
				zapcore.AddSync(&buf),
				cfg.Level,
			)
			log := zap.New(core)

			log.Info(message, zap.String("item_id", itemID))
			log.Sync()

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			return entry["message"] == message &&
				entry["item_id"] == itemID &&
				entry["level"] == "info" &&
				entry["timestamp"] != nil
		},
		gen.AnyString(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestConfigByEnvironment(t *testing.T) {
	prod := Config("production")
	assert.Equal(t, "json", prod.Encoding)
	assert.False(t, prod.Level.Enabled(zapcore.DebugLevel))
	assert.Equal(t, []string{"stdout"}, prod.OutputPaths)

	dev := Config("development")
	assert.Equal(t, "console", dev.Encoding)
	assert.True(t, dev.Level.Enabled(zapcore.DebugLevel))
	assert.Equal(t, []string{"stderr"}, dev.ErrorOutputPaths)
}

func TestNew(t *testing.T) {
	log, err := New("production", "items-api")
	require.NoError(t, err)
	defer log.Sync()

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
