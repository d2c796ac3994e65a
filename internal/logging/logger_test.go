package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-server/internal/config"
)

func TestNew_devUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelInfo}, "dev", "climate-server")

	logger.Info("hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "app=climate-server")
	assert.False(t, strings.HasPrefix(out, "{"), "dev logger should not emit JSON: %q", out)
}

func TestNew_releaseUsesJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "climate-server")

	logger.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "climate-server", rec["app"])
	assert.Equal(t, "1.2.3", rec["version"])
	assert.Equal(t, "prod", rec["env"])
}

func TestNew_respectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, "1.0.0", "climate-server")

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
