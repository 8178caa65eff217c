package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // swaps the process-wide default logger
func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Setup(&buf, "json", slog.LevelInfo)
		logger.Debug("hidden")
		slog.Info("cash changed", "delta", 300)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "cash changed", line["msg"])
		require.InDelta(t, 300, line["delta"], 0)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		Setup(&buf, "TEXT", slog.LevelDebug)
		slog.Debug("session created", "name", "Gunther")

		out := buf.String()
		require.True(t, strings.Contains(out, "msg=\"session created\""), out)
		require.True(t, strings.Contains(out, "name=Gunther"), out)
	})
}
