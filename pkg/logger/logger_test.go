package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry), "line %s", line)
		out = append(out, entry)
	}
	return out
}

func TestErrorCarriesContextAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	log.Error(ctx, "checkout failed", errors.New("out of stock"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0]["request_id"])
	assert.Equal(t, "out of stock", entries[0]["error"])
	assert.Equal(t, "error", entries[0]["level"])
	assert.NotEmpty(t, entries[0]["stack"])
}

func TestStaticAndScopedFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Output: buf, Fields: map[string]any{"env": "test", "instance": "web.1"}})

	ctx := log.WithOrderID(context.Background(), "order-1")
	ctx = log.WithSessionID(ctx, "cs_test_1")
	ctx = log.WithFields(ctx, map[string]any{"count": 2})
	log.Info(ctx, "checkout.session.created")
	log.Info(context.Background(), "unscoped")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "order-1", entries[0]["order_id"])
	assert.Equal(t, "cs_test_1", entries[0]["session_id"])
	assert.Equal(t, float64(2), entries[0]["count"])
	for _, e := range entries {
		assert.Equal(t, "api", e["service"])
		assert.Equal(t, "web.1", e["instance"])
	}
	assert.NotContains(t, entries[1], "order_id", "fields stay on the derived context")
}

func TestLevelFiltersAndWarnStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.WarnLevel, Output: buf, WarnStack: true})

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "rate_limit.blocked")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "rate_limit.blocked", entries[0]["message"])
	assert.NotEmpty(t, entries[0]["stack"])
}

func TestConsoleFormatIsNotJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Format: FormatConsole, Output: buf})
	log.Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}
