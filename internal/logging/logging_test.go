package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "dropped")
	log.Warn(context.Background(), "kept", Int("tick", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, float64(3), rec["tick"])
}

func TestWithRunIDTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	log, id := WithRunID(New(Config{Format: "text", Output: &buf}))
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	log.Info(context.Background(), "first")
	log.Error(context.Background(), "second", String("k", "v"))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "run_id="+id))
	assert.Contains(t, out, "k=v")
}

func TestNoopDiscards(t *testing.T) {
	log, id := WithRunID(nil)
	assert.NotEmpty(t, id)
	log.Debug(context.Background(), "nothing")
	assert.IsType(t, noopLogger{}, log)
}
