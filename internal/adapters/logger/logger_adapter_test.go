package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/jsamit27/ava/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"component": "test"}).Error("Tool failed", errors.New("boom"), port.Fields{"tool": "car_add"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Tool failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "car_add", entry["tool"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSlogAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Info("hidden", nil)
	logger.Debug("hidden", nil)
	assert.Empty(t, buf.String())

	logger.Warn("shown", port.Fields{"b": 2, "a": 1})
	out := buf.String()
	assert.Contains(t, out, "shown")
	assert.Less(t, strings.Index(out, "a=1"), strings.Index(out, "b=2"))
}

type fakePoster struct {
	mu    sync.Mutex
	posts []map[string]interface{}
	tags  []string
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	f.posts = append(f.posts, message.(port.Fields))
	return nil
}

func (f *fakePoster) Close() error { return nil }

func TestFluentAdapter_FiltersAndMerges(t *testing.T) {
	poster := &fakePoster{}
	logger := newFluentLoggerAdapter(poster, slog.LevelInfo).WithFields(port.Fields{"service_name": "ava"})

	logger.Debug("dropped", nil)
	logger.Info("kept", port.Fields{"session_id": "s1"})
	logger.Error("failed", errors.New("bad"), nil)

	require.Len(t, poster.posts, 2)
	assert.Equal(t, []string{"info", "error"}, poster.tags)
	assert.Equal(t, "ava", poster.posts[0]["service_name"])
	assert.Equal(t, "s1", poster.posts[0]["session_id"])
	assert.Equal(t, "kept", poster.posts[0]["message"])
	assert.Equal(t, "bad", poster.posts[1]["error"])
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	require.Error(t, err)

	var a, b bytes.Buffer
	multi, err := NewMultiloggerAdapter(
		NewSlogAdapter(SlogConfig{Writer: &a}),
		nil,
		NewSlogAdapter(SlogConfig{Writer: &b}),
	)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"trace_id": "t-1"}).Info("fan out", nil)
	assert.Contains(t, a.String(), "trace_id=t-1")
	assert.Contains(t, b.String(), "fan out")
}
