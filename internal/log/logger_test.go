package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, nil), "worker")

	l.Info("consuming events", "queue", "budget_alerts")

	out := buf.String()
	assert.Contains(t, out, "component=worker")
	assert.Contains(t, out, "consuming events")
	assert.Contains(t, out, "queue=budget_alerts")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, nil), "app")

	l.Warn("disk almost full")
	l.Error("insert failed", "error", "boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=WARN")
	assert.Contains(t, lines[1], "level=ERROR")
	for _, line := range lines {
		assert.Contains(t, line, "component=app")
	}
}
