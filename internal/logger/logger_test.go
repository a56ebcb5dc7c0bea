package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetTimestamps(false)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("test message")
	Section("Poll")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Poll")

	assert.Equal(t, "\n=== Poll ===\n", buf.String())
}

func TestLevels_AlwaysWritten(t *testing.T) {
	defer reset()

	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"info", Info, "[INFO] connector act loaded\n"},
		{"warn", Warn, "[WARN] connector act loaded\n"},
		{"error", Error, "[ERROR] connector act loaded\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetOutput(&buf)

			tt.log("connector %s loaded", "act")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTimestamps(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetTimestamps(true)
	now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	Info("listening on %s", ":8080")

	assert.Equal(t, "2024-03-01T12:00:00Z [INFO] listening on :8080\n", buf.String())
}
