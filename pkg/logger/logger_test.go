package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger(t *testing.T) {
	mock := NewMockLogger()

	mock.Info("Test message", "key", "value")
	mock.Debug("Debug message")
	mock.Warn("Warning message")
	mock.Error("Error message", "error", "test error")

	require.Len(t, *mock.Messages, 4)

	assert.True(t, mock.HasMessage("INFO", "Test message"))
	assert.True(t, mock.HasMessageContaining("ERROR", "Error"))
	assert.False(t, mock.HasMessage("WARN", "nope"))
}

func TestMockLoggerWith(t *testing.T) {
	mock := NewMockLogger()

	child := mock.With("user", "test-user")
	child.Info("Context message")

	require.Len(t, *mock.Messages, 1)
	last := (*mock.Messages)[0]
	assert.Equal(t, "Context message", last.Msg)

	found := false
	for i := 0; i+1 < len(last.Args); i += 2 {
		if last.Args[i] == "user" && last.Args[i+1] == "test-user" {
			found = true
			break
		}
	}
	assert.True(t, found, "expected user attribute in args: %v", last.Args)

	mock.Clear()
	assert.Empty(t, *mock.Messages)
}

func TestLoggerInterface(_ *testing.T) {
	var _ Logger = &SlogLogger{}
	var _ Logger = &MockLogger{}

	testLogger := func(l Logger) {
		l.Info("test")
		l.Debug("debug")
		l.Warn("warn")
		l.Error("error")
		l.With("key", "value").Info("with context")
	}

	testLogger(NewMockLogger())
	testLogger(NewLogger(false, "text"))
	testLogger(NewLogger(true, "json"))
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	mock := NewMockLogger()
	SetGlobalLogger(mock)

	Info("global info")
	Debug("global debug")
	Warn("global warn")
	Error("global error")

	assert.True(t, mock.HasMessage("INFO", "global info"))
	assert.True(t, mock.HasMessage("DEBUG", "global debug"))
	assert.True(t, mock.HasMessage("WARN", "global warn"))
	assert.True(t, mock.HasMessage("ERROR", "global error"))
}
