package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" debug ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestNopLoggerIsQuiet(t *testing.T) {
	l := NewNopLogger()
	l.Warn("dropped %d rows", 3)
	l.With("component", "test").Info("ignored")
	assert.Equal(t, LogLevelError, l.GetLevel())
}
