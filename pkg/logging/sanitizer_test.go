package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"url with credentials", "postgres://holocron:s3cret@db:5432/holocron?sslmode=disable",
			"postgres://[REDACTED]@db:5432/holocron?sslmode=disable"},
		{"keyword form", "host=db user=holocron password=s3cret dbname=holocron",
			"host=db user=holocron password=[REDACTED] dbname=holocron"},
		{"no credentials", "redis://cache:6379/0", "redis://cache:6379/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeConnectionString(tt.input))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))

	err := errors.New("failed to connect to `postgres://u:hunter2@db/x`: refused")
	assert.NotContains(t, SanitizeError(err), "hunter2")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "debug")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger("local", "loud")
	require.Error(t, err)
}
