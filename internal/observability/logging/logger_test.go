package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	assert.NotNil(t, logger)
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := NewLogger()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger()
	assert.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithJobID(t *testing.T) {
	base := NewLogger()

	tagged := WithJobID(base, "job-42")
	assert.NotSame(t, base, tagged)

	// An empty job id returns the logger unchanged.
	assert.Same(t, base, WithJobID(base, ""))
}

func TestWithFields(t *testing.T) {
	base := NewLogger()
	logger := WithFields(base, map[string]interface{}{"engine": "rss", "results": 3})
	assert.NotNil(t, logger)
}

func TestContextRoundTrip(t *testing.T) {
	base := NewLogger()
	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	// Without a stored logger the default is returned.
	assert.NotNil(t, FromContext(context.Background()))
}
