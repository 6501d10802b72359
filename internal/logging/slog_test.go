package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newForWriter(&buf, "production")

	log.With("component", "auth").Info(context.Background(), "user registered", "user_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, "auth", entry["component"])
	assert.EqualValues(t, 7, entry["user_id"])
}

func TestSlogLogger_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newForWriter(&buf, "production")

	log.Debug(context.Background(), "noisy")
	assert.Empty(t, buf.String())

	log.Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSlogLogger_DevelopmentWritesDebugText(t *testing.T) {
	var buf bytes.Buffer
	log := newForWriter(&buf, "development")

	log.Debug(context.Background(), "token rejected", "reason", "expired")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "reason=expired")
}

func TestSlogLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newForWriter(&buf, "development")

	ctx := context.WithValue(context.Background(), chiMiddleware.RequestIDKey, "req-123")
	log.Error(ctx, "lookup failed")

	assert.Contains(t, buf.String(), "request_id=req-123")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("k", "v").Info(context.Background(), "ignored")
	})
}
