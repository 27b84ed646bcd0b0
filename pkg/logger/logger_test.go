package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Service: "orders", Level: "info", Output: &buf})

	ctx := WithTraceIDContext(context.Background(), "abc-123")
	log.WithContext(ctx).Info("order created")
	log.WithContext(context.Background()).Debug("dropped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "abc-123", entry["trace_id"])
	assert.Equal(t, "order created", entry["message"])
	assert.Equal(t, "orders", log.Service())
}

func TestGetTraceID_Empty(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
