package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterRedactsCredentialFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Format: "json", Level: "info"}, &buf)

	logger.Info("obs に接続しました", "password", "s3cr3t", "host", "localhost")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotEqual(t, "s3cr3t", record["password"])
	assert.Equal(t, "localhost", record["host"])
}

func TestNewWithWriterUsesTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Format: "text", Level: "info"}, &buf)

	logger.Info("セットアップを開始しました")

	assert.Contains(t, buf.String(), "msg=")
}

func TestNewWithWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Format: "json", Level: "warn"}, &buf)

	logger.Info("表示されないはず")
	assert.Empty(t, buf.String())

	logger.Warn("表示されるはず")
	assert.NotEmpty(t, buf.String())
}

func TestContextWithLoggerRoundTrips(t *testing.T) {
	logger := New(Config{Format: "json", Level: "info"})
	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
