package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolastakashi/stats-viewer/internal/config"
)

func TestKitLogger_ForwardsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, newKitLogger(logger).Log("component", "otlp", "msg", "started"))
	assert.Contains(t, buf.String(), "component=otlp")
}

func TestWithTracing_RequiresConfig(t *testing.T) {
	_, err := WithTracing(context.Background(), slog.Default(), &config.Config{})
	assert.Error(t, err)
}
