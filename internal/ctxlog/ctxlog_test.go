package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	require.Same(t, logger, FromContext(ctx))

	FromContext(With(ctx, "component", "test")).Info("hello")
	require.Contains(t, buf.String(), "component=test")
}

func TestFromContext_MissingLoggerPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { FromContext(context.Background()) })
}
