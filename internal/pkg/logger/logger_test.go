package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Equal(t, "unknown", RequestID(context.Background()))
}

func TestWithRequestIDTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &base)

	ctx = WithRequestID(ctx, "abc")
	FromContext(ctx).Info().Msg("hello")

	require.Contains(t, buf.String(), `"request_id":"abc"`)
	require.Contains(t, buf.String(), `"message":"hello"`)
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init(Config{Level: "nonsense", Environment: "test"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init(Config{Level: LogLevelDebug, Environment: "test"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
