package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/config"
)

func TestInitDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown := Init(config.TracingConfig{Enabled: false}, "test")
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
