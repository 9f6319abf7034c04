package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-skillsprint/telemetry"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown := telemetry.Setup(context.Background(), telemetry.Config{}, nil)
	assert.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	// the gRPC exporter connects lazily, no collector is needed
	shutdown := telemetry.Setup(context.Background(), telemetry.Config{
		Endpoint: "localhost:4317",
		Insecure: true,
	}, nil)
	assert.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
