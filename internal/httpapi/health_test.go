package httpapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerGetHealthReportsVersionAndUptime(t *testing.T) {
	handler := NewHealthHandler("1.2.3")

	output, err := handler.GetHealth(context.Background(), &HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, "healthy", output.Body.Status)
	assert.Equal(t, "1.2.3", output.Body.Version)
	assert.GreaterOrEqual(t, output.Body.UptimeSeconds, 0.0)
	assert.Greater(t, output.Body.CPUCores, 0)
}

func TestNewHealthHandlerDefaultsVersionWhenEmpty(t *testing.T) {
	handler := NewHealthHandler("")
	assert.Equal(t, "dev", handler.version)
}
