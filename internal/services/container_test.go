package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppe-monitor-go/internal/services/detection"
	"ppe-monitor-go/internal/services/messaging"
)

func TestHealthChecks(t *testing.T) {
	assert.Empty(t, (&ServiceContainer{}).HealthChecks())

	remote, err := detection.NewService("passthrough:///127.0.0.1:1", 100*time.Millisecond)
	require.NoError(t, err)
	defer remote.Close()

	sc := &ServiceContainer{Detector: remote, Events: &messaging.Service{}}
	checks := sc.HealthChecks()
	require.Len(t, checks, 2)

	assert.ErrorIs(t, checks["detector"](context.Background()), detection.ErrUnavailable)
	assert.EqualError(t, checks["events"](context.Background()), "nats disconnected")
}
