package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ppe-monitor-go/internal/config"
)

func TestNewServiceUnreachable(t *testing.T) {
	cfg := &config.Config{
		NatsURL:            "nats://127.0.0.1:1",
		AlertsSubject:      "alerts.ppe",
		NatsConnectTimeout: 200 * time.Millisecond,
	}

	svc, err := NewService(cfg)

	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestNilConnectionIsDisconnected(t *testing.T) {
	svc := &Service{}
	assert.False(t, svc.IsConnected())
	assert.NoError(t, svc.Shutdown(context.Background()))
}
