package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/config"
	"ppe-monitor-go/internal/models"
)

// Service publishes alert events to NATS.
type Service struct {
	conn    *nats.Conn
	subject string
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("ppe-monitor"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.NatsURL, err)
	}

	log.Info().Str("url", cfg.NatsURL).Str("subject", cfg.AlertsSubject).Msg("NATS connection established")

	return &Service{
		conn:    conn,
		subject: cfg.AlertsSubject,
	}, nil
}

func (s *Service) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.conn.Publish(subject, payload)
}

// PublishAlert sends event as JSON on the configured alerts subject.
func (s *Service) PublishAlert(event models.AlertEvent) error {
	return s.Publish(s.subject, event)
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain, fall back to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}
