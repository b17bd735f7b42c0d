package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/config"
	"ppe-monitor-go/internal/services/credentials"
	"ppe-monitor-go/internal/services/detection"
	"ppe-monitor-go/internal/services/messaging"
	"ppe-monitor-go/internal/services/notification"
	"ppe-monitor-go/internal/services/publisher/mjpeg"
	"ppe-monitor-go/internal/services/streamcapture"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config      *config.Config
	Credentials *credentials.Store
	Detector    detection.Detector
	Source      *streamcapture.Source
	Notifier    *notification.Notifier
	Events      *messaging.Service // nil when NATS_URL is unset or unreachable
	Stream      *mjpeg.Publisher   // nil when the web console is disabled
}

// NewServiceContainer creates a new service container. The camera is opened
// last so a failing detector never holds the device.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	store := credentials.NewStore(cfg.CredentialsFile)
	if _, err := store.EnsureFile(); err != nil {
		log.Warn().Err(err).Msg("Could not create credential file, using in-memory defaults")
	}
	if store.Authenticate(credentials.DefaultUsername, credentials.DefaultPassword) {
		log.Warn().Str("path", store.Path()).Msg("Default admin password in use, change it with 'ppe-monitor users set admin'")
	}

	detector, err := detection.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize detector: %w", err)
	}

	sc := &ServiceContainer{
		Config:      cfg,
		Credentials: store,
		Detector:    detector,
	}

	var mailer notification.Mailer
	if cfg.MailConfigured() {
		mailer = notification.NewSMTPMailer(cfg)
	} else {
		log.Warn().Msg("SENDER_EMAIL, EMAIL_PASSWORD or RECEIVER_EMAIL not set, alert emails disabled")
	}

	var publisher notification.EventPublisher
	if cfg.NatsURL != "" {
		events, err := messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Alert events disabled")
		} else {
			sc.Events = events
			publisher = events
		}
	}

	sc.Notifier = notification.NewNotifier(mailer, notification.NewSoundBeeper(cfg.BeepFrequency, cfg.BeepDuration), publisher)

	if cfg.ConsoleEnabled {
		sc.Stream = mjpeg.NewPublisher()
	}

	source, err := streamcapture.Open(cfg)
	if err != nil {
		sc.Shutdown(context.Background())
		return nil, err
	}
	sc.Source = source

	return sc, nil
}

// HealthChecks returns probes for the dependencies that can fail at runtime:
// the remote detector and the NATS connection. The local ONNX detector has
// no probe.
func (sc *ServiceContainer) HealthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)

	if remote, ok := sc.Detector.(*detection.Service); ok {
		checks["detector"] = func(ctx context.Context) error {
			// Reconnects stay with the frame loop.
			if !remote.IsHealthy() {
				return detection.ErrUnavailable
			}
			return remote.HealthCheck(ctx)
		}
	}

	if sc.Events != nil {
		checks["events"] = func(ctx context.Context) error {
			if !sc.Events.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	return checks
}

// Shutdown waits for in-flight notifications and releases the detector and
// the event connection. The camera belongs to the application loop.
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.Notifier != nil {
		if err := sc.Notifier.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("Exiting with notifications still in flight")
		}
	}

	if sc.Events != nil {
		sc.Events.Shutdown(ctx)
	}

	if sc.Detector != nil {
		if err := sc.Detector.Close(); err != nil {
			return err
		}
	}

	return nil
}
