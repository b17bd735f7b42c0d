package notification

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/metrics"
	"ppe-monitor-go/internal/models"
)

const alertReason = "person without hardhat"

// Notifier fans an alert out to mail, sound and the optional event bus.
// Any of the three channels may be nil.
type Notifier struct {
	mailer    Mailer
	beeper    Beeper
	publisher EventPublisher
	hostname  string
	logger    zerolog.Logger

	wg sync.WaitGroup
}

func NewNotifier(mailer Mailer, beeper Beeper, publisher EventPublisher) *Notifier {
	hostname, _ := os.Hostname()
	return &Notifier{
		mailer:    mailer,
		beeper:    beeper,
		publisher: publisher,
		hostname:  hostname,
		logger:    log.With().Str("service", "notification").Logger(),
	}
}

// NotifyAsync returns immediately. Each channel runs in its own goroutine
// with no delivery guarantee, no retry and no cancellation; failures and
// panics are logged and never reach the caller.
func (n *Notifier) NotifyAsync(imagePath string, counts models.FrameCounts) {
	if n.mailer != nil {
		n.spawn("email", func() {
			if err := n.mailer.SendAlert(context.Background(), imagePath); err != nil {
				metrics.Notifications.WithLabelValues("email", "failed").Inc()
				n.logger.Error().Err(err).Str("attachment", imagePath).Msg("Failed to send alert email")
				return
			}
			metrics.Notifications.WithLabelValues("email", "sent").Inc()
			n.logger.Info().Str("attachment", imagePath).Msg("Alert email sent")
		})
	}

	if n.beeper != nil {
		n.spawn("beep", func() {
			if err := n.beeper.Beep(); err != nil {
				metrics.Notifications.WithLabelValues("beep", "failed").Inc()
				n.logger.Warn().Err(err).Msg("Failed to play alert sound")
				return
			}
			metrics.Notifications.WithLabelValues("beep", "sent").Inc()
		})
	}

	if n.publisher != nil {
		event := models.AlertEvent{
			ID:           uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Reason:       alertReason,
			Counts:       counts,
			SnapshotPath: imagePath,
			Hostname:     n.hostname,
		}
		n.spawn("event", func() {
			if err := n.publisher.PublishAlert(event); err != nil {
				metrics.Notifications.WithLabelValues("event", "failed").Inc()
				n.logger.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish alert event")
				return
			}
			metrics.Notifications.WithLabelValues("event", "sent").Inc()
		})
	}
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) spawn(channel string, fn func()) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.Notifications.WithLabelValues(channel, "panic").Inc()
				n.logger.Error().Interface("panic", r).Str("channel", channel).Msg("Recovered from panic in notification")
			}
		}()
		fn()
	}()
}
