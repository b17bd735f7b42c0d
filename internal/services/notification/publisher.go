package notification

import "ppe-monitor-go/internal/models"

// EventPublisher forwards alert events to an external bus.
type EventPublisher interface {
	PublishAlert(event models.AlertEvent) error
}
