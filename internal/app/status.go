package app

import (
	"ppe-monitor-go/internal/models"
)

type Status = models.MonitorStatus

// Status returns a copy of the latest status.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.status
	s.State = a.state.String()
	s.User = a.user
	s.Detections = append([]models.Detection(nil), a.status.Detections...)
	if a.status.LastAlertAt != nil {
		t := *a.status.LastAlertAt
		s.LastAlertAt = &t
	}
	return s
}

// StateName is the lifecycle state as reported by the health endpoint.
func (a *App) StateName() string {
	return a.State().String()
}

func (a *App) updateStatus(fn func(s *Status)) {
	a.mu.Lock()
	fn(&a.status)
	a.mu.Unlock()
}
