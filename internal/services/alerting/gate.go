package alerting

import (
	"time"
)

const (
	DefaultCooldown       = 10 * time.Second
	DefaultBannerDuration = 3 * time.Second
)

// Gate decides per frame whether a missing-hardhat alert may fire.
//
// It is owned by the frame loop and is not safe for concurrent use.
type Gate struct {
	cooldown       time.Duration
	bannerDuration time.Duration

	lastAlert   time.Time
	bannerUntil time.Time
	alerted     bool
}

// NewGate returns a gate that is already eligible at start: the last alert is
// placed one second further back than the cooldown.
func NewGate(cooldown, bannerDuration time.Duration, start time.Time) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if bannerDuration <= 0 {
		bannerDuration = DefaultBannerDuration
	}
	return &Gate{
		cooldown:       cooldown,
		bannerDuration: bannerDuration,
		lastAlert:      start.Add(-(cooldown + time.Second)),
	}
}

// ShouldAlert reports whether a person without a hardhat should trigger a
// notification at now.
func (g *Gate) ShouldAlert(personPresent, hardhatPresent bool, now time.Time) bool {
	if !personPresent || hardhatPresent {
		return false
	}
	return g.CooldownElapsed(now)
}

// CooldownElapsed reports whether at least the cooldown has passed since the last alert.
func (g *Gate) CooldownElapsed(now time.Time) bool {
	return now.Sub(g.lastAlert) >= g.cooldown
}

// RecordAlert starts a new cooldown window at now. Timestamps earlier than the
// current last alert are ignored so the window never moves backwards.
func (g *Gate) RecordAlert(now time.Time) {
	if now.Before(g.lastAlert) {
		return
	}
	g.lastAlert = now
	g.bannerUntil = now.Add(g.bannerDuration)
	g.alerted = true
}

// BannerVisible reports whether the "Email Sent" banner should be drawn:
// true on [lastAlert, lastAlert+bannerDuration) once an alert has been recorded.
func (g *Gate) BannerVisible(now time.Time) bool {
	if !g.alerted {
		return false
	}
	return !now.Before(g.lastAlert) && now.Before(g.bannerUntil)
}

// LastAlert returns the time of the last recorded alert and whether one was recorded.
func (g *Gate) LastAlert() (time.Time, bool) {
	return g.lastAlert, g.alerted
}

// Cooldown returns the configured minimum interval between alerts.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}
