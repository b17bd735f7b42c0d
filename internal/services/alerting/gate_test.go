package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestFirstQualifyingFrameFiresImmediately(t *testing.T) {
	g := NewGate(DefaultCooldown, DefaultBannerDuration, t0)

	assert.True(t, g.ShouldAlert(true, false, t0))
	_, alerted := g.LastAlert()
	assert.False(t, alerted)
}

func TestTruthTable(t *testing.T) {
	tests := []struct {
		name    string
		person  bool
		hardhat bool
		elapsed time.Duration
		want    bool
	}{
		{"person without hardhat after cooldown", true, false, 10 * time.Second, true},
		{"person without hardhat well after cooldown", true, false, time.Minute, true},
		{"person without hardhat inside cooldown", true, false, 9999 * time.Millisecond, false},
		{"person with hardhat", true, true, time.Minute, false},
		{"hardhat only", false, true, time.Minute, false},
		{"empty frame", false, false, time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(DefaultCooldown, DefaultBannerDuration, t0)
			g.RecordAlert(t0)

			assert.Equal(t, tt.want, g.ShouldAlert(tt.person, tt.hardhat, t0.Add(tt.elapsed)))
		})
	}
}

func TestNoAlertBeforeCooldownForAnyFrameSequence(t *testing.T) {
	g := NewGate(DefaultCooldown, DefaultBannerDuration, t0)

	var fired []time.Time
	// One qualifying frame every 10ms for 35s.
	for now := t0; now.Before(t0.Add(35 * time.Second)); now = now.Add(10 * time.Millisecond) {
		if g.ShouldAlert(true, false, now) {
			g.RecordAlert(now)
			fired = append(fired, now)
		}
	}

	require.Len(t, fired, 4)
	assert.Equal(t, t0, fired[0])
	for i := 1; i < len(fired); i++ {
		assert.GreaterOrEqual(t, fired[i].Sub(fired[i-1]), DefaultCooldown)
	}
}

func TestRecordAlertNeverMovesBackwards(t *testing.T) {
	g := NewGate(DefaultCooldown, DefaultBannerDuration, t0)
	g.RecordAlert(t0.Add(20 * time.Second))
	g.RecordAlert(t0.Add(5 * time.Second))

	last, ok := g.LastAlert()
	require.True(t, ok)
	assert.Equal(t, t0.Add(20*time.Second), last)
	assert.False(t, g.ShouldAlert(true, false, t0.Add(29*time.Second)))
	assert.True(t, g.ShouldAlert(true, false, t0.Add(30*time.Second)))
}

func TestBannerWindow(t *testing.T) {
	g := NewGate(DefaultCooldown, DefaultBannerDuration, t0)
	assert.False(t, g.BannerVisible(t0), "no banner before the first alert")

	alertAt := t0.Add(time.Second)
	g.RecordAlert(alertAt)

	assert.False(t, g.BannerVisible(alertAt.Add(-time.Nanosecond)))
	assert.True(t, g.BannerVisible(alertAt))
	assert.True(t, g.BannerVisible(alertAt.Add(2999*time.Millisecond)))
	assert.False(t, g.BannerVisible(alertAt.Add(3*time.Second)))
	assert.False(t, g.BannerVisible(alertAt.Add(time.Minute)))
}

func TestNonPositiveDurationsUseDefaults(t *testing.T) {
	g := NewGate(0, -time.Second, t0)

	assert.Equal(t, DefaultCooldown, g.Cooldown())
	g.RecordAlert(t0)
	assert.True(t, g.BannerVisible(t0.Add(2*time.Second)))
	assert.False(t, g.BannerVisible(t0.Add(3*time.Second)))
}
