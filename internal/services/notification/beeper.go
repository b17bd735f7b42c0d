package notification

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/metrics"
)

const (
	DefaultBeepFrequency = 1000.0
	DefaultBeepDuration  = 3 * time.Second

	bellCount = 3
	bellPause = 500 * time.Millisecond
)

// Beeper produces the audible alert.
type Beeper interface {
	Beep() error
}

// SoundBeeper plays a platform tone and falls back to console bells.
type SoundBeeper struct {
	frequency float64
	duration  time.Duration

	// tone and bell are swapped in tests
	tone  func(freq float64, durationMs int) error
	bell  io.Writer
	pause time.Duration
}

func NewSoundBeeper(frequency float64, duration time.Duration) *SoundBeeper {
	if frequency <= 0 {
		frequency = DefaultBeepFrequency
	}
	if duration <= 0 {
		duration = DefaultBeepDuration
	}
	return &SoundBeeper{
		frequency: frequency,
		duration:  duration,
		tone:      beeep.Beep,
		bell:      os.Stdout,
		pause:     bellPause,
	}
}

// Beep blocks for the duration of the tone. A failing platform beep
// degrades to three bell characters and is not reported as an error.
func (b *SoundBeeper) Beep() error {
	err := b.tone(b.frequency, int(b.duration/time.Millisecond))
	if err == nil {
		return nil
	}

	log.Debug().Err(err).Msg("Platform beep unavailable, using console bell")
	metrics.BeepFallbacks.Inc()

	for i := 0; i < bellCount; i++ {
		if _, werr := fmt.Fprint(b.bell, "\a"); werr != nil {
			return fmt.Errorf("console bell: %w", werr)
		}
		if i < bellCount-1 {
			time.Sleep(b.pause)
		}
	}
	return nil
}
