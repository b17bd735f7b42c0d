package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/config"
	"ppe-monitor-go/internal/logging"
	"ppe-monitor-go/internal/metrics"
	"ppe-monitor-go/internal/models"
	"ppe-monitor-go/internal/services/alerting"
	"ppe-monitor-go/internal/services/annotation"
)

// FrameSource yields camera frames. Read returns false when no frame is ready.
type FrameSource interface {
	Read(dst *gocv.Mat) bool
	FrameCount() int64
	FPS() float64
	Close() error
}

type Detector interface {
	Detect(ctx context.Context, frame gocv.Mat) ([]models.Detection, error)
}

type Notifier interface {
	NotifyAsync(imagePath string, counts models.FrameCounts)
}

// Authenticator validates a login attempt, returning ErrEmptyFields or
// ErrInvalidCredentials on failure.
type Authenticator interface {
	Check(username, password string) error
}

// Renderer shows a finished frame. Render returns false when the viewer
// asked to quit.
type Renderer interface {
	Render(frame gocv.Mat) bool
	Close() error
}

// FramePublisher receives every finished frame for the web console stream.
type FramePublisher interface {
	PublishFrame(frame gocv.Mat) error
}

// Deps are the collaborators of an App. Renderer and Publisher are optional.
type Deps struct {
	Source    FrameSource
	Detector  Detector
	Notifier  Notifier
	Auth      Authenticator
	Renderer  Renderer
	Publisher FramePublisher
}

// App owns the camera, the alert gate and the working frame. Tick and Run
// must be called from a single goroutine; Login, RequestClose and Status
// are safe from any goroutine.
type App struct {
	cfg    *config.Config
	deps   Deps
	gate   *alerting.Gate
	frame  gocv.Mat
	logger zerolog.Logger

	// writeSnapshot is replaced in tests
	writeSnapshot func(path string, img gocv.Mat) bool

	mu     sync.RWMutex
	state  State
	user   string
	status Status

	closeRequested chan struct{}
	requestOnce    sync.Once
	closeOnce      sync.Once
	closeErr       error
}

func New(cfg *config.Config, deps Deps) *App {
	return &App{
		cfg:            cfg,
		deps:           deps,
		gate:           alerting.NewGate(cfg.AlertCooldown, cfg.AlertBannerDuration, time.Now()),
		frame:          gocv.NewMat(),
		logger:         logging.NewServiceLogger(cfg, "app"),
		writeSnapshot:  gocv.IMWrite,
		state:          StateLoggedOut,
		closeRequested: make(chan struct{}),
	}
}

// Login moves LoggedOut to Running when the credentials match. Failed
// attempts leave the state unchanged and may be retried indefinitely.
func (a *App) Login(username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateClosed:
		return ErrClosed
	case StateRunning:
		return nil
	}

	if err := a.deps.Auth.Check(username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.logger.Warn().Str("username", username).Msg("Login failed")
		}
		return err
	}

	a.state = StateRunning
	a.user = username
	a.logger.Info().Str("username", username).Msg("Login successful, monitoring started")
	return nil
}

func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// RequestClose asks the loop to shut down at its next iteration.
func (a *App) RequestClose() {
	a.requestOnce.Do(func() {
		a.logger.Info().Msg("Close requested")
		close(a.closeRequested)
	})
}

// Done is closed once a close has been requested.
func (a *App) Done() <-chan struct{} {
	return a.closeRequested
}

// Close moves to Closed and releases the camera, the window and the working
// frame. Further calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.RequestClose()

		a.mu.Lock()
		a.state = StateClosed
		a.status.State = StateClosed.String()
		a.mu.Unlock()

		if a.deps.Source != nil {
			a.closeErr = a.deps.Source.Close()
		}
		if a.deps.Renderer != nil {
			if err := a.deps.Renderer.Close(); err != nil && a.closeErr == nil {
				a.closeErr = err
			}
		}
		a.frame.Close()

		a.logger.Info().Msg("Application closed")
	})
	return a.closeErr
}

// Run drives Tick every cfg.TickInterval until the application closes or
// ctx is cancelled. While logged out, ticks are skipped.
func (a *App) Run(ctx context.Context) error {
	interval := a.cfg.TickInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return a.Close()
		case <-a.closeRequested:
			return a.Close()
		case now := <-ticker.C:
			if err := a.Tick(ctx, now); errors.Is(err, ErrClosed) {
				return a.Close()
			}
		}
	}
}

// Tick processes one frame: read, detect, annotate, alert, render.
// A failed camera read skips the tick.
func (a *App) Tick(ctx context.Context, now time.Time) error {
	switch a.State() {
	case StateClosed:
		return ErrClosed
	case StateLoggedOut:
		return ErrNotRunning
	}

	select {
	case <-a.closeRequested:
		a.Close()
		return ErrClosed
	default:
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("Process frame panic recovered")
		}
	}()

	start := time.Now()

	if !a.deps.Source.Read(&a.frame) {
		metrics.FrameReadFailures.Inc()
		a.updateStatus(func(s *Status) { s.FrameReadFailures++ })
		return nil
	}

	detections, err := a.deps.Detector.Detect(ctx, a.frame)
	if err != nil {
		metrics.DetectionErrors.Inc()
		a.logger.Debug().Err(err).Msg("Detection failed, rendering raw frame")
		detections = nil
	}
	for _, det := range detections {
		metrics.Detections.WithLabelValues(det.Label).Inc()
	}

	counts := annotation.Annotate(&a.frame, detections)

	alerted := false
	if a.gate.ShouldAlert(counts.PersonPresent(), counts.HardhatPresent(), now) {
		a.raiseAlert(counts, now)
		alerted = true
	}
	lastAlert, hasAlert := a.gate.LastAlert()
	cameraFrames, cameraFPS := a.deps.Source.FrameCount(), a.deps.Source.FPS()

	annotation.DrawSummary(&a.frame, counts)
	banner := a.gate.BannerVisible(now)
	if banner {
		annotation.DrawBanner(&a.frame)
	}

	if a.deps.Publisher != nil {
		if err := a.deps.Publisher.PublishFrame(a.frame); err != nil {
			a.logger.Debug().Err(err).Msg("Failed to publish frame to console stream")
		}
	}

	metrics.FramesProcessed.Inc()
	elapsed := time.Since(start)
	metrics.FrameProcessingSeconds.Set(elapsed.Seconds())

	a.updateStatus(func(s *Status) {
		s.FramesProcessed++
		s.Counts = counts
		s.Detections = detections
		s.BannerVisible = banner
		s.LastFrameAt = now
		s.ProcessingTime = elapsed
		s.CameraFrames = cameraFrames
		s.CameraFPS = cameraFPS
		if alerted {
			s.AlertsFired++
		}
		if hasAlert {
			s.LastAlertAt = &lastAlert
		}
	})

	if a.deps.Renderer != nil && !a.deps.Renderer.Render(a.frame) {
		a.RequestClose()
	}
	return nil
}

// raiseAlert saves the annotated frame, dispatches notifications without
// waiting for them and restarts the cooldown.
func (a *App) raiseAlert(counts models.FrameCounts, now time.Time) {
	path := a.cfg.SnapshotPath
	if !a.writeSnapshot(path, a.frame) {
		a.logger.Error().Str("path", path).Msg("Failed to write alert snapshot")
	}

	a.logger.Warn().
		Int("people", counts.People).
		Int("hardhats", counts.Hardhats).
		Str("snapshot", path).
		Dur("cooldown", a.gate.Cooldown()).
		Msg("Person without hardhat detected, sending alert")

	a.deps.Notifier.NotifyAsync(path, counts)
	a.gate.RecordAlert(now)
	metrics.AlertsFired.Inc()
}
