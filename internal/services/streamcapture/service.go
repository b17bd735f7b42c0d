package streamcapture

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/config"
)

const fpsWindowSize = 30

// Source yields frames from a local webcam.
type Source struct {
	index int
	cap   *gocv.VideoCapture

	mu                sync.Mutex
	closed            bool
	closeOnce         sync.Once
	consecutiveErrors int
	frameCount        int64
	recentFrameTimes  []time.Time
}

// Open opens the configured camera device and applies the requested frame size.
func Open(cfg *config.Config) (*Source, error) {
	log.Info().Int("camera_index", cfg.CameraIndex).Msg("Opening camera")

	cap, err := gocv.OpenVideoCapture(cfg.CameraIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", cfg.CameraIndex, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("video capture is not opened for camera %d", cfg.CameraIndex)
	}

	if cfg.FrameWidth > 0 && cfg.FrameHeight > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.FrameWidth))
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.FrameHeight))
	}
	cap.Set(gocv.VideoCaptureBufferSize, 1)

	log.Info().
		Int("camera_index", cfg.CameraIndex).
		Float64("actual_width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("actual_height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Float64("actual_fps", cap.Get(gocv.VideoCaptureFPS)).
		Msg("VideoCapture opened successfully with actual properties")

	return &Source{index: cfg.CameraIndex, cap: cap}, nil
}

// Read fills dst with the next frame. It returns false when no frame is
// available; callers skip the tick and try again.
func (s *Source) Read(dst *gocv.Mat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	if ok := s.cap.Read(dst); !ok || dst.Empty() {
		s.consecutiveErrors++
		if s.consecutiveErrors == 1 || s.consecutiveErrors%100 == 0 {
			log.Warn().
				Int("camera_index", s.index).
				Int("consecutive_errors", s.consecutiveErrors).
				Msg("Failed to read frame from VideoCapture")
		}
		return false
	}

	s.consecutiveErrors = 0
	s.frameCount++
	s.recentFrameTimes = append(s.recentFrameTimes, time.Now())
	if len(s.recentFrameTimes) > fpsWindowSize {
		s.recentFrameTimes = s.recentFrameTimes[1:]
	}
	return true
}

// FrameCount returns the number of frames read successfully.
func (s *Source) FrameCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

// FPS is the read rate over the last fpsWindowSize frames.
func (s *Source) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rollingFPS(s.recentFrameTimes)
}

// Close releases the device. Only the first call has any effect.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		err = s.cap.Close()
		log.Info().Int("camera_index", s.index).Msg("Camera released")
	})
	return err
}

func rollingFPS(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	span := times[len(times)-1].Sub(times[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(times)-1) / span
}
