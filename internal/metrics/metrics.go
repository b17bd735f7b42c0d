package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesProcessed counts frames that went through detection and annotation
	FramesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ppe",
		Name:      "frames_processed_total",
		Help:      "Total number of frames processed by the monitor loop",
	})

	// FrameReadFailures counts ticks skipped because the camera returned no frame
	FrameReadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ppe",
		Name:      "frame_read_failures_total",
		Help:      "Total number of failed camera reads",
	})

	DetectionErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ppe",
		Name:      "detection_errors_total",
		Help:      "Total number of frames the detector failed on",
	})

	// Detections counts detections by label
	Detections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ppe",
			Name:      "detections_total",
			Help:      "Total number of detections by label",
		},
		[]string{"label"},
	)

	AlertsFired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ppe",
		Name:      "alerts_fired_total",
		Help:      "Total number of missing hardhat alerts",
	})

	// Notifications counts notification attempts by channel and result
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ppe",
			Name:      "notifications_total",
			Help:      "Total number of notification attempts",
		},
		[]string{"channel", "result"},
	)

	BeepFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ppe",
		Name:      "beep_fallbacks_total",
		Help:      "Total number of times the console bell replaced the platform beep",
	})

	// FrameProcessingSeconds is the duration of the most recent tick
	FrameProcessingSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ppe",
		Name:      "frame_processing_seconds",
		Help:      "Processing time of the last frame in seconds",
	})

	once sync.Once
)

// Init registers all metrics with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(FramesProcessed)
		prometheus.DefaultRegisterer.Register(FrameReadFailures)
		prometheus.DefaultRegisterer.Register(DetectionErrors)
		prometheus.DefaultRegisterer.Register(Detections)
		prometheus.DefaultRegisterer.Register(AlertsFired)
		prometheus.DefaultRegisterer.Register(Notifications)
		prometheus.DefaultRegisterer.Register(BeepFallbacks)
		prometheus.DefaultRegisterer.Register(FrameProcessingSeconds)
	})
}
