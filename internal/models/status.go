package models

import "time"

// MonitorStatus is a point-in-time view of the monitor for the web console.
type MonitorStatus struct {
	State             string        `json:"state" example:"running"`
	User              string        `json:"user,omitempty" example:"admin"`
	Counts            FrameCounts   `json:"counts"`
	Detections        []Detection   `json:"detections"`
	BannerVisible     bool          `json:"banner_visible"`
	AlertsFired       int64         `json:"alerts_fired"`
	LastAlertAt       *time.Time    `json:"last_alert_at,omitempty"`
	FramesProcessed   int64         `json:"frames_processed"`
	FrameReadFailures int64         `json:"frame_read_failures"`
	LastFrameAt       time.Time     `json:"last_frame_at"`
	ProcessingTime    time.Duration `json:"processing_time_ns" swaggertype:"integer"`
	CameraFrames      int64         `json:"camera_frames"`
	CameraFPS         float64       `json:"camera_fps"`
}
