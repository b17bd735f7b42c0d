package detection

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/config"
	"ppe-monitor-go/internal/models"
)

const (
	BackendONNX = "onnx"
	BackendGRPC = "grpc"
)

// Detector finds PPE objects in a BGR frame. Boxes are in frame pixel coordinates.
type Detector interface {
	Detect(ctx context.Context, frame gocv.Mat) ([]models.Detection, error)
	Close() error
}

// New builds the detector selected by cfg.DetectorBackend.
func New(cfg *config.Config) (Detector, error) {
	switch cfg.DetectorBackend {
	case BackendONNX, "":
		return NewONNXDetector(cfg.ModelPath, cfg.ModelLabels, cfg.ConfidenceThreshold, cfg.NMSThreshold)
	case BackendGRPC:
		return NewService(cfg.DetectorGRPCURL, cfg.DetectorTimeout)
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
}
