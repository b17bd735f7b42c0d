package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/models"
)

const inputSize = 640

// ONNXDetector runs a YOLOv8 export through the OpenCV DNN module.
type ONNXDetector struct {
	net        gocv.Net
	labels     []string
	confidence float32
	nms        float32
}

func NewONNXDetector(modelPath string, labels []string, confidence, nms float32) (*ONNXDetector, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}

	log.Info().
		Str("model", modelPath).
		Int("classes", len(labels)).
		Float32("confidence_threshold", confidence).
		Msg("Loaded ONNX detection model")

	return &ONNXDetector{
		net:        net,
		labels:     labels,
		confidence: confidence,
		nms:        nms,
	}, nil
}

func (d *ONNXDetector) Detect(ctx context.Context, frame gocv.Mat) ([]models.Detection, error) {
	if frame.Empty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	scaleX := float32(frame.Cols()) / inputSize
	scaleY := float32(frame.Rows()) / inputSize
	candidates, err := decodeYOLOv8(data, dims[1], dims[2], d.labels, d.confidence, scaleX, scaleY)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		rects[i] = c.Box.Rect()
		scores[i] = c.Confidence
	}

	keep := gocv.NMSBoxes(rects, scores, d.confidence, d.nms)
	detections := make([]models.Detection, 0, len(keep))
	for _, idx := range keep {
		det := candidates[idx]
		det.Box = det.Box.Clamp(frame.Cols(), frame.Rows())
		detections = append(detections, det)
	}
	return detections, nil
}

func (d *ONNXDetector) Close() error {
	return d.net.Close()
}

// decodeYOLOv8 turns a [1, 4+C, N] output tensor into candidate detections
// above the confidence threshold. Each column holds cx, cy, w, h followed by
// C class scores; coordinates are in model input pixels.
func decodeYOLOv8(data []float32, rows, anchors int, labels []string, threshold, scaleX, scaleY float32) ([]models.Detection, error) {
	classes := rows - 4
	if classes <= 0 {
		return nil, fmt.Errorf("model output has %d rows, need at least 5", rows)
	}
	if len(data) < rows*anchors {
		return nil, fmt.Errorf("model output has %d values, want %d", len(data), rows*anchors)
	}

	var out []models.Detection
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < classes; c++ {
			if s := data[(4+c)*anchors+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < threshold {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		out = append(out, models.Detection{
			Label:      labelFor(labels, best),
			Confidence: bestScore,
			Box: models.Box{
				X1: int((cx - w/2) * scaleX),
				Y1: int((cy - h/2) * scaleY),
				X2: int((cx + w/2) * scaleX),
				Y2: int((cy + h/2) * scaleY),
			},
		})
	}
	return out, nil
}

func labelFor(labels []string, class int) string {
	if class < len(labels) {
		return labels[class]
	}
	return fmt.Sprintf("class_%d", class)
}
