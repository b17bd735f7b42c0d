package models

import (
	"fmt"
	"image"
	"time"
)

// Class labels produced by the PPE model.
const (
	LabelHardhat      = "Hardhat"
	LabelMask         = "Mask"
	LabelNoHardhat    = "NO-Hardhat"
	LabelNoMask       = "NO-Mask"
	LabelNoSafetyVest = "NO-Safety Vest"
	LabelPerson       = "Person"
	LabelSafetyCone   = "Safety Cone"
	LabelSafetyVest   = "Safety Vest"
	LabelMachinery    = "Machinery"
	LabelVehicle      = "Vehicle"
)

// Box is a bounding box in pixel coordinates.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Clamp limits the box to a width x height frame.
func (b Box) Clamp(width, height int) Box {
	return Box{
		X1: clampInt(b.X1, 0, width-1),
		Y1: clampInt(b.Y1, 0, height-1),
		X2: clampInt(b.X2, 0, width-1),
		Y2: clampInt(b.Y2, 0, height-1),
	}
}

// Detection is one model output for a single frame.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Caption is the text drawn above the detection box.
func (d Detection) Caption() string {
	return fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence)
}

// FrameCounts tallies the labels that feed the alert decision and the on-screen summary.
type FrameCounts struct {
	Hardhats int `json:"hardhats"`
	Vests    int `json:"vests"`
	People   int `json:"people"`
}

// PersonPresent reports whether at least one person was detected.
func (c FrameCounts) PersonPresent() bool { return c.People > 0 }

// HardhatPresent reports whether at least one hardhat was detected.
func (c FrameCounts) HardhatPresent() bool { return c.Hardhats > 0 }

// Add counts a single detection label. Labels other than Hardhat, Person and
// Safety Vest are ignored.
func (c *FrameCounts) Add(label string) {
	switch label {
	case LabelHardhat:
		c.Hardhats++
	case LabelPerson:
		c.People++
	case LabelSafetyVest:
		c.Vests++
	}
}

// SummaryLines returns the per-frame overlay text.
func (c FrameCounts) SummaryLines() []string {
	return []string{
		fmt.Sprintf("Hardhats: %d", c.Hardhats),
		fmt.Sprintf("Vests: %d", c.Vests),
		fmt.Sprintf("People: %d", c.People),
	}
}

// Tally counts the detections of one frame.
func Tally(detections []Detection) FrameCounts {
	var counts FrameCounts
	for _, det := range detections {
		counts.Add(det.Label)
	}
	return counts
}

// AlertEvent is published on the alert subject every time a notification is dispatched.
type AlertEvent struct {
	ID           string      `json:"id"`
	Timestamp    time.Time   `json:"timestamp"`
	Reason       string      `json:"reason"`
	Counts       FrameCounts `json:"counts"`
	SnapshotPath string      `json:"snapshot_path"`
	Hostname     string      `json:"hostname,omitempty"`
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
