package models

import "image/color"

// bgr builds a color from OpenCV channel order.
func bgr(b, g, r uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

var labelColors = map[string]color.RGBA{
	LabelHardhat:      bgr(255, 0, 0),
	LabelMask:         bgr(0, 255, 0),
	LabelNoHardhat:    bgr(0, 0, 255),
	LabelNoMask:       bgr(255, 255, 0),
	LabelNoSafetyVest: bgr(255, 0, 255),
	LabelPerson:       bgr(0, 255, 255),
	LabelSafetyCone:   bgr(128, 0, 128),
	LabelSafetyVest:   bgr(128, 128, 0),
	LabelMachinery:    bgr(0, 128, 128),
	LabelVehicle:      bgr(128, 128, 128),
}

var (
	DefaultLabelColor = bgr(255, 255, 255)
	PlateColor        = bgr(0, 0, 0)
	BannerColor       = bgr(0, 255, 0)
)

// ColorFor returns the drawing color for a label, white for unknown labels.
func ColorFor(label string) color.RGBA {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return DefaultLabelColor
}
