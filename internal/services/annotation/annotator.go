package annotation

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/models"
)

const (
	fontFace      = gocv.FontHersheySimplex
	fontScale     = 0.5
	textThickness = 1
	boxThickness  = 2
	platePadding  = 5

	labelOffset = 10
	summaryX    = 10
	summaryY    = 30
	summaryStep = 30
	bannerInset = 160
	bannerY     = 30
	BannerText  = "Email Sent"
)

// Annotate draws a box and caption for every detection onto frame in place
// and returns the per-frame tally.
func Annotate(frame *gocv.Mat, detections []models.Detection) models.FrameCounts {
	var counts models.FrameCounts
	for _, det := range detections {
		c := models.ColorFor(det.Label)
		gocv.Rectangle(frame, det.Box.Rect(), c, boxThickness)
		DrawText(frame, det.Caption(), det.Box.X1, det.Box.Y1-labelOffset, c)
		counts.Add(det.Label)
	}
	return counts
}

// DrawSummary renders the Hardhats/Vests/People lines in the top-left corner.
func DrawSummary(frame *gocv.Mat, counts models.FrameCounts) {
	y := summaryY
	for _, line := range counts.SummaryLines() {
		DrawText(frame, line, summaryX, y, models.DefaultLabelColor)
		y += summaryStep
	}
}

// DrawBanner renders the "Email Sent" notice near the top-right corner.
func DrawBanner(frame *gocv.Mat) {
	DrawText(frame, BannerText, frame.Cols()-bannerInset, bannerY, models.BannerColor)
}

// DrawText writes text on an opaque plate whose top-left corner sits
// platePadding pixels above and left of (x, y).
func DrawText(frame *gocv.Mat, text string, x, y int, textColor color.RGBA) {
	size := gocv.GetTextSize(text, fontFace, fontScale, textThickness)
	plate, origin := plateLayout(x, y, size)

	gocv.Rectangle(frame, plate, models.PlateColor, -1)
	gocv.PutText(frame, text, origin, fontFace, fontScale, textColor, textThickness)
}

// plateLayout returns the background rectangle and the text baseline origin
// for text of the given extent anchored at (x, y).
func plateLayout(x, y int, size image.Point) (image.Rectangle, image.Point) {
	plate := image.Rect(x-platePadding, y-platePadding, x+size.X+platePadding, y+size.Y+platePadding)
	origin := image.Pt(x, y+size.Y+platePadding)
	return plate, origin
}
