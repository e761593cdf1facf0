// Package render rasterizes per-iteration optimization snapshots to PNG
// frames for headless inspection of a run.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
)

var (
	background  = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	ghostColor  = color.RGBA{R: 215, G: 215, B: 215, A: 255}
	labelColor  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	markerColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	loadColor   = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// Renderer draws iteration reports onto fixed-size frames. It consumes only
// the report, never the optimizer internals.
type Renderer struct {
	Width  int
	Height int
	Margin int
}

// NewRenderer returns a renderer with the default frame geometry.
func NewRenderer() *Renderer {
	return &Renderer{Width: 800, Height: 500, Margin: 40}
}

// Render draws the report into a fresh RGBA frame: ghost members as thin
// light grey lines, active members in blue with line width and opacity
// scaled by force relative to the run-wide maximum, support markers at the
// bottom corners, the load arrow at the top center, plus an iteration
// label.
func (r *Renderer) Render(report *core.IterationReport) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetRGBA(x, y, background)
		}
	}

	toPixel := r.projection(report)

	// Ghost members first, behind the active topology.
	for _, m := range report.Members {
		if m.Active {
			continue
		}
		x1, y1 := toPixel(m.P1)
		x2, y2 := toPixel(m.P2)
		drawThickLine(img, x1, y1, x2, y2, 1, ghostColor)
	}

	for _, m := range report.Members {
		if !m.Active {
			continue
		}

		ratio := 0.0
		if report.MaxForce > 0 {
			ratio = m.Force / report.MaxForce
		}
		thickness := 1 + int(3*ratio)
		c := color.RGBA{
			R: 30,
			G: 80,
			B: 200,
			A: uint8(80 + 175*ratio),
		}

		x1, y1 := toPixel(m.P1)
		x2, y2 := toPixel(m.P2)
		drawThickLine(img, x1, y1, x2, y2, thickness, c)
	}

	if minX, minY, maxX, maxY, ok := reportBounds(report); ok {
		lx, ly := toPixel(core.Point{X: minX, Y: minY})
		rx, ry := toPixel(core.Point{X: maxX, Y: minY})
		drawSupportMarker(img, lx, ly)
		drawSupportMarker(img, rx, ry)

		ax, ay := toPixel(core.Point{X: (minX + maxX) / 2, Y: maxY})
		drawLoadArrow(img, ax, ay)
	}

	r.drawLabel(img, fmt.Sprintf("iter %d  active %d  %s",
		report.Iteration, report.ActiveCount, report.State))

	return img
}

// WritePNG renders the report and writes it as a PNG file.
func (r *Renderer) WritePNG(path string, report *core.IterationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to create frame file")
	}
	defer f.Close()

	if err := png.Encode(f, r.Render(report)); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to encode frame")
	}
	return nil
}

// reportBounds returns the bounding box over all member endpoints.
func reportBounds(report *core.IterationReport) (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, m := range report.Members {
		for _, p := range []core.Point{m.P1, m.P2} {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	ok = len(report.Members) > 0 && maxX > minX && maxY > minY
	return minX, minY, maxX, maxY, ok
}

// projection maps domain coordinates into the frame, preserving aspect
// ratio and flipping y so up is up.
func (r *Renderer) projection(report *core.IterationReport) func(core.Point) (float64, float64) {
	minX, minY, maxX, maxY, ok := reportBounds(report)
	if !ok {
		return func(p core.Point) (float64, float64) {
			return float64(r.Margin), float64(r.Height - r.Margin)
		}
	}

	scale := math.Min(
		float64(r.Width-2*r.Margin)/(maxX-minX),
		float64(r.Height-2*r.Margin)/(maxY-minY),
	)

	return func(p core.Point) (float64, float64) {
		x := float64(r.Margin) + (p.X-minX)*scale
		y := float64(r.Height-r.Margin) - (p.Y-minY)*scale
		return x, y
	}
}

func (r *Renderer) drawLabel(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 16),
	}
	d.DrawString(text)
}

// drawSupportMarker draws a filled triangle under the support node.
func drawSupportMarker(img *image.RGBA, x, y float64) {
	cx, cy := int(x), int(y)
	for i := 0; i <= 8; i++ {
		drawLine(img, cx-i, cy+i, cx+i, cy+i, markerColor)
	}
}

// drawLoadArrow draws a downward arrow ending at the load node.
func drawLoadArrow(img *image.RGBA, x, y float64) {
	cx, cy := int(x), int(y)
	drawLine(img, cx, cy-30, cx, cy-4, loadColor)
	drawLine(img, cx-1, cy-30, cx-1, cy-4, loadColor)
	drawLine(img, cx-5, cy-11, cx, cy-4, loadColor)
	drawLine(img, cx+5, cy-11, cx, cy-4, loadColor)
}

// drawThickLine draws a line with the given thickness by stacking parallel
// Bresenham lines along the perpendicular.
func drawThickLine(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}

	// Perpendicular unit vector
	px := -dy / length
	py := dx / length

	halfThick := float64(thickness) / 2

	for t := -halfThick; t <= halfThick; t += 1.0 {
		drawLine(img, int(x1+px*t), int(y1+py*t), int(x2+px*t), int(y2+py*t), c)
	}
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	x, y := x1, y1

	for {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
