package survey

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
)

// PlanRenderer rasterizes a labeled plan view of a survey network. The
// vector renderer produces nicer output for print; this one exists for quick
// inspection because it labels every station by name.
type PlanRenderer struct {
	Network  *SurveyNetwork
	Adjusted map[string]Vector3D // optional; falls back to raw positions

	Scale       float64 // pixels per meter
	Padding     int     // padding around the image in pixels
	DrawLabels  bool
	AnchorsOnly bool // label only anchor stations
}

// NewPlanRenderer creates a raster plan renderer with default settings.
func NewPlanRenderer(n *SurveyNetwork, adjusted map[string]Vector3D) *PlanRenderer {
	return &PlanRenderer{
		Network:    n,
		Adjusted:   adjusted,
		Scale:      4.0,
		Padding:    30,
		DrawLabels: true,
	}
}

func (r *PlanRenderer) position(name string) Vector3D {
	if pos, ok := r.Adjusted[name]; ok {
		return pos
	}
	return r.Network.Stations[name]
}

// Render draws the network into a new RGBA image. North is up, so image rows
// grow toward decreasing Y.
func (r *PlanRenderer) Render() *image.RGBA {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for name := range r.Network.Stations {
		p := r.position(name)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if minX > maxX {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	width := int((maxX-minX)*r.Scale) + 2*r.Padding
	height := int((maxY-minY)*r.Scale) + 2*r.Padding
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// White background
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	toPixel := func(p Vector3D) (int, int) {
		px := int((p.X-minX)*r.Scale) + r.Padding
		py := height - (int((p.Y-minY)*r.Scale) + r.Padding)
		return px, py
	}

	shotColor := color.RGBA{60, 60, 60, 255}
	for _, shot := range r.Network.Shots {
		x1, y1 := toPixel(r.position(shot.From))
		x2, y2 := toPixel(r.position(shot.To))
		drawLine(img, x1, y1, x2, y2, shotColor)
	}

	stationColor := color.RGBA{30, 90, 200, 255}
	anchorColor := color.RGBA{200, 30, 30, 255}
	labelColor := color.RGBA{0, 0, 0, 255}
	for _, name := range r.Network.StationNames() {
		px, py := toPixel(r.position(name))
		anchor := r.Network.IsAnchor(name)
		radius := 2
		c := stationColor
		if anchor {
			radius = 4
			c = anchorColor
		}
		fillCircle(img, px, py, radius, c)
		if r.DrawLabels && (anchor || !r.AnchorsOnly) {
			drawText(img, px+radius+2, py+4, name, labelColor)
		}
	}
	return img
}

// RenderToFile writes the plan view as a PNG file.
func (r *PlanRenderer) RenderToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer f.Close()
	return png.Encode(f, r.Render())
}

// drawLine draws a line segment using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func fillCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawText renders text onto an image at the specified position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
