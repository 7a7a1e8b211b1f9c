package survey

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// LinePlotRenderer renders a plan view of a survey network as vector
// graphics: shots as line segments, stations as dots, anchors emphasized.
// Coordinates are the network's projected meters; east is +x, north is +y.
type LinePlotRenderer struct {
	Network  *SurveyNetwork
	Adjusted map[string]Vector3D // optional; falls back to raw positions

	Scale       float64           // canvas units per meter
	Padding     float64           // padding in meters
	GridSpacing float64           // grid line spacing in meters; 0 disables
	Resolution  canvas.Resolution // resolution for PNG output

	ShotColor    color.RGBA
	AnchorColor  color.RGBA
	StationColor color.RGBA
}

// NewLinePlotRenderer creates a line-plot renderer with default settings.
func NewLinePlotRenderer(n *SurveyNetwork, adjusted map[string]Vector3D) *LinePlotRenderer {
	return &LinePlotRenderer{
		Network:      n,
		Adjusted:     adjusted,
		Scale:        1.0,
		Padding:      10.0,
		GridSpacing:  50.0,
		Resolution:   canvas.DPI(300),
		ShotColor:    color.RGBA{40, 40, 40, 255},
		AnchorColor:  color.RGBA{200, 30, 30, 255},
		StationColor: color.RGBA{30, 90, 200, 255},
	}
}

// canvasRenderer is the interface both the svg and rasterizer renderers
// implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the line plot as an SVG to the provided writer.
func (r *LinePlotRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX-minX)*r.Scale + 2*r.Padding
	height := (maxY-minY)*r.Scale + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, maxX, maxY, width, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the line plot as a PNG to the provided writer.
func (r *LinePlotRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX-minX)*r.Scale + 2*r.Padding
	height := (maxY-minY)*r.Scale + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, maxX, maxY, width, height)
	return png.Encode(w, rast)
}

func (r *LinePlotRenderer) position(name string) Vector3D {
	if pos, ok := r.Adjusted[name]; ok {
		return pos
	}
	return r.Network.Stations[name]
}

func (r *LinePlotRenderer) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
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
	return
}

func (r *LinePlotRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, maxX, maxY, width, height float64) {
	// White background
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p Vector3D) (float64, float64) {
		return (p.X-minX)*r.Scale + r.Padding, (p.Y-minY)*r.Scale + r.Padding
	}

	// Grid lines under everything else
	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.2
		gridStyle.Dashes = []float64{2.0, 2.0}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Vector3D{X: x, Y: minY})
			x2, y2 := toCanvas(Vector3D{X: x, Y: maxY})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Vector3D{X: minX, Y: y})
			x2, y2 := toCanvas(Vector3D{X: maxX, Y: y})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Shots
	shotStyle := canvas.DefaultStyle
	shotStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	shotStyle.Stroke = canvas.Paint{Color: r.ShotColor}
	shotStyle.StrokeWidth = 0.5

	for _, shot := range r.Network.Shots {
		x1, y1 := toCanvas(r.position(shot.From))
		x2, y2 := toCanvas(r.position(shot.To))
		cp := &canvas.Path{}
		cp.MoveTo(x1, y1)
		cp.LineTo(x2, y2)
		renderer.RenderPath(cp, shotStyle, canvas.Identity)
	}

	// Stations on top, anchors larger
	stationStyle := canvas.DefaultStyle
	stationStyle.Fill = canvas.Paint{Color: r.StationColor}
	stationStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

	anchorStyle := canvas.DefaultStyle
	anchorStyle.Fill = canvas.Paint{Color: r.AnchorColor}
	anchorStyle.Stroke = canvas.Paint{Color: canvas.Black}
	anchorStyle.StrokeWidth = 0.3

	for _, name := range r.Network.StationNames() {
		cx, cy := toCanvas(r.position(name))
		if r.Network.IsAnchor(name) {
			dot := canvas.Circle(1.5).Translate(cx, cy)
			renderer.RenderPath(dot, anchorStyle, canvas.Identity)
		} else {
			dot := canvas.Circle(0.7).Translate(cx, cy)
			renderer.RenderPath(dot, stationStyle, canvas.Identity)
		}
	}
}
