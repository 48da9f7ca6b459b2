// Package render turns a sign into a two-panel figure: the traffic sign glyph
// and the road diagram with the car paths.
package render

import (
	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
)

// LineStyle is the dash pattern of a line.
type LineStyle string

const (
	Solid   LineStyle = "solid"
	Dashed  LineStyle = "dashed"
	Dotted  LineStyle = "dotted"
	DashDot LineStyle = "dashdot"
)

// CarStyles is cycled through for the cars, in order.
var CarStyles = []LineStyle{Solid, Dashed, Dotted, DashDot}

// Road diagram styling.
const (
	RoadColor    = "lightgray"
	CarLineWidth = 8.0   // points
	MarkerArea   = 500.0 // points squared
	roadMargin   = 0.1
)

// Draw order inside a panel; lower is drawn first.
const (
	zRoad = 1
	zCar  = 2
)

// Options configures the figure. Zero fields fall back to DefaultOptions.
type Options struct {
	FigureWidth  float64 `json:"figureWidth" mapstructure:"figureWidth"`   // inches
	FigureHeight float64 `json:"figureHeight" mapstructure:"figureHeight"` // inches
	DPI          float64 `json:"dpi" mapstructure:"dpi"`
	LineColor    string  `json:"lineColor" mapstructure:"lineColor"`
	LineWidth    float64 `json:"lineWidth" mapstructure:"lineWidth"` // points
}

// DefaultOptions returns an 8x4 inch figure with thick black sign lines.
func DefaultOptions() Options {
	return Options{
		FigureWidth:  8,
		FigureHeight: 4,
		DPI:          100,
		LineColor:    "black",
		LineWidth:    30,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FigureWidth <= 0 {
		o.FigureWidth = def.FigureWidth
	}
	if o.FigureHeight <= 0 {
		o.FigureHeight = def.FigureHeight
	}
	if o.DPI <= 0 {
		o.DPI = def.DPI
	}
	if o.LineColor == "" {
		o.LineColor = def.LineColor
	}
	if o.LineWidth <= 0 {
		o.LineWidth = def.LineWidth
	}
	return o
}

// Bounds is the visible data range of a panel.
type Bounds struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// Line is a polyline in data coordinates. Width is in points.
// Shapes are drawn by Z, then by Order.
type Line struct {
	Points []core.Vector2 `json:"points"`
	Color  string         `json:"color"`
	Width  float64        `json:"width"`
	Style  LineStyle      `json:"style"`
	Z      int            `json:"z"`
	Order  int            `json:"order"`
}

// Marker is a filled circle. Area is in points squared.
type Marker struct {
	At    core.Vector2 `json:"at"`
	Color string       `json:"color"`
	Area  float64      `json:"area"`
	Z     int          `json:"z"`
	Order int          `json:"order"`
}

// Panel is one square plot of the figure.
type Panel struct {
	Title   string   `json:"title"`
	Bounds  Bounds   `json:"bounds"`
	Lines   []Line   `json:"lines"`
	Markers []Marker `json:"markers"`
}

func (p *Panel) nextOrder() int {
	return len(p.Lines) + len(p.Markers)
}

func (p *Panel) addLine(l Line) {
	l.Order = p.nextOrder()
	p.Lines = append(p.Lines, l)
}

func (p *Panel) addMarker(m Marker) {
	m.Order = p.nextOrder()
	p.Markers = append(p.Markers, m)
}

// Figure is the rendered artifact. Width and Height are in inches.
type Figure struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPI    float64 `json:"dpi"`
	Panels []Panel `json:"panels"`
}

// Render draws the sign. It only reads the sign, so repeated calls return
// equal figures.
func Render(sign *core.Sign, opts Options) *Figure {
	opts = opts.withDefaults()
	return &Figure{
		Width:  opts.FigureWidth,
		Height: opts.FigureHeight,
		DPI:    opts.DPI,
		Panels: []Panel{
			signPanel(sign, opts),
			roadPanel(sign, opts),
		},
	}
}

// signPanel draws the glyph: a stub per road and the right-of-way pair
// running through the center.
func signPanel(sign *core.Sign, opts Options) Panel {
	p := Panel{
		Title:  "Traffic Sign",
		Bounds: Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1},
	}

	center := core.Vector2{}
	stroke := func(from, to core.Vector2) Line {
		return Line{
			Points: []core.Vector2{from, to},
			Color:  opts.LineColor,
			Width:  opts.LineWidth,
			Style:  Solid,
			Z:      zCar,
		}
	}

	for _, side := range sign.Sides {
		end := side.Vector()
		p.addLine(stroke(end, end.Add(center).Mul(0.5)))
	}
	for _, side := range sign.Vorfahrt {
		p.addLine(stroke(side.Vector(), center))
	}
	return p
}

// roadPanel draws the roads in the background and each car's path on top.
func roadPanel(sign *core.Sign, opts Options) Panel {
	p := Panel{
		Title: "Cars",
		Bounds: Bounds{
			XMin: -1 - roadMargin, XMax: 1 + roadMargin,
			YMin: -1 - roadMargin, YMax: 1 + roadMargin,
		},
	}

	for _, side := range sign.Sides {
		p.addLine(Line{
			Points: []core.Vector2{side.Vector(), {}},
			Color:  RoadColor,
			Width:  opts.LineWidth,
			Style:  Solid,
			Z:      zRoad,
		})
	}

	for i, car := range sign.Cars {
		if i >= len(CarStyles) {
			break
		}
		// the path is drawn over its own start marker
		p.addMarker(Marker{
			At:    car.Start(),
			Color: car.Color.Name,
			Area:  MarkerArea,
			Z:     zCar,
		})
		path := make([]core.Vector2, len(car.Path))
		copy(path, car.Path)
		p.addLine(Line{
			Points: path,
			Color:  car.Color.Name,
			Width:  CarLineWidth,
			Style:  CarStyles[i],
			Z:      zCar,
		})
	}
	return p
}
