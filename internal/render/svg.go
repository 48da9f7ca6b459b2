package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

const (
	mmPerInch     = 25.4
	pointsPerInch = 72.0
	// axes take this share of a panel's square cell, the rest is margin
	axesShare  = 0.8
	frameWidth = 0.8 // points
)

// dashPatterns are in multiples of the line width.
var dashPatterns = map[LineStyle][]float64{
	Dashed:  {3.7, 1.6},
	Dotted:  {1, 1.65},
	DashDot: {6.4, 1.6, 1, 1.6},
}

// namedColors covers the palette and the defaults. Any other color must be
// given as #rgb or #rrggbb.
var namedColors = map[string]color.RGBA{
	"black":     {0x00, 0x00, 0x00, 0xff},
	"white":     {0xff, 0xff, 0xff, 0xff},
	"lightgray": {0xd3, 0xd3, 0xd3, 0xff},
	"gray":      {0x80, 0x80, 0x80, 0xff},
	"navy":      {0x00, 0x00, 0x80, 0xff},
	"red":       {0xff, 0x00, 0x00, 0xff},
	"blue":      {0x00, 0x00, 0xff, 0xff},
	"orange":    {0xff, 0xa5, 0x00, 0xff},
	"green":     {0x00, 0x80, 0x00, 0xff},
}

func parseColor(name string) (color.RGBA, error) {
	if strings.HasPrefix(name, "#") && (len(name) == 4 || len(name) == 7) {
		return canvas.Hex(name), nil
	}
	if c, ok := namedColors[strings.ToLower(name)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", name)
}

// points converts a length in points to canvas millimetres.
func points(v float64) float64 {
	return v * mmPerInch / pointsPerInch
}

// shape is a line or a marker in drawing order.
type shape struct {
	z, order int
	line     *Line
	marker   *Marker
}

// shapes returns the panel's lines and markers sorted by Z, then Order.
func (p Panel) shapes() []shape {
	out := make([]shape, 0, len(p.Lines)+len(p.Markers))
	for i := range p.Lines {
		out = append(out, shape{z: p.Lines[i].Z, order: p.Lines[i].Order, line: &p.Lines[i]})
	}
	for i := range p.Markers {
		out = append(out, shape{z: p.Markers[i].Z, order: p.Markers[i].Order, marker: &p.Markers[i]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].z != out[j].z {
			return out[i].z < out[j].z
		}
		return out[i].order < out[j].order
	})
	return out
}

// axes maps data coordinates of one panel to canvas millimetres, y up.
type axes struct {
	left, bottom, size float64
	b                  Bounds
}

func (a axes) x(v float64) float64 {
	return a.left + (v-a.b.XMin)/(a.b.XMax-a.b.XMin)*a.size
}

func (a axes) y(v float64) float64 {
	return a.bottom + (v-a.b.YMin)/(a.b.YMax-a.b.YMin)*a.size
}

// Canvas draws the figure on a white canvas sized in millimetres. Panels sit
// side by side, each in a framed square. Titles are kept in the model only.
func (f *Figure) Canvas() (*canvas.Canvas, error) {
	width, height := f.Width*mmPerInch, f.Height*mmPerInch
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	if len(f.Panels) == 0 {
		return c, nil
	}
	cellWidth := width / float64(len(f.Panels))
	size := math.Min(cellWidth, height) * axesShare
	for i, p := range f.Panels {
		a := axes{
			left:   float64(i)*cellWidth + (cellWidth-size)/2,
			bottom: (height - size) / 2,
			size:   size,
			b:      p.Bounds,
		}
		if err := drawPanel(ctx, a, p); err != nil {
			return nil, fmt.Errorf("panel %q: %w", p.Title, err)
		}
	}
	return c, nil
}

func drawPanel(ctx *canvas.Context, a axes, p Panel) error {
	for _, s := range p.shapes() {
		var err error
		if s.line != nil {
			err = drawLine(ctx, a, *s.line)
		} else {
			err = drawMarker(ctx, a, *s.marker)
		}
		if err != nil {
			return err
		}
	}

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(points(frameWidth))
	ctx.SetDashes(0)
	ctx.DrawPath(a.left, a.bottom, canvas.Rectangle(a.size, a.size))
	return nil
}

func drawLine(ctx *canvas.Context, a axes, l Line) error {
	if len(l.Points) < 2 {
		return nil
	}
	col, err := parseColor(l.Color)
	if err != nil {
		return err
	}

	path := &canvas.Path{}
	path.MoveTo(a.x(l.Points[0].X), a.y(l.Points[0].Y))
	for _, pt := range l.Points[1:] {
		path.LineTo(a.x(pt.X), a.y(pt.Y))
	}

	width := points(l.Width)
	dashes := make([]float64, len(dashPatterns[l.Style]))
	for i, d := range dashPatterns[l.Style] {
		dashes[i] = d * width
	}

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(width)
	ctx.SetDashes(0, dashes...)
	ctx.DrawPath(0, 0, path)
	return nil
}

func drawMarker(ctx *canvas.Context, a axes, m Marker) error {
	col, err := parseColor(m.Color)
	if err != nil {
		return err
	}
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(col)
	ctx.DrawPath(a.x(m.At.X), a.y(m.At.Y), canvas.Circle(points(math.Sqrt(m.Area)/2)))
	return nil
}

// SVG encodes the figure as a standalone SVG document.
func (f *Figure) SVG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.WriteSVG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSVG writes the figure as SVG to w.
func (f *Figure) WriteSVG(w io.Writer) error {
	return f.write(w, "svg", renderers.SVG())
}

// WritePNG rasterizes the figure at its DPI and writes it as PNG to w.
func (f *Figure) WritePNG(w io.Writer) error {
	return f.write(w, "png", renderers.PNG(canvas.DPI(f.DPI)))
}

// write encodes into memory first, as the renderers do not report writer errors.
func (f *Figure) write(w io.Writer, format string, encode canvas.Writer) error {
	c, err := f.Canvas()
	if err != nil {
		return fmt.Errorf("failed to draw figure: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, c); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}
