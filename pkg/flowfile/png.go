// Native PNG rendering for flowchart diagrams.
// Mirrors the SVG renderer output using Go's image packages.

package flowfile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

// supersample is the render multiplier before downsampling.
const supersample = 4

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Padding  int           // space around the diagram
	FontSize int           // node label font size
	Scale    float64       // output pixels per diagram pixel (0 = 1)
	Title    string        // diagram title
	Router   *route.Router // nil uses route.NewRouter()
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Padding:  40,
		FontSize: 14,
		Scale:    1,
	}
}

// Colors used in rendering
var (
	colorWhite      = color.RGBA{255, 255, 255, 255}
	colorBlack      = color.RGBA{0, 0, 0, 255}
	colorNodeBorder = color.RGBA{26, 25, 43, 255}    // #1a192b
	colorText       = color.RGBA{34, 34, 34, 255}    // #222
	colorLabelBdr   = color.RGBA{204, 204, 204, 255} // #ccc
)

// renderContext holds rendering parameters including scale
type renderContext struct {
	img       *image.RGBA
	scale     float64 // diagram pixel to image pixel
	dx, dy    float64 // diagram translation before scaling
	face      font.Face
	labelFace font.Face
}

func newFace(ttf []byte, size float64) font.Face {
	fnt, err := opentype.Parse(ttf)
	if err != nil {
		panic(err) // should never happen with embedded font
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // No hinting - we'll supersample instead
	})
	if err != nil {
		panic(err)
	}
	return face
}

// at maps a diagram point into image space.
func (ctx *renderContext) at(p route.Point) (float64, float64) {
	return (p.X + ctx.dx) * ctx.scale, (p.Y + ctx.dy) * ctx.scale
}

// RenderPNG renders a diagram to PNG format.
// Uses 4x supersampling for smoother output.
func RenderPNG(f *flow.FlowData, w io.Writer, opts PNGOptions) error {
	img := RenderImage(f, opts)
	return png.Encode(w, img)
}

// RenderImage renders a diagram to an image.
func RenderImage(f *flow.FlowData, opts PNGOptions) *image.RGBA {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	router := opts.Router
	if router == nil {
		router = route.NewRouter()
	}
	render := router.RouteAll(f)
	b := diagramBounds(f, render)

	titleSpace := 0.0
	if opts.Title != "" {
		titleSpace = float64(opts.FontSize) + 20
	}
	pad := float64(opts.Padding)
	width := int(math.Ceil((b.maxX - b.minX + 2*pad) * opts.Scale))
	height := int(math.Ceil((b.maxY - b.minY + 2*pad + titleSpace) * opts.Scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	ss := opts.Scale * supersample
	large := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(large, large.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	ctx := &renderContext{
		img:       large,
		scale:     ss,
		dx:        pad - b.minX,
		dy:        pad + titleSpace - b.minY,
		face:      newFace(goregular.TTF, float64(opts.FontSize)*ss),
		labelFace: newFace(gobold.TTF, route.LabelFontSize*ss),
	}

	if opts.Title != "" {
		drawTextCentered(ctx.img, ctx.face, large.Bounds().Dx()/2, int((pad/2+float64(opts.FontSize))*ss), opts.Title, colorText)
	}

	var chains []route.Connector
	for _, c := range render.Connectors {
		if c.Kind == flow.KindMultiSegment {
			chains = append(chains, c)
			continue
		}
		drawConnectorPNG(ctx, c)
	}
	for _, n := range f.Nodes {
		drawNodePNG(ctx, n)
	}
	for _, c := range chains {
		drawConnectorPNG(ctx, c)
	}
	for _, c := range chains {
		for _, l := range c.Labels {
			drawLabelPNG(ctx, l)
		}
	}

	// Downsample to target size using high-quality interpolation
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final
}

// strokeSegment returns the geometry stroke i of c follows: chains have one
// stroke per segment, direct connectors layer every stroke on one segment.
func strokeSegment(c route.Connector, i int) route.Segment {
	if len(c.Segments) == len(c.Strokes) {
		return c.Segments[i]
	}
	return c.Segments[0]
}

func drawConnectorPNG(ctx *renderContext, c route.Connector) {
	radius := 0.0
	if c.Kind == flow.KindCurved {
		radius = route.CurveRadius
	}
	for i, s := range c.Strokes {
		seg := strokeSegment(c, i)
		pts := roundCorners(seg.Points, radius)
		for j := range pts {
			pts[j].X += s.DX
			pts[j].Y += s.DY
		}
		col := parseColor(s.Color)
		drawPolyline(ctx, pts, s.Width*ctx.scale, col, parseDash(s.Dash, ctx.scale), s.DashOffset*ctx.scale)
		if s.Marker && c.MarkerColor != "" && len(pts) >= 2 {
			drawArrowhead(ctx, pts[len(pts)-2], pts[len(pts)-1], parseColor(c.MarkerColor))
		}
	}
}

func drawNodePNG(ctx *renderContext, n flow.Node) {
	r := route.Bounds(n)
	fill, stroke := color.Color(colorWhite), color.Color(colorNodeBorder)
	if v := n.Style["background"]; v != "" {
		fill = parseColor(v)
	}
	if v := n.Style["borderColor"]; v != "" {
		stroke = parseColor(v)
	}
	drawBox(ctx, r, fill, stroke)
	label := n.Data.Label
	if label == "" {
		label = n.ID
	}
	x, y := ctx.at(route.Point{X: r.X, Y: r.Y})
	drawTextCentered(ctx.img, ctx.face, int(x), int(y), label, colorText)
}

func drawLabelPNG(ctx *renderContext, l route.Label) {
	r := route.LabelRect(l)
	drawBox(ctx, r, colorWhite, colorLabelBdr)
	c := parseColor(StartLabelColor)
	if l.Role == route.RoleEnd {
		c = parseColor(EndLabelColor)
	}
	x, y := ctx.at(route.Point{X: r.X, Y: r.Y})
	drawTextCentered(ctx.img, ctx.labelFace, int(x), int(y), l.Text, c)
}

// drawBox fills a rectangle and outlines it with a 1px border.
func drawBox(ctx *renderContext, r route.Rect, fill, stroke color.Color) {
	x0, y0 := ctx.at(route.Point{X: r.X - r.W/2, Y: r.Y - r.H/2})
	x1, y1 := ctx.at(route.Point{X: r.X + r.W/2, Y: r.Y + r.H/2})
	draw.Draw(ctx.img, image.Rect(int(x0), int(y0), int(x1), int(y1)), image.NewUniform(fill), image.Point{}, draw.Over)
	pts := []route.Point{
		{X: r.X - r.W/2, Y: r.Y - r.H/2},
		{X: r.X + r.W/2, Y: r.Y - r.H/2},
		{X: r.X + r.W/2, Y: r.Y + r.H/2},
		{X: r.X - r.W/2, Y: r.Y + r.H/2},
		{X: r.X - r.W/2, Y: r.Y - r.H/2},
	}
	drawPolyline(ctx, pts, ctx.scale, stroke, nil, 0)
}

// drawPolyline draws connected legs with the given thickness. dash holds
// alternating on/off lengths in image pixels; nil draws solid.
func drawPolyline(ctx *renderContext, pts []route.Point, thickness float64, c color.Color, dash []float64, dashOffset float64) {
	pos := dashOffset
	for i := 1; i < len(pts); i++ {
		x1, y1 := ctx.at(pts[i-1])
		x2, y2 := ctx.at(pts[i])
		pos = drawLine(ctx.img, x1, y1, x2, y2, thickness, c, dash, pos)
	}
}

// drawLine draws a line between two points and returns the dash position
// reached at its end.
func drawLine(img *image.RGBA, x1, y1, x2, y2, thickness float64, c color.Color, dash []float64, pos float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	dist := math.Sqrt(dx*dx + dy*dy)
	halfThick := thickness / 2

	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return pos + dist
	}

	perpX := -dy / dist
	perpY := dx / dist
	steps := math.Ceil(dist)

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		if !dashOn(dash, pos+dist*t) {
			continue
		}
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
	return pos + dist
}

func dashOn(dash []float64, pos float64) bool {
	if len(dash) == 0 {
		return true
	}
	var period float64
	for _, d := range dash {
		period += d
	}
	if period <= 0 {
		return true
	}
	p := math.Mod(pos, period)
	if p < 0 {
		p += period
	}
	for i, d := range dash {
		if p < d {
			return i%2 == 0
		}
		p -= d
	}
	return true
}

// drawArrowhead draws a filled arrowhead at the end of the leg from a to b.
func drawArrowhead(ctx *renderContext, a, b route.Point, c color.Color) {
	x1, y1 := ctx.at(a)
	x2, y2 := ctx.at(b)
	dx := x2 - x1
	dy := y2 - y1
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		return
	}

	nx := dx / dist
	ny := dy / dist

	arrowLen := 10.0 * ctx.scale
	arrowWidth := 5.0 * ctx.scale

	ax1 := x2 - nx*arrowLen + ny*arrowWidth
	ay1 := y2 - ny*arrowLen - nx*arrowWidth
	ax2 := x2 - nx*arrowLen - ny*arrowWidth
	ay2 := y2 - ny*arrowLen + nx*arrowWidth

	// Fill arrowhead
	for t := 0.0; t <= 1.0; t += 0.02 {
		mx := ax1 + (ax2-ax1)*t
		my := ay1 + (ay2-ay1)*t
		drawLine(ctx.img, x2, y2, mx, my, ctx.scale, c, nil, 0)
	}
}

// roundCorners replaces interior corners with sampled quadratic curves.
func roundCorners(pts []route.Point, radius float64) []route.Point {
	out := make([]route.Point, 0, len(pts))
	if radius <= 0 || len(pts) < 3 {
		return append(out, pts...)
	}
	out = append(out, pts[0])
	for i := 1; i < len(pts)-1; i++ {
		prev, p, next := pts[i-1], pts[i], pts[i+1]
		in, outLen := p.Dist(prev), p.Dist(next)
		r := math.Min(radius, math.Min(in/2, outLen/2))
		if r <= 0 {
			out = append(out, p)
			continue
		}
		before := p.Sub(p.Sub(prev).Scale(r / in))
		after := p.Add(next.Sub(p).Scale(r / outLen))
		const steps = 8
		for s := 0; s <= steps; s++ {
			t := float64(s) / steps
			out = append(out, route.Point{
				X: (1-t)*(1-t)*before.X + 2*(1-t)*t*p.X + t*t*after.X,
				Y: (1-t)*(1-t)*before.Y + 2*(1-t)*t*p.Y + t*t*after.Y,
			})
		}
	}
	return append(out, pts[len(pts)-1])
}

// drawTextCentered draws text centered at the given position.
func drawTextCentered(img *image.RGBA, face font.Face, x, y int, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()

	// Baseline sits a little below the centre so caps look centred.
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	baselineY := y + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(baselineY),
		},
	}
	d.DrawString(text)
}

func parseDash(s string, scale float64) []float64 {
	var out []float64
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		out = append(out, v*scale)
	}
	return out
}

var namedColors = map[string]color.RGBA{
	"black": colorBlack,
	"white": colorWhite,
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"gray":  {128, 128, 128, 255},
}

// parseColor accepts #rgb, #rrggbb and a few names. Unknown values draw
// black.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return colorBlack
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
	}
	if len(hex) != 6 {
		return colorBlack
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return colorBlack
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}
