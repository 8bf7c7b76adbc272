package flowfile

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

// Caption colors by role.
const (
	StartLabelColor = "#0066cc"
	EndLabelColor   = "#cc6600"
)

// SVGOptions controls SVG export.
type SVGOptions struct {
	Title      string        // diagram title
	FontSize   int           // node label font size
	TitleSize  int           // font size for title (0 = FontSize + 4)
	Padding    int           // space around the diagram
	Background string        // canvas fill, empty for transparent
	Router     *route.Router // nil uses route.NewRouter()
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		FontSize:   14,
		Padding:    40,
		Background: "white",
	}
}

// bounds is an accumulating bounding box.
type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBounds() *bounds { return &bounds{empty: true} }

func (b *bounds) add(x, y float64) {
	if b.empty {
		b.minX, b.maxX, b.minY, b.maxY = x, x, y, y
		b.empty = false
		return
	}
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

func (b *bounds) addRect(r route.Rect) {
	b.add(r.X-r.W/2, r.Y-r.H/2)
	b.add(r.X+r.W/2, r.Y+r.H/2)
}

// diagramBounds covers every node, connector point and caption.
func diagramBounds(f *flow.FlowData, r route.Render) *bounds {
	b := newBounds()
	for _, n := range f.Nodes {
		b.addRect(route.Bounds(n))
	}
	for _, c := range r.Connectors {
		for _, seg := range c.Segments {
			for _, p := range seg.Points {
				b.add(p.X, p.Y)
			}
		}
		for _, l := range c.Labels {
			b.addRect(route.LabelRect(l))
		}
	}
	if b.empty {
		b.add(0, 0)
	}
	return b
}

// GenerateSVG renders a diagram with every connector routed.
func GenerateSVG(f *flow.FlowData, opts SVGOptions) string {
	var buf bytes.Buffer
	WriteSVG(&buf, f, opts)
	return buf.String()
}

// WriteSVG renders a diagram as SVG to w.
func WriteSVG(w io.Writer, f *flow.FlowData, opts SVGOptions) {
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	if opts.TitleSize == 0 {
		opts.TitleSize = opts.FontSize + 4
	}
	router := opts.Router
	if router == nil {
		router = route.NewRouter()
	}
	render := router.RouteAll(f)

	b := diagramBounds(f, render)
	titleSpace := 0
	if opts.Title != "" {
		titleSpace = opts.TitleSize + 16
	}
	width := int(math.Ceil(b.maxX-b.minX)) + 2*opts.Padding
	height := int(math.Ceil(b.maxY-b.minY)) + 2*opts.Padding + titleSpace

	canvas := svg.New(w)
	canvas.Start(width, height)

	markers := markerIDs(render)
	if len(markers.order) > 0 {
		canvas.Def()
		for _, color := range markers.order {
			canvas.Marker(markers.ids[color], 9, 5, 10, 10, `orient="auto"`, `markerUnits="userSpaceOnUse"`)
			canvas.Polygon([]int{0, 10, 0}, []int{0, 5, 10}, "fill:"+color)
			canvas.MarkerEnd()
		}
		canvas.DefEnd()
	}

	if opts.Background != "" {
		canvas.Rect(0, 0, width, height, "fill:"+opts.Background)
	}
	if opts.Title != "" {
		canvas.Text(width/2, opts.Padding/2+opts.TitleSize, opts.Title,
			fmt.Sprintf("font-family:sans-serif;font-size:%dpx;font-weight:bold;text-anchor:middle", opts.TitleSize))
	}

	dx := float64(opts.Padding) - b.minX
	dy := float64(opts.Padding+titleSpace) - b.minY
	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(dx), num(dy)))

	// Connectors below nodes, chains above both.
	var chains []route.Connector
	for _, c := range render.Connectors {
		if c.Kind == flow.KindMultiSegment {
			chains = append(chains, c)
			continue
		}
		drawConnector(canvas, c, markers)
	}
	for _, n := range f.Nodes {
		drawNode(canvas, n, opts.FontSize)
	}
	for _, c := range chains {
		drawConnector(canvas, c, markers)
	}
	for _, c := range chains {
		for _, l := range c.Labels {
			drawLabel(canvas, l)
		}
	}

	canvas.Gend()
	canvas.End()
}

type markerSet struct {
	ids   map[string]string
	order []string
}

func markerIDs(r route.Render) markerSet {
	m := markerSet{ids: make(map[string]string)}
	for _, c := range r.Connectors {
		if c.MarkerColor == "" {
			continue
		}
		if _, ok := m.ids[c.MarkerColor]; !ok {
			m.ids[c.MarkerColor] = "arrow-" + strconv.Itoa(len(m.order))
			m.order = append(m.order, c.MarkerColor)
		}
	}
	return m
}

func drawConnector(canvas *svg.SVG, c route.Connector, markers markerSet) {
	canvas.Gid(html.EscapeString("edge-" + c.EdgeID))
	for _, s := range c.Strokes {
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s", s.Color, num(s.Width))
		if s.Dash != "" {
			style += ";stroke-dasharray:" + s.Dash
		}
		if s.DashOffset != 0 {
			style += ";stroke-dashoffset:" + num(s.DashOffset)
		}
		args := []string{style}
		if s.Marker && c.MarkerColor != "" {
			args = append(args, fmt.Sprintf(`marker-end="url(#%s)"`, markers.ids[c.MarkerColor]))
		}
		if s.DX != 0 || s.DY != 0 {
			canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(s.DX), num(s.DY)))
			canvas.Path(s.Path, args...)
			canvas.Gend()
			continue
		}
		canvas.Path(s.Path, args...)
	}
	canvas.Gend()
}

func drawNode(canvas *svg.SVG, n flow.Node, fontSize int) {
	r := route.Bounds(n)
	fill, stroke := "white", "#1a192b"
	if v := n.Style["background"]; v != "" {
		fill = v
	}
	if v := n.Style["borderColor"]; v != "" {
		stroke = v
	}
	x := int(math.Round(r.X - r.W/2))
	y := int(math.Round(r.Y - r.H/2))
	canvas.Roundrect(x, y, int(math.Round(r.W)), int(math.Round(r.H)), 6, 6,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", fill, stroke))
	label := n.Data.Label
	if label == "" {
		label = n.ID
	}
	canvas.Text(int(math.Round(r.X)), int(math.Round(r.Y))+fontSize/3, label,
		fmt.Sprintf("font-family:sans-serif;font-size:%dpx;text-anchor:middle;fill:#222", fontSize))
}

func drawLabel(canvas *svg.SVG, l route.Label) {
	r := route.LabelRect(l)
	color := StartLabelColor
	if l.Role == route.RoleEnd {
		color = EndLabelColor
	}
	x := int(math.Round(r.X - r.W/2))
	y := int(math.Round(r.Y - r.H/2))
	canvas.Roundrect(x, y, int(math.Round(r.W)), int(math.Round(r.H)), 6, 6,
		"fill:rgba(255,255,255,0.95);stroke:#ccc;stroke-width:1")
	canvas.Text(int(math.Round(r.X)), int(math.Round(r.Y+route.LabelFontSize/3)), l.Text,
		fmt.Sprintf("font-family:sans-serif;font-size:%gpx;font-weight:600;text-anchor:middle;fill:%s", route.LabelFontSize, color))
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
