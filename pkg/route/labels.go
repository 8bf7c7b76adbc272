package route

import "math"

// Role tells which end of a chain a caption belongs to.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
)

// Label is a floating caption. X,Y is the bottom-centre of the caption box.
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Role Role    `json:"role"`
}

// Caption box metrics: 11px semibold text inside 4x8 padding.
const (
	LabelFontSize = 11.0
	labelPadX     = 8.0
	labelPadY     = 4.0
	labelGap      = 4.0
)

// LabelSize estimates the caption box size for text.
func LabelSize(text string) (w, h float64) {
	w = float64(len([]rune(text)))*LabelFontSize*0.6 + 2*labelPadX
	h = LabelFontSize + 2*labelPadY + 2
	return w, h
}

// LabelRect returns the caption box of l.
func LabelRect(l Label) Rect {
	w, h := LabelSize(l.Text)
	return Rect{X: l.X, Y: l.Y - h/2, W: w, H: h}
}

// LabelPlacer manages label placement with collision avoidance.
type LabelPlacer struct {
	obstacles []Rect
}

// NewLabelPlacer creates a LabelPlacer with initial obstacles (nodes).
func NewLabelPlacer(nodes []Rect) *LabelPlacer {
	obstacles := make([]Rect, len(nodes))
	copy(obstacles, nodes)
	return &LabelPlacer{obstacles: obstacles}
}

// Place moves l to the first candidate position that does not overlap a
// node or an earlier label, trying the preferred anchor first. When every
// candidate collides, the one with the least overlap wins. The chosen box
// becomes an obstacle for later labels.
func (lp *LabelPlacer) Place(l Label) Label {
	w, h := LabelSize(l.Text)
	candidates := []Point{
		{0, 0},
		{0, -(h + labelGap)},
		{w/2 + labelGap, 0},
		{-(w/2 + labelGap), 0},
		{0, h + labelGap},
		{0, -2 * (h + labelGap)},
	}

	best := l
	bestOverlap := math.MaxFloat64
	for _, d := range candidates {
		c := l
		c.X += d.X
		c.Y += d.Y
		total := 0.0
		r := LabelRect(c)
		for _, obs := range lp.obstacles {
			total += RectOverlap(r, obs)
		}
		if total == 0 {
			best = c
			break
		}
		if total < bestOverlap {
			bestOverlap = total
			best = c
		}
	}
	lp.obstacles = append(lp.obstacles, LabelRect(best))
	return best
}
