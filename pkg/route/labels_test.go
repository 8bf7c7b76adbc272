package route

import (
	"math"
	"testing"
)

func TestLabelSize(t *testing.T) {
	w, h := LabelSize("abcde")
	if math.Abs(w-49) > 1e-9 {
		t.Errorf("Unexpected width %v", w)
	}
	if h != 21 {
		t.Errorf("Expected height 21, got %v", h)
	}
}

func TestPlaceKeepsFreeAnchor(t *testing.T) {
	lp := NewLabelPlacer([]Rect{{X: 0, Y: 0, W: 100, H: 100}})
	l := lp.Place(Label{Text: "ok", X: 300, Y: 300})
	if l.X != 300 || l.Y != 300 {
		t.Errorf("Expected label to stay put, got (%v,%v)", l.X, l.Y)
	}
}

func TestPlaceMovesOffNode(t *testing.T) {
	box := Rect{X: 100, Y: 100, W: 60, H: 30}
	lp := NewLabelPlacer([]Rect{box})
	l := lp.Place(Label{Text: "x", X: 100, Y: 110})
	if RectOverlap(LabelRect(l), box) > 0 {
		t.Errorf("Label still overlaps node at (%v,%v)", l.X, l.Y)
	}
}

func TestPlaceStacksDuplicates(t *testing.T) {
	lp := NewLabelPlacer(nil)
	a := lp.Place(Label{Text: "same", X: 50, Y: 50})
	b := lp.Place(Label{Text: "same", X: 50, Y: 50})
	if RectOverlap(LabelRect(a), LabelRect(b)) > 0 {
		t.Errorf("Labels overlap: %+v %+v", a, b)
	}
	if b.Y >= a.Y {
		t.Errorf("Expected the second label above the first, got %v vs %v", b.Y, a.Y)
	}
}

func TestPlaceDeterministic(t *testing.T) {
	nodes := []Rect{{X: 75, Y: 30, W: 150, H: 60}}
	run := func() []Label {
		lp := NewLabelPlacer(nodes)
		return []Label{
			lp.Place(Label{Text: "a", X: 75, Y: 30}),
			lp.Place(Label{Text: "b", X: 75, Y: 30}),
		}
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Label %d differs: %+v %+v", i, first[i], second[i])
		}
	}
}
