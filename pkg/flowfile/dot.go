package flowfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// GenerateDOT converts a diagram to Graphviz DOT format. Nodes are pinned
// at their diagram positions; multi-segment chains become one dashed or
// solid edge per visited pair, labelled at the ends.
func GenerateDOT(f *flow.FlowData, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph Flow {\n")
	sb.WriteString("    node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	for _, n := range f.Nodes {
		label := n.Data.Label
		if label == "" {
			label = n.ID
		}
		// DOT positions are in points with y growing upwards.
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", pos=\"%g,%g!\"];\n",
			escapeDOT(n.ID), escapeDOT(label), n.Position.X, flipY(n.Position.Y)))
	}
	sb.WriteString("\n")

	nodes := f.NodeMap()
	for _, e := range f.Edges {
		if !e.IsMultiSegment() {
			var attrs []string
			if e.Kind() != flow.KindSimple {
				attrs = append(attrs, fmt.Sprintf("comment=\"%s\"", e.Kind()))
			}
			if e.Kind() == flow.KindStriped || e.Kind() == flow.KindDoubleStriped {
				attrs = append(attrs, "penwidth=3")
			}
			writeDOTEdge(&sb, e.Source, e.Target, attrs)
			continue
		}

		var seq []string
		for _, id := range e.Sequence() {
			if _, ok := nodes[id]; ok {
				seq = append(seq, id)
			}
		}
		style := "solid"
		if e.Data.IsDashed {
			style = "dashed"
		}
		color := e.Data.Color
		if color == "" {
			color = flow.DefaultChainColor
		}
		for i := 0; i+1 < len(seq); i++ {
			attrs := []string{
				fmt.Sprintf("style=%s", style),
				fmt.Sprintf("color=\"%s\"", escapeDOT(color)),
			}
			if i == 0 && e.Data.StartLabel != "" {
				attrs = append(attrs, fmt.Sprintf("taillabel=\"%s\"", escapeDOT(e.Data.StartLabel)))
			}
			if i == len(seq)-2 && e.Data.EndLabel != "" {
				attrs = append(attrs, fmt.Sprintf("headlabel=\"%s\"", escapeDOT(e.Data.EndLabel)))
			}
			if i < len(seq)-2 {
				attrs = append(attrs, "arrowhead=none")
			}
			writeDOTEdge(&sb, seq[i], seq[i+1], attrs)
		}
	}

	sb.WriteString("}\n")

	return sb.String()
}

func writeDOTEdge(sb *strings.Builder, from, to string, attrs []string) {
	sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\"", escapeDOT(from), escapeDOT(to)))
	if len(attrs) > 0 {
		sb.WriteString(" [" + strings.Join(attrs, ", ") + "]")
	}
	sb.WriteString(";\n")
}

func flipY(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
