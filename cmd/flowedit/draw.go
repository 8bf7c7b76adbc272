package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleNode       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleNodeSel    = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleNodeChain  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleEdge       = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleEdgeSel    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStartLabel = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x00, 0x66, 0xcc))
	styleEndLabel   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xcc, 0x66, 0x00))
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor     = tcell.StyleDefault.Background(tcell.ColorDarkGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

var helpLines = []string{
	"Canvas",
	"  Arrows        move cursor",
	"  Shift+Arrows  pan view (mouse wheel too)",
	"  Enter         add node at cursor (right click too)",
	"  Tab           cycle node selection",
	"  e             edit selected node label",
	"  g             move selected node with arrows",
	"  c             connect selected node (k cycles kind)",
	"  m             build a multi-segment chain",
	"  d             delete an edge",
	"  Del           delete selected node",
	"  v             validate",
	"  r             export SVG/PNG",
	"  Ctrl+S        save",
	"  Esc           menu",
	"",
	"Chain",
	"  Click/Space   add or remove node",
	"  Enter         set labels and dash style, then add",
	"  Esc           cancel",
	"",
	"Every change is autosaved.",
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas(w, h)
	ed.drawSidebar(w, h)

	switch ed.mode {
	case ModeMenu:
		ed.drawMenuOverlay(w, h)
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeFilePicker:
		ed.drawFilePicker(w, h)
	case ModeConnect:
		ed.drawConnectSelector(w, h)
	case ModeSelectEdge:
		ed.drawEdgeSelector(w, h)
	case ModeHelp:
		ed.drawHelp(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawMenuOverlay(w, h int) {
	menuWidth := 40
	menuHeight := len(ed.menuItems) + 4
	startX := max(0, (w-menuWidth)/2)
	startY := max(0, (h-menuHeight)/2)

	ed.drawTitledBox(startX, startY, menuWidth, menuHeight, "flowedit")
	for i, item := range ed.menuItems {
		style := styleMenu
		if i == ed.menuSelected {
			style = styleMenuSel
		}
		ed.drawString(startX+1, startY+2+i, fmt.Sprintf(" %-*s", menuWidth-3, item), style)
	}
}

// drawTitledBox draws a bordered box with optional title
func (ed *Editor) drawTitledBox(x, y, w, h int, title string) {
	ed.drawBox(x, y, w, h, styleDefault)
	if title != "" {
		titleX := x + (w-len(title)-2)/2
		ed.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		ed.drawString(titleX+1, y, title, styleSidebarH)
		ed.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}
}

func (ed *Editor) drawCanvas(w, h int) {
	canvasW := w - ed.sidebarWidth
	canvasH := h - 2
	set := func(x, y int, r rune, style tcell.Style) {
		if x >= 0 && x < canvasW && y >= 0 && y < canvasH {
			ed.screen.SetContent(x, y, r, nil, style)
		}
	}

	var selectedID string
	if ed.selectedEdge >= 0 && ed.selectedEdge < len(ed.flow.Edges) {
		selectedID = ed.flow.Edges[ed.selectedEdge].ID
	}

	// Plain connectors first, nodes over them, chains on top.
	drawConn := func(c route.Connector) {
		style := styleEdge
		if c.EdgeID == selectedID {
			style = styleEdgeSel
		}
		for _, g := range ed.view.connectorGlyphs(c) {
			set(g.X, g.Y, g.R, style)
		}
	}
	for _, c := range ed.render.Connectors {
		if c.Kind != flow.KindMultiSegment {
			drawConn(c)
		}
	}
	for i, n := range ed.flow.Nodes {
		ed.drawNode(i, n, set)
	}
	for _, c := range ed.render.Connectors {
		if c.Kind == flow.KindMultiSegment {
			drawConn(c)
		}
	}
	for _, c := range ed.render.Connectors {
		for _, l := range c.Labels {
			style := styleStartLabel
			if l.Role == route.RoleEnd {
				style = styleEndLabel
			}
			x, y := ed.view.toCell(route.Point{X: l.X, Y: l.Y})
			text := "[" + l.Text + "]"
			x -= len([]rune(text)) / 2
			for i, r := range []rune(text) {
				set(x+i, y, r, style)
			}
		}
	}

	if ed.mode == ModeCanvas || ed.mode == ModeChain {
		if ed.view.nodeAt(ed.flow, ed.cursorX, ed.cursorY) < 0 {
			set(ed.cursorX, ed.cursorY, '+', styleCursor)
		}
	}
}

func (ed *Editor) drawNode(i int, n flow.Node, set func(int, int, rune, tcell.Style)) {
	x, y, w, h := ed.view.nodeCells(n)
	style := styleNode
	if pos := chainPosition(ed.chain.Sequence(), n.ID); pos > 0 {
		style = styleNodeChain
	}
	if i == ed.selectedNode {
		style = styleNodeSel
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			r := ' '
			switch {
			case row == 0 && col == 0:
				r = '╭'
			case row == 0 && col == w-1:
				r = '╮'
			case row == h-1 && col == 0:
				r = '╰'
			case row == h-1 && col == w-1:
				r = '╯'
			case row == 0 || row == h-1:
				r = '─'
			case col == 0 || col == w-1:
				r = '│'
			}
			set(x+col, y+row, r, style)
		}
	}

	label := n.Data.Label
	if label == "" {
		label = n.ID
	}
	label = truncate(label, w-2)
	lx := x + (w-len([]rune(label)))/2
	for j, r := range []rune(label) {
		set(lx+j, y+h/2, r, style)
	}
	if pos := chainPosition(ed.chain.Sequence(), n.ID); pos > 0 {
		tag := strconv.Itoa(pos)
		for j, r := range tag {
			set(x+1+j, y, r, styleNodeChain)
		}
	}
}

// chainPosition is the 1-based place of id in seq, 0 when absent.
func chainPosition(seq []string, id string) int {
	for i, s := range seq {
		if s == id {
			return i + 1
		}
	}
	return 0
}

func (ed *Editor) drawSidebar(w, h int) {
	x := w - ed.sidebarWidth + 2
	for row := 0; row < h-2; row++ {
		ed.screen.SetContent(w-ed.sidebarWidth, row, '│', nil, styleBorder)
	}
	y := 0
	width := ed.sidebarWidth - 4

	title := "Flowchart"
	if ed.meta.Name != "" {
		title = ed.meta.Name
	}
	ed.drawString(x, y, truncate(title, width), styleSidebarH)
	y += 2

	ed.drawString(x, y, fmt.Sprintf("Nodes (%d):", len(ed.flow.Nodes)), styleSidebarH)
	y++
	for i, n := range ed.flow.Nodes {
		if y >= h-3 {
			ed.drawString(x, y, "  ...", styleSidebar)
			return
		}
		style := styleSidebar
		if i == ed.selectedNode {
			style = styleMenuSel
		}
		ed.drawString(x, y, truncate(fmt.Sprintf("  %s %s", n.ID, n.Data.Label), width), style)
		y++
	}
	y++

	ed.drawString(x, y, fmt.Sprintf("Edges (%d):", len(ed.flow.Edges)), styleSidebarH)
	y++
	for i, e := range ed.flow.Edges {
		if y >= h-3 {
			ed.drawString(x, y, "  ...", styleSidebar)
			return
		}
		style := styleSidebar
		if i == ed.selectedEdge {
			style = styleMenuSel
		}
		ed.drawString(x, y, truncate("  "+edgeSummary(e), width), style)
		y++
	}

	if ed.mode == ModeChain {
		y++
		ed.drawString(x, y, "Chain:", styleSidebarH)
		y++
		for i, id := range ed.chain.Sequence() {
			ed.drawString(x, y, truncate(fmt.Sprintf("  %d. %s", i+1, id), width), styleNodeChain)
			y++
		}
	}
}

func edgeSummary(e flow.Edge) string {
	if e.IsMultiSegment() {
		s := ""
		for i, id := range e.Sequence() {
			if i > 0 {
				s += "→"
			}
			s += id
		}
		if e.Data != nil && e.Data.IsDashed {
			s += " ┄"
		}
		return s
	}
	return fmt.Sprintf("%s→%s %s", e.Source, e.Target, e.Kind())
}

// messageInverted reports whether a flashing message is drawn inverted
// elapsed milliseconds after it appeared.
func messageInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= 500 {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

// messageFlashes reports whether a message type flashes when shown.
func messageFlashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		fileInfo = filepath.Base(ed.filename)
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if messageFlashes(ed.messageType) && messageInverted(time.Now().UnixMilli()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 60
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2
	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len([]rune(ed.inputPrompt)), boxY+1, ed.inputBuffer+"_", styleInput)
}

func (ed *Editor) drawFilePicker(w, h int) {
	totalW := min(80, w-4)
	dirW := totalW / 3
	boxH := min(20, h-4)
	x := (w - totalW) / 2
	y := (h - boxH) / 2

	ed.drawTitledBox(x, y, totalW, boxH, truncate(ed.currentDir, totalW-4))
	for i := 0; i < boxH-2 && i < len(ed.dirList); i++ {
		style := styleMenu
		if ed.filePickerFocus == 0 && i == ed.dirSelected {
			style = styleMenuSel
		}
		ed.drawString(x+2, y+1+i, truncate(ed.dirList[i]+"/", dirW-3), style)
	}
	for row := 1; row < boxH-1; row++ {
		ed.screen.SetContent(x+dirW, y+row, '│', nil, styleBorder)
	}
	if len(ed.fileList) == 0 {
		ed.drawString(x+dirW+2, y+1, "(no .flow or .json files)", styleHelp)
	}
	for i := 0; i < boxH-2 && i < len(ed.fileList); i++ {
		style := styleMenu
		if ed.filePickerFocus == 1 && i == ed.fileSelected {
			style = styleMenuSel
		}
		ed.drawString(x+dirW+2, y+1+i, truncate(ed.fileList[i], totalW-dirW-4), style)
	}
}

func (ed *Editor) drawList(w, h int, title string, items []string) {
	boxW := 50
	boxH := min(len(items)+4, h-2)
	x := (w - boxW) / 2
	y := max(0, (h-boxH)/2)
	ed.drawTitledBox(x, y, boxW, boxH, title)
	for i := 0; i < len(items) && i < boxH-4; i++ {
		style := styleMenu
		if i == ed.listSelected {
			style = styleMenuSel
		}
		ed.drawString(x+1, y+2+i, fmt.Sprintf(" %-*s", boxW-3, truncate(items[i], boxW-4)), style)
	}
}

func (ed *Editor) drawConnectSelector(w, h int) {
	var items []string
	for _, id := range ed.connectTargets {
		n, _ := ed.flow.Node(id)
		items = append(items, id+" "+n.Data.Label)
	}
	ed.drawList(w, h, "Connect to ("+string(ed.connectKind)+")", items)
}

func (ed *Editor) drawEdgeSelector(w, h int) {
	var items []string
	for _, e := range ed.flow.Edges {
		items = append(items, edgeSummary(e))
	}
	ed.drawList(w, h, "Delete edge", items)
}

func (ed *Editor) drawHelp(w, h int) {
	boxW := min(64, w-2)
	boxH := min(len(helpLines)+2, h-2)
	x := (w - boxW) / 2
	y := max(0, (h-boxH)/2)
	ed.drawTitledBox(x, y, boxW, boxH, "Help")
	for i := 0; i < boxH-2 && ed.helpScrollOffset+i < len(helpLines); i++ {
		ed.drawString(x+2, y+1+i, truncate(helpLines[ed.helpScrollOffset+i], boxW-4), styleMenu)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (ed *Editor) modeString() string {
	if ed.dragging {
		return "MOVE"
	}
	switch ed.mode {
	case ModeMenu:
		return "MENU"
	case ModeMove:
		return "MOVE"
	case ModeInput:
		return "INPUT"
	case ModeFilePicker:
		return "FILE SELECT"
	case ModeConnect:
		return "CONNECT"
	case ModeChain:
		return fmt.Sprintf("CHAIN (%d)", len(ed.chain.Sequence()))
	case ModeSelectEdge:
		return "DELETE EDGE"
	case ModeHelp:
		return "HELP"
	}
	return ""
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeMenu:
		return "↑↓:Select  Enter:Confirm  Esc:Canvas"
	case ModeCanvas:
		return "Enter:Add  Tab:Cycle  E:Label  G:Move  C:Connect  M:Chain  D:Del edge  Del:Del node  R:Export  ?:Help  Esc:Menu"
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case ModeFilePicker:
		return "↑↓:Select  Tab:Switch  Enter:Open  Esc:Cancel"
	case ModeConnect:
		return "↑↓:Select  K:Kind  Enter:Connect  Esc:Cancel"
	case ModeChain:
		return "Click/Space:Toggle node  Tab:Cycle  Enter:Finish  Esc:Cancel"
	case ModeSelectEdge:
		return "↑↓:Select  Enter:Delete  Esc:Cancel"
	case ModeMove:
		return "Arrows:Move  Enter/Esc:Done"
	}
	return "Ctrl+S:Save"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
