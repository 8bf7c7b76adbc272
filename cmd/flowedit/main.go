// Command flowedit is a TUI editor for flowchart diagrams.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/flowfile"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

// Editor holds all editor state
type Editor struct {
	screen      tcell.Screen
	flow        *flow.FlowData
	meta        flowfile.Meta
	filename    string
	modified    bool
	mode        Mode
	message     string
	messageType MessageType
	config      Config
	configPath  string

	ids      *flow.CounterIDs
	router   *route.Router
	render   route.Render // recomputed every frame
	autosave *flowfile.Autosave

	// Canvas state
	cursorX, cursorY int
	view             view

	// Selection
	selectedNode int // -1 = none
	selectedEdge int // -1 = none

	// Mouse drag
	dragging    bool
	dragNode    int
	dragOffsetX int
	dragOffsetY int
	lastButtons tcell.ButtonMask

	// Connect mode
	connectKind    flow.EdgeKind
	connectTargets []string

	// Chain mode
	chain flow.ChainBuilder

	// UI regions
	sidebarWidth int

	// Menu state
	menuItems    []string
	menuSelected int

	// List selector (connect targets, edges)
	listSelected int

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)
	inputCancel func()

	// File picker state
	fileList        []string
	fileSelected    int
	dirList         []string
	dirSelected     int
	currentDir      string
	filePickerFocus int // 0 = directories, 1 = files

	// Help scroll state
	helpScrollOffset int

	// Message flash state
	messageFlashStart int64 // Unix milliseconds when message was shown
}

// Mode represents editor mode
type Mode int

const (
	ModeMenu Mode = iota
	ModeCanvas
	ModeInput
	ModeFilePicker
	ModeConnect    // choosing a target for a new edge
	ModeChain      // collecting nodes for a multi-segment edge
	ModeSelectEdge // choosing an edge to delete
	ModeMove       // keyboard-driven node movement
	ModeHelp       // help overlay
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

func newEditor(cfg Config) *Editor {
	ed := &Editor{
		config:       cfg,
		configPath:   ConfigPath(),
		router:       route.NewRouter(),
		autosave:     flowfile.NewAutosave(cfg.AutosaveDir),
		selectedNode: -1,
		selectedEdge: -1,
		sidebarWidth: 30,
		connectKind:  flow.KindSimple,
		view:         view{cellW: cfg.CellWidth, cellH: cfg.CellHeight},
	}
	ed.setFlow(flow.InitialFlow())
	return ed
}

func main() {
	ed := newEditor(LoadConfig(ConfigPath()))

	if len(os.Args) > 1 {
		ed.filename = os.Args[1]
		if err := ed.loadFile(ed.filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ed.filename, err)
			os.Exit(1)
		}
	} else if f, ok, err := ed.autosave.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring autosave: %v\n", err)
	} else if ok {
		ed.setFlow(f)
		ed.message = "Restored autosaved diagram"
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed.screen = screen
	ed.updateMenuItems()
	ed.mode = ModeCanvas

	ed.run()

	screen.Fini()
}

// setFlow replaces the diagram and resets selection and id counters.
func (ed *Editor) setFlow(f *flow.FlowData) {
	ed.flow = f
	ed.ids = flow.NewCounterIDs(nextSeq(f))
	ed.selectedNode = -1
	ed.selectedEdge = -1
	ed.chain.Cancel()
	ed.view.offX = int(-f.Viewport.X) / ed.view.cellW
	ed.view.offY = int(-f.Viewport.Y) / ed.view.cellH
}

// changed marks the diagram dirty and autosaves it.
func (ed *Editor) changed() {
	ed.modified = true
	ed.flow.Viewport.X = float64(-ed.view.offX * ed.view.cellW)
	ed.flow.Viewport.Y = float64(-ed.view.offY * ed.view.cellH)
	if err := ed.autosave.Save(ed.flow); err != nil {
		ed.showMessage("Autosave failed: "+err.Error(), MsgWarning)
	}
}

func (ed *Editor) updateMenuItems() {
	exportLabel := "Export Type: SVG"
	if ed.config.ExportType == "png" {
		exportLabel = "Export Type: PNG"
	}
	ed.menuItems = []string{
		"New Diagram",
		"Open File",
		"Save",
		"Save As",
		"Edit Canvas",
		"Export",
		exportLabel,
		"Clear Autosave",
		"Quit",
	}
}

func (ed *Editor) run() {
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if ed.message != "" && ed.messageFlashStart > 0 {
				elapsed := time.Now().UnixMilli() - ed.messageFlashStart
				if elapsed >= 0 && elapsed < 700 {
					ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	for {
		ed.render = ed.router.RouteAll(ed.flow)
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Redraw only
		}
	}
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlS {
		ed.save()
		return false
	}

	switch ed.mode {
	case ModeMenu:
		return ed.handleMenuKey(ev)
	case ModeCanvas:
		return ed.handleCanvasKey(ev)
	case ModeInput:
		return ed.handleInputKey(ev)
	case ModeFilePicker:
		return ed.handleFilePickerKey(ev)
	case ModeConnect:
		return ed.handleConnectKey(ev)
	case ModeChain:
		return ed.handleChainKey(ev)
	case ModeSelectEdge:
		return ed.handleSelectEdgeKey(ev)
	case ModeMove:
		return ed.handleMoveKey(ev)
	case ModeHelp:
		return ed.handleHelpKey(ev)
	}
	return false
}

func (ed *Editor) handleMenuKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.menuSelected > 0 {
			ed.menuSelected--
		}
	case tcell.KeyDown:
		if ed.menuSelected < len(ed.menuItems)-1 {
			ed.menuSelected++
		}
	case tcell.KeyEnter:
		return ed.executeMenuItem()
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	}
	return false
}

func (ed *Editor) executeMenuItem() bool {
	item := ed.menuItems[ed.menuSelected]

	switch {
	case item == "New Diagram":
		ed.newDiagram()
	case item == "Open File":
		ed.openFilePicker()
	case item == "Save":
		ed.save()
	case item == "Save As":
		ed.saveAs()
	case item == "Edit Canvas":
		ed.mode = ModeCanvas
	case item == "Export":
		ed.export()
	case strings.HasPrefix(item, "Export Type:"):
		ed.toggleExportType()
	case item == "Clear Autosave":
		if err := ed.autosave.Clear(); err != nil {
			ed.showMessage("Failed to clear autosave: "+err.Error(), MsgError)
		} else {
			ed.showMessage("Autosave cleared", MsgSuccess)
		}
	case item == "Quit":
		if ed.modified && ed.filename != "" {
			ed.prompt("Unsaved changes. Quit anyway? (y/n): ", func(s string) {
				if strings.ToLower(s) == "y" {
					ed.screen.Fini()
					os.Exit(0)
				}
				ed.mode = ModeMenu
			})
		} else {
			return true
		}
	}
	return false
}

func (ed *Editor) toggleExportType() {
	if ed.config.ExportType == "svg" {
		ed.config.ExportType = "png"
		ed.showMessage("Export type set to PNG", MsgInfo)
	} else {
		ed.config.ExportType = "svg"
		ed.showMessage("Export type set to SVG", MsgInfo)
	}
	ed.updateMenuItems()
	if err := SaveConfig(ed.configPath, ed.config); err != nil {
		ed.showMessage("Failed to save config: "+err.Error(), MsgError)
	}
}

// panViewport moves the visible window; negative offsets are allowed.
func (ed *Editor) panViewport(dx, dy int) {
	ed.view.offX += dx
	ed.view.offY += dy
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	if ev.Modifiers()&tcell.ModShift != 0 {
		switch ev.Key() {
		case tcell.KeyUp:
			ed.panViewport(0, -1)
			return false
		case tcell.KeyDown:
			ed.panViewport(0, 1)
			return false
		case tcell.KeyLeft:
			ed.panViewport(-2, 0)
			return false
		case tcell.KeyRight:
			ed.panViewport(2, 0)
			return false
		}
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeMenu
		ed.selectedNode = -1
	case tcell.KeyUp:
		if ed.cursorY > 0 {
			ed.cursorY--
		}
	case tcell.KeyDown:
		ed.cursorY++
	case tcell.KeyLeft:
		if ed.cursorX > 0 {
			ed.cursorX--
		}
	case tcell.KeyRight:
		ed.cursorX++
	case tcell.KeyEnter:
		ed.addNodeAtCursor()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelectedNode()
	case tcell.KeyTab:
		ed.cycleSelection()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'c', 'C':
			ed.startConnect()
		case 'm', 'M':
			ed.startChain()
		case 'e', 'E':
			ed.editLabel()
		case 'd', 'D':
			ed.startDeleteEdge()
		case 'g', 'G':
			if i := ed.view.nodeAt(ed.flow, ed.cursorX, ed.cursorY); i >= 0 {
				ed.selectedNode = i
			}
			if ed.selectedNode >= 0 {
				ed.mode = ModeMove
				ed.showMessage("Move: arrows to move, Enter/Esc to finish", MsgInfo)
			} else {
				ed.showMessage("Select a node first (Tab to cycle)", MsgInfo)
			}
		case 'v', 'V':
			ed.runValidate()
		case 'r', 'R':
			ed.export()
		case 'h', 'H', '?':
			ed.helpScrollOffset = 0
			ed.mode = ModeHelp
		}
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if ed.inputCancel != nil {
			ed.inputCancel()
		} else {
			ed.mode = ModeCanvas
		}
	case tcell.KeyEnter:
		action := ed.inputAction
		buf := ed.inputBuffer
		ed.inputBuffer = ""
		ed.mode = ModeCanvas
		if action != nil {
			action(buf)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(ed.inputBuffer); len(r) > 0 {
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
	return false
}

// prompt asks for one line of text. Esc returns to the canvas.
func (ed *Editor) prompt(label string, action func(string)) {
	ed.inputPrompt = label
	ed.inputBuffer = ""
	ed.inputAction = action
	ed.inputCancel = nil
	ed.mode = ModeInput
}

func (ed *Editor) handleFilePickerKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeMenu
	case tcell.KeyTab:
		ed.filePickerFocus = 1 - ed.filePickerFocus
	case tcell.KeyLeft:
		ed.filePickerFocus = 0
	case tcell.KeyRight:
		ed.filePickerFocus = 1
	case tcell.KeyUp:
		if ed.filePickerFocus == 0 {
			if ed.dirSelected > 0 {
				ed.dirSelected--
			}
		} else if ed.fileSelected > 0 {
			ed.fileSelected--
		}
	case tcell.KeyDown:
		if ed.filePickerFocus == 0 {
			if ed.dirSelected < len(ed.dirList)-1 {
				ed.dirSelected++
			}
		} else if ed.fileSelected < len(ed.fileList)-1 {
			ed.fileSelected++
		}
	case tcell.KeyEnter:
		if ed.filePickerFocus == 0 {
			if len(ed.dirList) == 0 {
				break
			}
			selectedDir := ed.dirList[ed.dirSelected]
			if selectedDir == ".." {
				ed.currentDir = filepath.Dir(ed.currentDir)
			} else {
				ed.currentDir = filepath.Join(ed.currentDir, selectedDir)
			}
			ed.refreshFilePicker()
		} else if len(ed.fileList) > 0 {
			fullPath := filepath.Join(ed.currentDir, ed.fileList[ed.fileSelected])
			if err := ed.loadFile(fullPath); err != nil {
				ed.showMessage("Error: "+err.Error(), MsgError)
				break
			}
			ed.filename = fullPath
			ed.config.LastDir = ed.currentDir
			SaveConfig(ed.configPath, ed.config)
			ed.showMessage("Loaded: "+ed.filename, MsgSuccess)
			ed.mode = ModeCanvas
		}
	}
	return false
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && ed.lastButtons&tcell.Button1 == 0
	rightPressed := buttons&tcell.Button2 != 0 && ed.lastButtons&tcell.Button2 == 0
	ed.lastButtons = buttons

	w, _ := ed.screen.Size()
	if x >= w-ed.sidebarWidth {
		return
	}

	switch {
	case ed.dragging && buttons&tcell.Button1 != 0:
		if ed.dragNode >= 0 && ed.dragNode < len(ed.flow.Nodes) {
			pos := ed.view.toDiagram(x-ed.dragOffsetX, y-ed.dragOffsetY)
			ed.flow.Nodes[ed.dragNode].Position = pos
		}
	case ed.dragging:
		ed.dragging = false
		ed.changed()
	case pressed:
		ed.cursorX, ed.cursorY = x, y
		i := ed.view.nodeAt(ed.flow, x, y)
		if ed.mode == ModeChain {
			if i >= 0 {
				ed.chain.Toggle(ed.flow.Nodes[i].ID)
			}
			return
		}
		if ed.mode != ModeCanvas {
			return
		}
		ed.selectedNode = i
		if i >= 0 {
			nx, ny, _, _ := ed.view.nodeCells(ed.flow.Nodes[i])
			ed.dragging = true
			ed.dragNode = i
			ed.dragOffsetX, ed.dragOffsetY = x-nx, y-ny
		}
	case rightPressed && ed.mode == ModeCanvas:
		ed.cursorX, ed.cursorY = x, y
		ed.addNodeAtCursor()
	case buttons&tcell.WheelUp != 0:
		ed.panViewport(0, -1)
	case buttons&tcell.WheelDown != 0:
		ed.panViewport(0, 1)
	}
}

func (ed *Editor) newDiagram() {
	ed.setFlow(flow.InitialFlow())
	ed.meta = flowfile.Meta{}
	ed.filename = ""
	ed.modified = false
	ed.view.offX, ed.view.offY = 0, 0
	ed.changed()
	ed.mode = ModeCanvas
	ed.showMessage("New diagram", MsgSuccess)
}

func (ed *Editor) openFilePicker() {
	ed.currentDir = ed.config.LastDir
	if ed.currentDir == "" {
		ed.currentDir, _ = os.Getwd()
	}
	ed.refreshFilePicker()
	ed.mode = ModeFilePicker
}

func (ed *Editor) refreshFilePicker() {
	ed.dirList = []string{".."}
	ed.fileList = nil
	ed.dirSelected = 0
	ed.fileSelected = 0

	entries, err := os.ReadDir(ed.currentDir)
	if err != nil {
		ed.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			ed.dirList = append(ed.dirList, name)
			continue
		}
		switch filepath.Ext(name) {
		case ".flow", ".json":
			ed.fileList = append(ed.fileList, name)
		}
	}
	sort.Strings(ed.dirList[1:])
	sort.Strings(ed.fileList)
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.saveAs()
		return
	}
	if err := ed.saveFile(ed.filename); err != nil {
		ed.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	ed.showMessage("Saved: "+ed.filename, MsgSuccess)
}

func (ed *Editor) saveAs() {
	ed.prompt("Save as (.flow or .json): ", func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if filepath.Ext(s) == "" {
			s += ".flow"
		}
		ed.filename = s
		ed.save()
	})
}

func (ed *Editor) addNodeAtCursor() {
	pos := ed.view.toDiagram(ed.cursorX, ed.cursorY)
	n := ed.flow.AddNode(ed.ids, "", pos)
	ed.selectedNode = ed.flow.NodeIndex(n.ID)
	ed.changed()
	ed.showMessage("Added "+n.Data.Label, MsgSuccess)
}

func (ed *Editor) editLabel() {
	if ed.selectedNode < 0 {
		ed.showMessage("Select a node first (Tab to cycle)", MsgInfo)
		return
	}
	id := ed.flow.Nodes[ed.selectedNode].ID
	ed.prompt("Label: ", func(s string) {
		if err := ed.flow.SetLabel(id, s); err != nil {
			ed.showMessage("Error: "+err.Error(), MsgError)
			return
		}
		ed.changed()
	})
	ed.inputBuffer = ed.flow.Nodes[ed.selectedNode].Data.Label
}

func (ed *Editor) deleteSelectedNode() {
	if ed.selectedNode < 0 {
		return
	}
	n := ed.flow.Nodes[ed.selectedNode]
	ed.flow.RemoveNode(n.ID)
	ed.selectedNode = -1
	ed.changed()
	ed.showMessage("Deleted "+n.Data.Label, MsgSuccess)
}

func (ed *Editor) cycleSelection() {
	if len(ed.flow.Nodes) == 0 {
		return
	}
	ed.selectedNode = (ed.selectedNode + 1) % len(ed.flow.Nodes)
	x, y, _, _ := ed.view.nodeCells(ed.flow.Nodes[ed.selectedNode])
	ed.cursorX, ed.cursorY = x, y
}

func (ed *Editor) startConnect() {
	if ed.selectedNode < 0 {
		ed.showMessage("Select a source node first (Tab to cycle)", MsgInfo)
		return
	}
	src := ed.flow.Nodes[ed.selectedNode].ID
	ed.connectTargets = nil
	for _, n := range ed.flow.Nodes {
		if n.ID != src {
			ed.connectTargets = append(ed.connectTargets, n.ID)
		}
	}
	if len(ed.connectTargets) == 0 {
		ed.showMessage("No other nodes to connect to", MsgWarning)
		return
	}
	ed.listSelected = 0
	ed.mode = ModeConnect
}

func (ed *Editor) handleConnectKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyUp:
		if ed.listSelected > 0 {
			ed.listSelected--
		}
	case tcell.KeyDown:
		if ed.listSelected < len(ed.connectTargets)-1 {
			ed.listSelected++
		}
	case tcell.KeyRune:
		if ev.Rune() == 'k' || ev.Rune() == 'K' {
			ed.connectKind = nextKind(ed.connectKind)
		}
	case tcell.KeyEnter:
		ed.completeConnect()
	}
	return false
}

func (ed *Editor) completeConnect() {
	ed.mode = ModeCanvas
	src := ed.flow.Nodes[ed.selectedNode]
	dst, ok := ed.flow.Node(ed.connectTargets[ed.listSelected])
	if !ok {
		return
	}
	ports := route.ResolveHandles(src, dst, nil)
	e, err := ed.flow.Connect(src.ID, dst.ID, ports.SourceHandle, ports.TargetHandle, ed.connectKind)
	if err != nil {
		ed.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	ed.changed()
	ed.showMessage(fmt.Sprintf("Connected %s (%s)", e.ID, e.Kind()), MsgSuccess)
}

func (ed *Editor) startChain() {
	ed.chain.Cancel()
	ed.mode = ModeChain
	ed.showMessage("Chain: click or Space to add nodes, Enter to finish, Esc to cancel", MsgInfo)
}

func (ed *Editor) handleChainKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.chain.Cancel()
		ed.mode = ModeCanvas
		ed.showMessage("Chain cancelled", MsgInfo)
	case tcell.KeyUp:
		if ed.cursorY > 0 {
			ed.cursorY--
		}
	case tcell.KeyDown:
		ed.cursorY++
	case tcell.KeyLeft:
		if ed.cursorX > 0 {
			ed.cursorX--
		}
	case tcell.KeyRight:
		ed.cursorX++
	case tcell.KeyTab:
		ed.cycleSelection()
	case tcell.KeyEnter:
		if len(ed.chain.Sequence()) < 2 {
			ed.showMessage("Pick at least 2 nodes", MsgWarning)
			return false
		}
		ed.askChainOptions()
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			if i := ed.view.nodeAt(ed.flow, ed.cursorX, ed.cursorY); i >= 0 {
				ed.chain.Toggle(ed.flow.Nodes[i].ID)
			} else if ed.selectedNode >= 0 {
				ed.chain.Toggle(ed.flow.Nodes[ed.selectedNode].ID)
			}
		}
	}
	return false
}

// askChainOptions prompts for the captions and dash flag, then adds the
// chain. Esc at any prompt returns to node picking.
func (ed *Editor) askChainOptions() {
	back := func() { ed.mode = ModeChain }
	opts := ed.chain.Options()
	ed.prompt("Start label (optional): ", func(s string) {
		opts.StartLabel = strings.TrimSpace(s)
		ed.prompt("End label (optional): ", func(s string) {
			opts.EndLabel = strings.TrimSpace(s)
			ed.prompt("Dashed? (y/n): ", func(s string) {
				opts.Dashed = strings.ToLower(strings.TrimSpace(s)) == "y"
				ed.completeChain()
			})
			ed.inputCancel = back
		})
		ed.inputCancel = back
	})
	ed.inputCancel = back
}

func (ed *Editor) completeChain() {
	e, err := ed.chain.Confirm(ed.flow, ed.ids)
	ed.mode = ModeCanvas
	if err != nil {
		if errors.Is(err, flow.ErrShortSequence) {
			ed.showMessage("Pick at least 2 nodes", MsgWarning)
			ed.mode = ModeChain
			return
		}
		ed.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	ed.changed()
	ed.showMessage(fmt.Sprintf("Added %s through %d nodes", e.ID, len(e.Sequence())), MsgSuccess)
}

func (ed *Editor) startDeleteEdge() {
	if len(ed.flow.Edges) == 0 {
		ed.showMessage("No edges to delete", MsgInfo)
		return
	}
	ed.listSelected = 0
	ed.mode = ModeSelectEdge
}

func (ed *Editor) handleSelectEdgeKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.selectedEdge = -1
		ed.mode = ModeCanvas
	case tcell.KeyUp:
		if ed.listSelected > 0 {
			ed.listSelected--
		}
	case tcell.KeyDown:
		if ed.listSelected < len(ed.flow.Edges)-1 {
			ed.listSelected++
		}
	case tcell.KeyEnter:
		id := ed.flow.Edges[ed.listSelected].ID
		ed.flow.RemoveEdge(id)
		ed.selectedEdge = -1
		ed.mode = ModeCanvas
		ed.changed()
		ed.showMessage("Deleted edge "+id, MsgSuccess)
		return false
	}
	ed.selectedEdge = ed.listSelected
	return false
}

func (ed *Editor) handleMoveKey(ev *tcell.EventKey) bool {
	if ed.selectedNode < 0 {
		ed.mode = ModeCanvas
		return false
	}
	n := &ed.flow.Nodes[ed.selectedNode]
	dx, dy := 0.0, 0.0
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		ed.mode = ModeCanvas
		ed.changed()
		return false
	case tcell.KeyUp:
		dy = -float64(ed.view.cellH)
	case tcell.KeyDown:
		dy = float64(ed.view.cellH)
	case tcell.KeyLeft:
		dx = -float64(ed.view.cellW)
	case tcell.KeyRight:
		dx = float64(ed.view.cellW)
	}
	n.Position.X += dx
	n.Position.Y += dy
	return false
}

func (ed *Editor) handleHelpKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.helpScrollOffset > 0 {
			ed.helpScrollOffset--
		}
	case tcell.KeyDown:
		if ed.helpScrollOffset < len(helpLines)-1 {
			ed.helpScrollOffset++
		}
	default:
		ed.mode = ModeCanvas
	}
	return false
}

func (ed *Editor) runValidate() {
	if err := ed.flow.Validate(); err != nil {
		ed.showMessage("✗ "+err.Error(), MsgError)
		return
	}
	if problems := ed.flow.Problems(); len(problems) > 0 {
		ed.showMessage(fmt.Sprintf("✗ %d issue(s): %s", len(problems), problems[0]), MsgWarning)
		return
	}
	ed.showMessage("✓ Diagram is valid", MsgInfo)
}

// export writes an SVG or PNG beside the current file.
func (ed *Editor) export() {
	base := "diagram"
	if ed.filename != "" {
		base = strings.TrimSuffix(ed.filename, filepath.Ext(ed.filename))
	}
	path := base + "." + ed.config.ExportType
	var err error
	if ed.config.ExportType == "png" {
		var file *os.File
		if file, err = os.Create(path); err == nil {
			opts := flowfile.DefaultPNGOptions()
			opts.Title = ed.meta.Name
			opts.Router = ed.router
			err = flowfile.RenderPNG(ed.flow, file, opts)
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}
	} else {
		opts := flowfile.DefaultSVGOptions()
		opts.Title = ed.meta.Name
		opts.Router = ed.router
		err = os.WriteFile(path, []byte(flowfile.GenerateSVG(ed.flow, opts)), 0644)
	}
	if err != nil {
		ed.showMessage("Export failed: "+err.Error(), MsgError)
		return
	}
	ed.showMessage("Exported: "+path, MsgSuccess)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// File operations

func (ed *Editor) loadFile(path string) error {
	var doc *flowfile.Document
	switch ext := filepath.Ext(path); ext {
	case ".flow":
		var err error
		if doc, err = flowfile.ReadFlowFile(path); err != nil {
			return err
		}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := flowfile.ParseJSON(data)
		if err != nil {
			return err
		}
		doc = &flowfile.Document{Meta: flowfile.Meta{Version: flowfile.MetaVersion}, Flow: f}
	default:
		return fmt.Errorf("unknown format: %s", ext)
	}
	ed.setFlow(doc.Flow)
	ed.meta = doc.Meta
	ed.filename = path
	ed.modified = false
	return nil
}

func (ed *Editor) saveFile(path string) error {
	ed.flow.Viewport.X = float64(-ed.view.offX * ed.view.cellW)
	ed.flow.Viewport.Y = float64(-ed.view.offY * ed.view.cellH)
	switch filepath.Ext(path) {
	case ".json":
		data, err := flowfile.ToJSON(ed.flow, true)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		if ed.meta.Name == "" {
			ed.meta.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if ed.meta.Created.IsZero() {
			ed.meta.Created = time.Now().UTC()
		}
		doc := &flowfile.Document{Meta: ed.meta, Flow: ed.flow}
		opts := flowfile.WriteOptions{Preview: true, SVG: flowfile.DefaultSVGOptions()}
		opts.SVG.Router = ed.router
		return flowfile.WriteFlowFile(path, doc, opts)
	}
}
