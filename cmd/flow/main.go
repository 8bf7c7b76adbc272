// Command flow is a CLI tool for working with flowchart diagrams.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ha1tch/flowchart-toolkit/pkg/api"
	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/flowfile"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

const usage = `flow - flowchart toolkit

Usage:
  flow <command> [options]

Commands:
  convert    Convert between formats (json, flow)
  dot        Generate Graphviz DOT output
  info       Show diagram information
  png        Render PNG
  route      Print routed connector geometry as JSON
  svg        Render SVG
  validate   Validate diagram file

Remote commands (--server URL, default $FLOW_API or http://localhost:5285/api):
  list       List stored diagrams
  get        Download a diagram's jsonData
  push       Upload a diagram
  delete     Delete a stored diagram
  export     Download a diagram's SVG

Examples:
  flow convert chart.json -o chart.flow
  flow svg chart.flow -o chart.svg
  flow dot chart.json | dot -Tpng -o chart.png
  flow push chart.flow --name "Order handling"
  flow export 3

Use "flow <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "convert":
		cmdConvert(args)
	case "dot":
		cmdDot(args)
	case "info":
		cmdInfo(args)
	case "png":
		cmdPNG(args)
	case "route":
		cmdRoute(args)
	case "svg":
		cmdSVG(args)
	case "validate":
		cmdValidate(args)
	case "list":
		cmdList(args)
	case "get":
		cmdGet(args)
	case "push":
		cmdPush(args)
	case "delete":
		cmdDelete(args)
	case "export":
		cmdExport(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// options holds the flags shared by the subcommands.
type options struct {
	output  string
	title   string
	name    string
	server  string
	pretty  bool
	noPrev  bool
	scale   float64
	rest    []string
	invalid string
}

func parseOptions(args []string) options {
	o := options{server: os.Getenv("FLOW_API"), scale: 1}
	for i := 0; i < len(args); i++ {
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch args[i] {
		case "-o", "--output":
			o.output = next()
		case "-t", "--title":
			o.title = next()
		case "-n", "--name":
			o.name = next()
		case "-s", "--server":
			o.server = next()
		case "--scale":
			v, err := strconv.ParseFloat(next(), 64)
			if err != nil || v <= 0 {
				o.invalid = "--scale needs a positive number"
			}
			o.scale = v
		case "--pretty":
			o.pretty = true
		case "--no-preview":
			o.noPrev = true
		default:
			o.rest = append(o.rest, args[i])
		}
	}
	return o
}

func need(o options, n int, usage string) {
	if o.invalid != "" {
		fmt.Fprintln(os.Stderr, o.invalid)
		os.Exit(1)
	}
	if len(o.rest) < n {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func mustLoad(path string) *flowfile.Document {
	doc, err := loadDocument(path)
	if err != nil {
		fail("Error loading %s: %v", path, err)
	}
	return doc
}

func writeOrPrint(output string, data []byte) {
	if output == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdConvert(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow convert <input> [-o output] [--pretty] [--no-preview]")

	input := o.rest[0]
	doc := mustLoad(input)

	output := o.output
	if output == "" {
		ext := filepath.Ext(input)
		base := strings.TrimSuffix(input, ext)
		if ext == ".flow" {
			output = base + ".json"
		} else {
			output = base + ".flow"
		}
	}

	var err error
	switch ext := filepath.Ext(output); ext {
	case ".flow":
		if doc.Meta.Name == "" {
			doc.Meta.Name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
		err = flowfile.WriteFlowFile(output, doc, flowfile.WriteOptions{Preview: !o.noPrev, SVG: flowfile.DefaultSVGOptions()})
	case ".json":
		var data []byte
		data, err = flowfile.ToJSON(doc.Flow, o.pretty)
		if err == nil {
			err = os.WriteFile(output, data, 0644)
		}
	default:
		fail("Unknown output format: %s", ext)
	}
	if err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdDot(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow dot <input> [-o output] [-t title]")
	doc := mustLoad(o.rest[0])
	writeOrPrint(o.output, []byte(flowfile.GenerateDOT(doc.Flow, titleFor(o, doc))))
}

func cmdSVG(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow svg <input> [-o output] [-t title]")
	doc := mustLoad(o.rest[0])
	opts := flowfile.DefaultSVGOptions()
	opts.Title = o.title
	writeOrPrint(o.output, []byte(flowfile.GenerateSVG(doc.Flow, opts)))
}

func cmdPNG(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow png <input> [-o output] [-t title] [--scale n]")
	input := o.rest[0]
	doc := mustLoad(input)
	output := o.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}
	opts := flowfile.DefaultPNGOptions()
	opts.Title = o.title
	opts.Scale = o.scale

	file, err := os.Create(output)
	if err != nil {
		fail("Error creating %s: %v", output, err)
	}
	if err := flowfile.RenderPNG(doc.Flow, file, opts); err != nil {
		file.Close()
		fail("Error rendering %s: %v", output, err)
	}
	if err := file.Close(); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdRoute(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow route <input> [-o output]")
	doc := mustLoad(o.rest[0])
	render := route.NewRouter().RouteAll(doc.Flow)
	data, err := json.MarshalIndent(render, "", "  ")
	if err != nil {
		fail("Error encoding routes: %v", err)
	}
	writeOrPrint(o.output, append(data, '\n'))
}

func cmdInfo(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow info <input>")
	doc := mustLoad(o.rest[0])
	f := doc.Flow

	if doc.Meta.Name != "" {
		fmt.Printf("Name:        %s\n", doc.Meta.Name)
	}
	if doc.Meta.Description != "" {
		fmt.Printf("Description: %s\n", doc.Meta.Description)
	}
	if !doc.Meta.Created.IsZero() {
		fmt.Printf("Created:     %s\n", doc.Meta.Created.Format(time.RFC3339))
	}
	fmt.Printf("Nodes:       %d\n", len(f.Nodes))
	fmt.Printf("Edges:       %d\n", len(f.Edges))

	kinds := map[flow.EdgeKind]int{}
	for _, e := range f.Edges {
		kinds[e.Kind()]++
	}
	for _, k := range []flow.EdgeKind{flow.KindSimple, flow.KindCurved, flow.KindStriped, flow.KindDoubleStriped, flow.KindMultiSegment} {
		if kinds[k] > 0 {
			fmt.Printf("  %-16s %d\n", k, kinds[k])
		}
	}
	fmt.Printf("Viewport:    (%g, %g) zoom %g\n", f.Viewport.X, f.Viewport.Y, f.Viewport.Zoom)
	if f.Timestamp != 0 {
		fmt.Printf("Saved:       %s\n", time.UnixMilli(f.Timestamp).Format(time.RFC3339))
	}
}

func cmdValidate(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow validate <input>")
	input := o.rest[0]
	doc := mustLoad(input)

	if err := doc.Flow.Validate(); err != nil {
		fail("Validation failed: %v", err)
	}
	problems := doc.Flow.Problems()
	for _, p := range problems {
		fmt.Printf("warning: %s\n", p)
	}
	fmt.Printf("%s: valid diagram with %d nodes, %d edges (%d warnings)\n",
		input, len(doc.Flow.Nodes), len(doc.Flow.Edges), len(problems))
}

func client(o options) *api.Client {
	return api.NewClient(o.server)
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		fail("Invalid diagram id: %s", s)
	}
	return id
}

func cmdList(args []string) {
	o := parseOptions(args)
	ds, err := client(o).List(context.Background())
	if err != nil {
		fail("Error listing diagrams: %v", err)
	}
	if len(ds) == 0 {
		fmt.Println("No diagrams")
		return
	}
	for _, d := range ds {
		svg := ""
		if d.HasSVG() {
			svg = " [svg]"
		}
		fmt.Printf("%4d  %-30s  %s%s\n", d.ID, d.Name, d.UpdatedAt.Local().Format("2006-01-02 15:04"), svg)
	}
}

func cmdGet(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow get <id> [-o output] [--pretty]")
	d, err := client(o).Get(context.Background(), parseID(o.rest[0]))
	if err != nil {
		fail("Error fetching diagram: %v", err)
	}
	f, err := d.Flow()
	if err != nil {
		fail("Stored diagram is not a flow: %v", err)
	}

	if filepath.Ext(o.output) == ".flow" {
		doc := &flowfile.Document{Meta: flowfile.Meta{Name: d.Name, Created: d.CreatedAt}, Flow: f}
		if d.Description != nil {
			doc.Meta.Description = *d.Description
		}
		if err := flowfile.WriteFlowFile(o.output, doc, flowfile.WriteOptions{Preview: !o.noPrev, SVG: flowfile.DefaultSVGOptions()}); err != nil {
			fail("Error writing %s: %v", o.output, err)
		}
		fmt.Printf("Written: %s\n", o.output)
		return
	}
	data, err := flowfile.ToJSON(f, o.pretty)
	if err != nil {
		fail("Error encoding diagram: %v", err)
	}
	writeOrPrint(o.output, append(data, '\n'))
}

func cmdPush(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow push <input> [-n name] [--no-preview]")
	input := o.rest[0]
	doc := mustLoad(input)

	name := o.name
	if name == "" {
		name = doc.Meta.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	svg := ""
	if !o.noPrev {
		svg = flowfile.GenerateSVG(doc.Flow, flowfile.DefaultSVGOptions())
	}
	d, err := client(o).Save(context.Background(), name, doc.Flow, svg)
	if err != nil {
		fail("Error uploading diagram: %v", err)
	}
	fmt.Printf("Created diagram %d: %s\n", d.ID, d.Name)
}

func cmdDelete(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow delete <id>")
	id := parseID(o.rest[0])
	if err := client(o).Delete(context.Background(), id); err != nil {
		fail("Error deleting diagram: %v", err)
	}
	fmt.Printf("Deleted diagram %d\n", id)
}

func cmdExport(args []string) {
	o := parseOptions(args)
	need(o, 1, "Usage: flow export <id> [-o output]")
	data, name, err := client(o).ExportSVG(context.Background(), parseID(o.rest[0]))
	if err != nil {
		fail("Error exporting diagram: %v", err)
	}
	output := o.output
	if output == "" {
		output = filepath.Base(name)
	}
	if output == "" || output == "." {
		output = "diagram.svg"
	}
	writeOrPrint(output, data)
}

func titleFor(o options, doc *flowfile.Document) string {
	if o.title != "" {
		return o.title
	}
	if doc.Meta.Name != "" {
		return doc.Meta.Name
	}
	return fmt.Sprintf("%d nodes, %d edges", len(doc.Flow.Nodes), len(doc.Flow.Edges))
}

func loadDocument(path string) (*flowfile.Document, error) {
	switch ext := filepath.Ext(path); ext {
	case ".flow":
		return flowfile.ReadFlowFile(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := flowfile.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return &flowfile.Document{Meta: flowfile.Meta{Version: flowfile.MetaVersion}, Flow: f}, nil
	default:
		return nil, fmt.Errorf("unknown file format: %s", ext)
	}
}
