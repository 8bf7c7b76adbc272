package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/flowfile"
)

func TestParseOptions(t *testing.T) {
	o := parseOptions([]string{"in.json", "-o", "out.svg", "--pretty", "-t", "My title", "--scale", "2"})
	if len(o.rest) != 1 || o.rest[0] != "in.json" {
		t.Errorf("Unexpected positional args %v", o.rest)
	}
	if o.output != "out.svg" || o.title != "My title" || !o.pretty || o.scale != 2 {
		t.Errorf("Unexpected options %+v", o)
	}
	if o := parseOptions([]string{"--scale", "zero"}); o.invalid == "" {
		t.Error("Expected invalid scale to be reported")
	}
	if o := parseOptions([]string{"-o"}); o.output != "" {
		t.Errorf("Dangling flag should leave output empty, got %q", o.output)
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	data, err := flowfile.ToJSON(flow.InitialFlow(), true)
	if err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "chart.json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := loadDocument(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Flow.Nodes) != 2 {
		t.Errorf("Expected 2 nodes, got %d", len(doc.Flow.Nodes))
	}

	flowPath := filepath.Join(dir, "chart.flow")
	doc.Meta.Name = "Chart"
	if err := flowfile.WriteFlowFile(flowPath, doc, flowfile.WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	back, err := loadDocument(flowPath)
	if err != nil {
		t.Fatal(err)
	}
	if back.Meta.Name != "Chart" || titleFor(options{}, back) != "Chart" {
		t.Errorf("Unexpected meta %+v", back.Meta)
	}

	if _, err := loadDocument(filepath.Join(dir, "chart.txt")); err == nil {
		t.Error("Expected error for unknown extension")
	}
}
