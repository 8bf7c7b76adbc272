package flowfile

// Run with: go test -fuzz=FuzzParseJSON -fuzztime=30s ./pkg/flowfile/

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

const fuzzSeedFlow = `{"nodes":[{"id":"1","position":{"x":0,"y":0},"data":{"label":"A"}},{"id":"2","position":{"x":300,"y":150},"data":{"label":"B"}}],` +
	`"edges":[{"id":"e","source":"1","target":"2","sourceHandle":"bottom","targetHandle":"top","type":"striped"},` +
	`{"id":"multi-1","source":"1","target":"2","type":"multi-segment","data":{"nodeSequence":["1","2"],"startLabel":"go","isDashed":true}}],` +
	`"viewport":{"x":0,"y":0,"zoom":1}}`

// FuzzParseJSON tests the JSON parser with arbitrary input.
func FuzzParseJSON(f *testing.F) {
	f.Add([]byte(fuzzSeedFlow))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`null`))
	f.Add([]byte(``))
	f.Add([]byte(`{"nodes":[{"id":"1"}],"edges":[{"id":"x","source":"1","target":"9"}]}`))
	f.Add([]byte(`{"edges":[{"id":"m","type":"multi-segment","data":{"nodeSequence":[]}}]}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		fl, err := ParseJSON(data)
		if err == nil && fl != nil {
			_, _ = ToJSON(fl, false)
			_, _ = ToJSON(fl, true)
		}
	})
}

// FuzzFlowArchive tests .flow reading with arbitrary bytes.
func FuzzFlowArchive(f *testing.F) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create(memberFlow)
	w.Write([]byte(fuzzSeedFlow))
	zw.Close()
	f.Add(buf.Bytes())

	buf.Reset()
	zw = zip.NewWriter(&buf)
	zw.Close()
	f.Add(buf.Bytes())

	f.Add([]byte{})
	f.Add([]byte{0x50, 0x4B, 0x03, 0x04}) // ZIP magic
	f.Add([]byte("not a zip"))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = ReadFlowBytes(data)
	})
}

// FuzzRouteAndRender tests routing and SVG output with arbitrary diagrams
// and router settings.
func FuzzRouteAndRender(f *testing.F) {
	f.Add([]byte(fuzzSeedFlow), 30.0, 20.0)
	f.Add([]byte(fuzzSeedFlow), 0.0, 0.0)
	f.Add([]byte(fuzzSeedFlow), -5.0, 1e6)
	f.Add([]byte(`{"nodes":[{"id":"1","position":{"x":0,"y":0},"measured":{"width":0,"height":0}}],"edges":[{"id":"m","type":"multi-segment","data":{"nodeSequence":["1","1","<script>"]}}]}`), 30.0, 20.0)

	f.Fuzz(func(t *testing.T, data []byte, shift, kick float64) {
		fl, err := ParseJSON(data)
		if err != nil || fl == nil {
			return
		}
		r := route.NewRouter()
		r.BaseShift = shift
		r.Path.KickOff = kick

		// Should not panic
		svg := GenerateSVG(fl, SVGOptions{Router: r})
		if !strings.Contains(svg, "<svg") {
			t.Error("Generated SVG doesn't contain <svg tag")
		}
		_ = GenerateDOT(fl, "fuzz")
	})
}
