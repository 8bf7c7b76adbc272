package flowfile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// Archive member names.
const (
	memberFlow    = "flow.json"
	memberMeta    = "meta.yaml"
	memberPreview = "preview.svg"
)

// MetaVersion is the current meta.yaml format version.
const MetaVersion = 1

// ErrNoFlow is returned for archives without flow.json.
var ErrNoFlow = errors.New("flow.json not found in archive")

// Meta is the meta.yaml content.
type Meta struct {
	Version     int       `yaml:"version"`
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Created     time.Time `yaml:"created,omitempty"`
}

// Document is a diagram with its metadata, as stored in a .flow file.
type Document struct {
	Meta Meta
	Flow *flow.FlowData
}

// WriteOptions controls .flow output.
type WriteOptions struct {
	Preview bool // include preview.svg
	SVG     SVGOptions
}

// WriteFlowFile writes a document to a .flow file.
func WriteFlowFile(path string, doc *Document, opts WriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFlow(file, doc, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteFlow writes a document to a writer in .flow format.
func WriteFlow(w io.Writer, doc *Document, opts WriteOptions) error {
	zw := zip.NewWriter(w)

	data, err := ToJSON(doc.Flow, true)
	if err != nil {
		return err
	}
	if err := writeMember(zw, memberFlow, data); err != nil {
		return err
	}

	meta := doc.Meta
	if meta.Version == 0 {
		meta.Version = MetaVersion
	}
	metaData, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := writeMember(zw, memberMeta, metaData); err != nil {
		return err
	}

	if opts.Preview {
		svgOpts := opts.SVG
		if svgOpts.Title == "" {
			svgOpts.Title = meta.Name
		}
		if err := writeMember(zw, memberPreview, []byte(GenerateSVG(doc.Flow, svgOpts))); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeMember(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFlowFile reads a document from a .flow file.
func ReadFlowFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return ReadFlow(file, info.Size())
}

// ReadFlow reads a document from a reader containing .flow format.
// The preview is ignored; it is regenerated on every write.
func ReadFlow(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	var flowData, metaData []byte
	for _, f := range zr.File {
		if f.Name != memberFlow && f.Name != memberMeta {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if f.Name == memberFlow {
			flowData = data
		} else {
			metaData = data
		}
	}

	if flowData == nil {
		return nil, ErrNoFlow
	}
	fd, err := ParseJSON(flowData)
	if err != nil {
		return nil, err
	}

	doc := &Document{Flow: fd, Meta: Meta{Version: MetaVersion}}
	if metaData != nil {
		if err := yaml.Unmarshal(metaData, &doc.Meta); err != nil {
			return nil, fmt.Errorf("parse meta: %w", err)
		}
	}
	return doc, nil
}

// ReadFlowBytes reads a document from bytes in .flow format.
func ReadFlowBytes(data []byte) (*Document, error) {
	r := bytes.NewReader(data)
	return ReadFlow(r, int64(len(data)))
}
