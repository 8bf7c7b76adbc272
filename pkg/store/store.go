// Package store keeps diagram records for the persistence API.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/flowfile"
)

// MaxNameLength is the longest accepted diagram name, in characters.
const MaxNameLength = 200

var (
	ErrNotFound = errors.New("diagram not found")
	ErrInvalid  = errors.New("invalid diagram")
)

// Diagram is a stored diagram record. JSONData holds a serialized
// flow.FlowData.
type Diagram struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	JSONData    string    `json:"jsonData"`
	SVGData     *string   `json:"svgData"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Flow decodes the stored snapshot.
func (d *Diagram) Flow() (*flow.FlowData, error) {
	return flowfile.ParseJSON([]byte(d.JSONData))
}

// HasSVG reports whether a rendered SVG was stored with the diagram.
func (d *Diagram) HasSVG() bool {
	return d.SVGData != nil && *d.SVGData != ""
}

// CreateRequest carries a new diagram. JSONData is any JSON value, normally
// a FlowData object.
type CreateRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	JSONData    json.RawMessage `json:"jsonData"`
	SVGData     *string         `json:"svgData,omitempty"`
}

// UpdateRequest changes selected fields. An empty Name keeps the old name;
// nil fields are left alone.
type UpdateRequest struct {
	Name        string          `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	JSONData    json.RawMessage `json:"jsonData,omitempty"`
	SVGData     *string         `json:"svgData,omitempty"`
}

// NewCreateRequest builds a request from a live snapshot.
func NewCreateRequest(name string, f *flow.FlowData) (CreateRequest, error) {
	data, err := flowfile.ToJSON(f, false)
	if err != nil {
		return CreateRequest{}, err
	}
	return CreateRequest{Name: name, JSONData: data}, nil
}

// Store persists diagram records.
type Store interface {
	// List returns every diagram, most recently updated first.
	List(ctx context.Context) ([]Diagram, error)
	Get(ctx context.Context, id int64) (*Diagram, error)
	Create(ctx context.Context, req CreateRequest) (*Diagram, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Diagram, error)
	Delete(ctx context.Context, id int64) error
}

// Clock returns the current time. Stores stamp records in UTC.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalid, MaxNameLength)
	}
	return nil
}

// encodeJSONData compacts a JSON payload for storage.
func encodeJSONData(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: jsonData is required", ErrInvalid)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("%w: jsonData: %v", ErrInvalid, err)
	}
	return buf.String(), nil
}

// newDiagram validates req and builds the record it describes.
func newDiagram(req CreateRequest, now time.Time) (*Diagram, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	data, err := encodeJSONData(req.JSONData)
	if err != nil {
		return nil, err
	}
	return &Diagram{
		Name:        req.Name,
		Description: req.Description,
		JSONData:    data,
		SVGData:     req.SVGData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// applyUpdate changes d in place. UpdatedAt always moves.
func applyUpdate(d *Diagram, req UpdateRequest, now time.Time) error {
	if req.Name != "" {
		if err := validateName(req.Name); err != nil {
			return err
		}
	}
	var data string
	if req.JSONData != nil {
		var err error
		if data, err = encodeJSONData(req.JSONData); err != nil {
			return err
		}
	}

	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Description != nil {
		d.Description = req.Description
	}
	if req.JSONData != nil {
		d.JSONData = data
	}
	if req.SVGData != nil {
		d.SVGData = req.SVGData
	}
	d.UpdatedAt = now
	return nil
}

func cloneDiagram(d *Diagram) *Diagram {
	c := *d
	if d.Description != nil {
		s := *d.Description
		c.Description = &s
	}
	if d.SVGData != nil {
		s := *d.SVGData
		c.SVGData = &s
	}
	return &c
}
