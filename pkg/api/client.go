package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
	"github.com/ha1tch/flowchart-toolkit/pkg/store"
)

// DefaultBaseURL is where the editor expects the API.
const DefaultBaseURL = "http://localhost:5285/api"

// Error is a non-2xx response. It matches store.ErrNotFound for 404 and
// store.ErrInvalid for 400 under errors.Is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case store.ErrNotFound:
		return e.Status == http.StatusNotFound
	case store.ErrInvalid:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// Client talks to a diagram API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*http.Response, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode >= 300 {
		var eb errorBody
		json.Unmarshal(data, &eb)
		return resp, data, &Error{Status: resp.StatusCode, Message: eb.Message}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, data, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, data, nil
}

func (c *Client) List(ctx context.Context) ([]store.Diagram, error) {
	var out []store.Diagram
	_, _, err := c.do(ctx, http.MethodGet, "/diagrams", nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int64) (*store.Diagram, error) {
	var out store.Diagram
	if _, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/diagrams/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, req store.CreateRequest) (*store.Diagram, error) {
	var out store.Diagram
	if _, _, err := c.do(ctx, http.MethodPost, "/diagrams", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save creates a diagram from a live snapshot.
func (c *Client) Save(ctx context.Context, name string, f *flow.FlowData, svg string) (*store.Diagram, error) {
	req, err := store.NewCreateRequest(name, f)
	if err != nil {
		return nil, err
	}
	if svg != "" {
		req.SVGData = &svg
	}
	return c.Create(ctx, req)
}

func (c *Client) Update(ctx context.Context, id int64, req store.UpdateRequest) (*store.Diagram, error) {
	var out store.Diagram
	if _, _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/diagrams/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/diagrams/%d", id), nil, nil)
	return err
}

// ExportSVG downloads the diagram's SVG and its suggested file name.
func (c *Client) ExportSVG(ctx context.Context, id int64) ([]byte, string, error) {
	resp, data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/diagrams/%d/export-svg", id), nil, nil)
	if err != nil {
		return nil, "", err
	}
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return data, name, nil
}

// Routes fetches the server-side routing of a stored diagram.
func (c *Client) Routes(ctx context.Context, id int64) (route.Render, error) {
	var out route.Render
	_, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/diagrams/%d/routes", id), nil, &out)
	return out, err
}
