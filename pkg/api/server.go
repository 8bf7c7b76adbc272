// Package api serves diagram records over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ha1tch/flowchart-toolkit/pkg/flowfile"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
	"github.com/ha1tch/flowchart-toolkit/pkg/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// MsgNoSVG is returned when a diagram has no stored SVG to export.
const MsgNoSVG = "SVG data not available for this diagram"

// DiagramApi handles /api/diagrams.
type DiagramApi struct {
	Store  store.Store
	Router *route.Router

	// RenderSVG lets export-svg render from jsonData when no SVG was stored.
	RenderSVG bool

	mux *http.ServeMux
}

func NewDiagramApi(s store.Store) *DiagramApi {
	out := &DiagramApi{
		Store:  s,
		Router: route.NewRouter(),
		mux:    http.NewServeMux(),
	}
	out.setupRoutes()
	return out
}

func (a *DiagramApi) Handler() http.Handler {
	return a.mux
}

func (a *DiagramApi) setupRoutes() {
	a.mux.HandleFunc("GET /api/diagrams", a.list)
	a.mux.HandleFunc("POST /api/diagrams", a.create)
	a.mux.HandleFunc("GET /api/diagrams/{id}", a.get)
	a.mux.HandleFunc("PUT /api/diagrams/{id}", a.update)
	a.mux.HandleFunc("DELETE /api/diagrams/{id}", a.delete)
	a.mux.HandleFunc("POST /api/diagrams/{id}/export-svg", a.exportSVG)
	a.mux.HandleFunc("GET /api/diagrams/{id}/export-svg", a.exportSVG)
	a.mux.HandleFunc("GET /api/diagrams/{id}/routes", a.routes)
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeStoreError maps store failures to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Store failure", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid diagram id %q", raw))
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "can't read body: "+err.Error())
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (a *DiagramApi) list(w http.ResponseWriter, r *http.Request) {
	ds, err := a.Store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (a *DiagramApi) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := a.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *DiagramApi) create(w http.ResponseWriter, r *http.Request) {
	var req store.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := a.Store.Create(r.Context(), req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	slog.Info("Created diagram", "id", d.ID, "name", d.Name)
	w.Header().Set("Location", fmt.Sprintf("/api/diagrams/%d", d.ID))
	writeJSON(w, http.StatusCreated, d)
}

func (a *DiagramApi) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req store.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := a.Store.Update(r.Context(), id, req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *DiagramApi) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.Store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	slog.Info("Deleted diagram", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ExportFilename is the attachment name for a diagram's SVG.
func ExportFilename(name string) string {
	return strings.ReplaceAll(name, " ", "_") + "_diagram.svg"
}

func (a *DiagramApi) exportSVG(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := a.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var content string
	switch {
	case d.HasSVG():
		content = *d.SVGData
	case a.RenderSVG:
		f, err := d.Flow()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts := flowfile.DefaultSVGOptions()
		opts.Router = a.Router
		content = flowfile.GenerateSVG(f, opts)
	default:
		writeError(w, http.StatusBadRequest, MsgNoSVG)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": ExportFilename(d.Name)}))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, content)
}

func (a *DiagramApi) routes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := a.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	f, err := d.Flow()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.Router.RouteAll(f))
}
