package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/internal/plot"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handlers provides the HTTP handlers of the API.
type Handlers struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{engine: eng, logger: logger}
}

// Health reports that the server is up.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Filters returns every filter with its resolved domain.
func (h *Handlers) Filters(w http.ResponseWriter, r *http.Request) {
	domains, err := h.engine.ListFilters(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	prefixes := h.engine.Results().ConditionPrefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	writeJSON(w, http.StatusOK, FiltersResponse{
		Filters:       domains,
		Prefixes:      prefixes,
		DefaultPrefix: h.engine.DefaultPrefix(),
	})
}

// DefaultSelection returns the selection a fresh dashboard starts from.
func (h *Handlers) DefaultSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.engine.DefaultSelection(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{Selection: sel, Prefix: h.engine.DefaultPrefix()})
}

// Query applies a selection and returns the parameters, statistics and
// plot descriptor. No matching rows is a 200 with "empty": true.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	req, view, err := h.run(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := QueryResponse{ID: uuid.NewString(), View: view}
	if req.IncludeRows {
		resp.Records = view.Table.Records()
	}
	h.logger.Debug("query answered", "id", resp.ID, "rows", view.Rows, "prefix", view.Prefix)
	writeJSON(w, http.StatusOK, resp)
}

// PlotPNG renders the comparison figure for a selection.
func (h *Handlers) PlotPNG(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.run(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if view.Empty {
		h.writeError(w, core.ErrEmptyInput)
		return
	}
	if view.Plot == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no plot configured", Code: "no_plot"})
		return
	}

	var buf bytes.Buffer
	if err := plot.RenderPNG(&buf, view.Plot); err != nil {
		h.writeError(w, fmt.Errorf("failed to render plot: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Computation-Id", uuid.NewString())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// run decodes the request and evaluates it.
func (h *Handlers) run(w http.ResponseWriter, r *http.Request) (*QueryRequest, *engine.View, error) {
	var req QueryRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, &requestError{err: fmt.Errorf("invalid request body: %w", err)}
	}

	ctx := r.Context()
	domains, err := h.engine.ListFilters(ctx)
	if err != nil {
		return nil, nil, err
	}

	sel, err := engine.ResolveSelection(domains, req.Selection)
	if err != nil {
		return nil, nil, err
	}
	where, err := engine.ParseAssignments(domains, req.Where)
	if err != nil {
		return nil, nil, err
	}
	for column, c := range where {
		sel[column] = c
	}

	prefix := h.engine.DefaultPrefix()
	if req.Prefix != nil {
		prefix = *req.Prefix
	}

	view, err := h.engine.Run(ctx, sel, prefix)
	if err != nil {
		return nil, nil, err
	}
	return &req, view, nil
}

// requestError marks a malformed request.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// statusFor maps an error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, core.ErrInvalidRange):
		return http.StatusUnprocessableEntity, "invalid_range"
	case errors.Is(err, core.ErrValueNotInDomain):
		return http.StatusUnprocessableEntity, "value_not_in_domain"
	case errors.Is(err, core.ErrEmptyInput):
		return http.StatusUnprocessableEntity, "empty_input"
	case errors.Is(err, core.ErrSelectionShape):
		return http.StatusUnprocessableEntity, "invalid_selection"
	case errors.Is(err, core.ErrNonNumeric):
		return http.StatusUnprocessableEntity, "non_numeric"
	case errors.Is(err, core.ErrInvalidPrefix):
		return http.StatusBadRequest, "invalid_prefix"
	case errors.Is(err, core.ErrUnknownColumn):
		return http.StatusBadRequest, "unknown_column"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
