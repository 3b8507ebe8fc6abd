package server

import (
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// FiltersResponse lists the filters, their domains and the condition prefixes.
type FiltersResponse struct {
	Filters       []engine.FilterDomain `json:"filters"`
	Prefixes      []string              `json:"prefixes"`
	DefaultPrefix string                `json:"default_prefix"`
}

// SelectionResponse is the initial selection for a fresh dashboard.
type SelectionResponse struct {
	Selection core.Selection `json:"selection"`
	Prefix    string         `json:"prefix"`
}

// QueryRequest selects rows. Selection and Where may be combined; Where
// entries ("column=value", "column=min:max") win on the same column.
type QueryRequest struct {
	Selection   core.Selection `json:"selection"`
	Where       []string       `json:"where"`
	Prefix      *string        `json:"prefix"`
	IncludeRows bool           `json:"include_rows"`
}

// QueryResponse is the result of one selection.
type QueryResponse struct {
	ID string `json:"id"`
	*engine.View
	Records []map[string]any `json:"records,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
