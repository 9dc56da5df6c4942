// Package resources implements MCP resource handlers for the rule engine.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (neuro://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/engine"
	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/session"
)

// Resource URIs.
const (
	StateURI   = "neuro://session/state"
	CatalogURI = "neuro://catalog"
)

// Handler manages rule engine resource endpoints.
type Handler struct {
	sessions       session.Store
	engine         *engine.Engine
	defaultSession string
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(sessions session.Store, eng *engine.Engine, defaultSession string) *Handler {
	return &Handler{sessions: sessions, engine: eng, defaultSession: defaultSession}
}

// StateResource returns the MCP resource definition for the default session.
func (h *Handler) StateResource() mcp.Resource {
	return mcp.NewResource(
		StateURI,
		"Session State",
		mcp.WithResourceDescription("Checklist, formulas, variable store and last report parameters of the default session"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleState returns the default session as JSON, with a readiness summary
// and the ids of every active session.
func (h *Handler) HandleState(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s := h.sessions.Get(h.defaultSession)
	payload := struct {
		session.Session
		Readiness readiness `json:"readiness"`
		Sessions  []string  `json:"sessions"`
	}{
		Session:   s,
		Readiness: newReadiness(h.engine, s.State),
		Sessions:  h.sessions.List(),
	}
	return jsonResource(req.Params.URI, payload)
}

// CatalogResource returns the MCP resource definition for the loaded catalogue.
func (h *Handler) CatalogResource() mcp.Resource {
	return mcp.NewResource(
		CatalogURI,
		"Engine Catalogue",
		mcp.WithResourceDescription("Checklist items, derived variable names and system formulas the engine was started with"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCatalog returns the engine's starting state and derived names as JSON.
func (h *Handler) HandleCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	initial := h.engine.NewState()
	payload := struct {
		Checklist        []checklist.Item  `json:"checklist"`
		Formulas         []formula.Formula `json:"formulas"`
		DerivedVariables []string          `json:"derived_variables"`
		Precision        int               `json:"precision"`
	}{
		Checklist:        initial.Checklist,
		Formulas:         initial.Formulas,
		DerivedVariables: h.engine.DerivedVariables(),
		Precision:        h.engine.Evaluator().Precision(),
	}
	return jsonResource(req.Params.URI, payload)
}

type readiness struct {
	Completion   int      `json:"completion"`
	GatePassed   bool     `json:"gate_passed"`
	GateFailures []string `json:"gate_failures"`
}

func newReadiness(eng *engine.Engine, state engine.State) readiness {
	sum := eng.Readiness(state)
	failures := make([]string, 0, len(sum.GateFailures))
	for _, it := range sum.GateFailures {
		failures = append(failures, it.ID)
	}
	return readiness{Completion: sum.Completion, GatePassed: sum.GatePassed, GateFailures: failures}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
