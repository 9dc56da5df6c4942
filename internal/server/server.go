// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/catalog"
	"github.com/HendryAvila/neurosym/internal/config"
	"github.com/HendryAvila/neurosym/internal/engine"
	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/prompts"
	"github.com/HendryAvila/neurosym/internal/resources"
	"github.com/HendryAvila/neurosym/internal/session"
	"github.com/HendryAvila/neurosym/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewEngine loads the configured catalogue and builds an engine for it.
// An empty catalog_path selects the embedded default catalogue.
func NewEngine(cfg *config.Config) (*engine.Engine, error) {
	var (
		c   *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		c, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}

	ev := expression.New(
		expression.WithPrecision(cfg.Precision),
		expression.WithCacheSize(cfg.CacheSize),
	)
	return engine.New(c, ev)
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function flushes the logger and must be called on
// shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleanup := func() { _ = logger.Sync() }

	// --- Create shared dependencies ---

	eng, err := NewEngine(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	sessions := session.NewManager(eng, logger.Named("session"))

	deps := tools.Deps{
		Sessions:       sessions,
		Engine:         eng,
		DefaultSession: cfg.DefaultSession,
		Logger:         logger.Named("tools"),
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"neurosym",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register checklist tools ---

	validateTool := tools.NewValidateTool(deps)
	s.AddTool(validateTool.Definition(), validateTool.Handle)

	skipTool := tools.NewSkipItemTool(deps)
	s.AddTool(skipTool.Definition(), skipTool.Handle)

	// --- Register formula tools ---

	createTool := tools.NewCreateFormulaTool(deps)
	s.AddTool(createTool.Definition(), createTool.Handle)

	evaluateTool := tools.NewEvaluateFormulaTool(deps)
	s.AddTool(evaluateTool.Definition(), evaluateTool.Handle)

	deleteTool := tools.NewDeleteFormulaTool(deps)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	// --- Register variable and status tools ---

	setVarsTool := tools.NewSetVariablesTool(deps)
	s.AddTool(setVarsTool.Definition(), setVarsTool.Handle)

	statusTool := tools.NewStatusTool(deps)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	resetTool := tools.NewResetSessionTool(deps)
	s.AddTool(resetTool.Definition(), resetTool.Handle)

	// --- Register prompts ---

	intakePrompt := prompts.NewIntakePrompt()
	s.AddPrompt(intakePrompt.Definition(), intakePrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(sessions, eng, cfg.DefaultSession)
	s.AddResource(resourceHandler.StateResource(), resourceHandler.HandleState)
	s.AddResource(resourceHandler.CatalogResource(), resourceHandler.HandleCatalog)

	logger.Info("server ready",
		zap.String("version", Version),
		zap.String("catalog", catalogName(cfg)),
		zap.Int("precision", cfg.Precision),
		zap.String("default_session", cfg.DefaultSession),
	)
	return s, cleanup, nil
}

func catalogName(cfg *config.Config) string {
	if cfg.CatalogPath == "" {
		return "embedded"
	}
	return cfg.CatalogPath
}

func serverInstructions() string {
	return `You have access to neurosym, a neuro-symbolic rule engine for strategic analysis reports.

## WHAT IT DOES

The engine checks a report's parameters against a fixed checklist (the
gatekeeper), derives numeric and text variables from the same parameters,
and evaluates arithmetic formulas over those variables. It is deterministic:
the same parameters always give the same checklist and the same values.

## WORKFLOW

1. Read neuro://catalog to learn the checklist items and the report fields they check.
2. Call neuro_validate with the report parameters every time they change.
   Use merge=true to add fields one at a time.
3. Use neuro_skip_item for optional items the user cannot answer yet.
   A skipped item stays skipped until its rule holds.
4. Call neuro_status to show the checklist, formulas and variable store.
5. Call neuro_reset_session to start a session over from the catalogue.

The readiness gate (PASSED / BLOCKED) is advice for you and the user.
The engine never refuses to evaluate formulas because the gate is blocked.

## FORMULAS

Formulas use numbers, variable names, + - * / ^ and parentheses. Nothing
else: no function calls, comparisons or strings. Results are rounded.

- neuro_create_formula registers a user formula. Formulas cannot be edited:
  delete and recreate to change one.
- neuro_evaluate_formula evaluates a formula or a draft expression. Pass
  variables to try "what if" values without changing the session.
- neuro_delete_formula removes a user formula. System formulas are permanent.
- neuro_set_variables adds test variables that survive later validations.
  Variables derived from the report (like revenue_score) cannot be set.

A formula that cannot be evaluated shows "Error". Use neuro_evaluate_formula
to see the reason, usually an undefined variable.

## SESSIONS

Every tool accepts session_id. Omit it to use the default session.
Sessions are independent and live in memory for the life of the server.`
}
