// Package api provides HTTP handlers for the platform.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentdesk/agentdesk/config"
	"github.com/agentdesk/agentdesk/conversation"
	"github.com/agentdesk/agentdesk/policy"
	"github.com/agentdesk/agentdesk/registry"
	"github.com/agentdesk/agentdesk/stream"
)

// Handler handles HTTP requests.
type Handler struct {
	invoker   *stream.Client
	assembler *conversation.Assembler
	agents    *registry.Cache
	policy    *policy.Engine
	config    *config.Config
}

// NewHandler creates a new handler.
func NewHandler(invoker *stream.Client, assembler *conversation.Assembler, agents *registry.Cache, policyEngine *policy.Engine, cfg *config.Config) *Handler {
	return &Handler{
		invoker:   invoker,
		assembler: assembler,
		agents:    agents,
		policy:    policyEngine,
		config:    cfg,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Invocation
	e.POST("/v1/invocations", h.Invoke)
	e.GET("/v1/ws/invocations", h.InvokeWS)

	// Conversation history
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.DELETE("/v1/sessions/:session_id", h.DeleteSession)

	// Agent definitions (read-only)
	e.GET("/v1/agents", h.ListAgents)
	e.GET("/v1/agents/:agent_id", h.GetAgent)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// authorize evaluates the access policy and writes a 403 when blocked.
// Returns true when the request may proceed.
func (h *Handler) authorize(c echo.Context, actorID, sessionID, operation string) (bool, error) {
	decision, err := h.policy.Evaluate(c.Request().Context(), policy.Input{
		ActorID:   actorID,
		SessionID: sessionID,
		Operation: operation,
	})
	if err != nil {
		return false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "policy evaluation failed"})
	}
	if decision != policy.DecisionAllow {
		return false, c.JSON(http.StatusForbidden, map[string]string{"error": "operation blocked by policy"})
	}
	return true, nil
}
