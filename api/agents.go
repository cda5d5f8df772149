package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentdesk/agentdesk/registry"
)

// GetAgent returns one agent definition.
// GET /v1/agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("agent_id")

	agent, err := h.agents.GetAgent(ctx, agentID)
	if errors.Is(err, registry.ErrAgentNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
	}
	if err != nil {
		log.Printf("ERROR: failed to get agent %s: %v", agentID, err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "agent definition service unavailable"})
	}

	return c.JSON(http.StatusOK, agent)
}

// ListAgents returns all agent definitions.
// GET /v1/agents
func (h *Handler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	agents, err := h.agents.ListAgents(ctx)
	if err != nil {
		log.Printf("ERROR: failed to list agents: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "agent definition service unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents": agents,
	})
}
