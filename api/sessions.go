package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentdesk/agentdesk/policy"
)

// the handlers for clients to read back and manage conversation history

// GetSessionMessages returns the reconstructed conversation for a session.
// GET /v1/sessions/:session_id/messages?actor_id=...
func (h *Handler) GetSessionMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")
	actorID := c.QueryParam("actor_id")

	if ok, err := h.authorize(c, actorID, sessionID, policy.OperationRead); !ok {
		return err
	}

	messages, err := h.assembler.GetSessionEvents(ctx, actorID, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to load session %s: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// DeleteSession deletes all events of a session.
// DELETE /v1/sessions/:session_id?actor_id=...
func (h *Handler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")
	actorID := c.QueryParam("actor_id")

	if ok, err := h.authorize(c, actorID, sessionID, policy.OperationDelete); !ok {
		return err
	}

	if err := h.assembler.DeleteSession(ctx, actorID, sessionID); err != nil {
		log.Printf("ERROR: failed to delete session %s: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete session"})
	}

	return c.NoContent(http.StatusNoContent)
}
