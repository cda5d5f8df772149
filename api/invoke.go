package api

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agentdesk/agentdesk/policy"
)

// InvokeRequest is the invocation request body.
type InvokeRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
	ActorID   string `json:"actor_id"`
}

// Invoke starts an agent invocation and relays its event stream to the
// client as NDJSON, one protocol event per line.
// POST /v1/invocations
func (h *Handler) Invoke(c echo.Context) error {
	ctx := c.Request().Context()

	var req InvokeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "prompt is required"})
	}
	if ok, err := h.authorize(c, req.ActorID, req.SessionID, policy.OperationInvoke); !ok {
		return err
	}

	s, err := h.invoker.InvokeStream(ctx, req.Prompt, req.SessionID)
	if err != nil {
		log.Printf("ERROR: failed to start invocation: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	defer s.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.Header().Set(h.config.SessionIDHeader, s.SessionID)
	resp.WriteHeader(http.StatusOK)

	for {
		ev, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Headers are already out; all we can do is log and cut the
			// stream short.
			log.Printf("ERROR: invocation stream failed: %v", err)
			return nil
		}
		if _, err := resp.Write(append(ev.Raw, '\n')); err != nil {
			return nil
		}
		resp.Flush()
	}
}
