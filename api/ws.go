package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agentdesk/agentdesk/policy"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// InvokeWS upgrades to a websocket, reads one invocation request from the
// client, and relays the event stream as one text message per event.
// GET /v1/ws/invocations
func (h *Handler) InvokeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	var req InvokeRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeWSError(conn, "invalid invocation request")
		return nil
	}

	decision, err := h.policy.Evaluate(ctx, policy.Input{
		ActorID:   req.ActorID,
		SessionID: req.SessionID,
		Operation: policy.OperationInvoke,
	})
	if err != nil {
		writeWSError(conn, "policy evaluation failed")
		return nil
	}
	if decision != policy.DecisionAllow {
		writeWSError(conn, "operation blocked by policy")
		return nil
	}

	s, err := h.invoker.InvokeStream(ctx, req.Prompt, req.SessionID)
	if err != nil {
		log.Printf("ERROR: failed to start invocation: %v", err)
		writeWSError(conn, err.Error())
		return nil
	}
	defer s.Close()

	for {
		ev, err := s.Next(ctx)
		if err == io.EOF {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
		if err != nil {
			log.Printf("ERROR: invocation stream failed: %v", err)
			writeWSError(conn, err.Error())
			return nil
		}
		if err := conn.WriteMessage(websocket.TextMessage, ev.Raw); err != nil {
			return nil
		}
	}
}

func writeWSError(conn *websocket.Conn, message string) {
	conn.WriteJSON(map[string]interface{}{
		"type":  "serverErrorEvent",
		"error": map[string]string{"message": message},
	})
}
