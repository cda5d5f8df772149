package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/domain"
)

func TestGetSessionMessages(t *testing.T) {
	e := echo.New()
	env := newTestEnv(t, "", nil)

	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedConversationalEvent(t, env.store, "actor-1", "s1", "e1", "USER", "hello", ts)
	seedConversationalEvent(t, env.store, "actor-1", "s1", "e2", "ASSISTANT", "hi there", ts.Add(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/messages?actor_id=actor-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, env.handler.GetSessionMessages(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []domain.ConversationMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, domain.MessageUser, resp.Messages[0].Type)
	assert.Equal(t, "hello", resp.Messages[0].Contents[0].Text)
	assert.Equal(t, domain.MessageAssistant, resp.Messages[1].Type)
}

func TestGetSessionMessagesNewActor(t *testing.T) {
	e := echo.New()
	env := newTestEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/messages?actor_id=fresh", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, env.handler.GetSessionMessages(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []domain.ConversationMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestGetSessionMessagesBlockedWithoutActor(t *testing.T) {
	e := echo.New()
	env := newTestEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/messages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, env.handler.GetSessionMessages(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	e := echo.New()
	env := newTestEnv(t, "", nil)

	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedConversationalEvent(t, env.store, "actor-1", "s1", "e1", "USER", "hello", ts)
	seedConversationalEvent(t, env.store, "actor-1", "s1", "e2", "ASSISTANT", "hi", ts.Add(time.Second))

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/s1?actor_id=actor-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, env.handler.DeleteSession(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// A subsequent read sees an empty session.
	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/messages?actor_id=actor-1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, env.handler.GetSessionMessages(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []domain.ConversationMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}
