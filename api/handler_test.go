package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agentdesk/agentdesk/config"
	"github.com/agentdesk/agentdesk/conversation"
	"github.com/agentdesk/agentdesk/domain"
	"github.com/agentdesk/agentdesk/policy"
	"github.com/agentdesk/agentdesk/registry"
	"github.com/agentdesk/agentdesk/store"
	"github.com/agentdesk/agentdesk/stream"
)

const testMemoryID = "mem"

type testEnv struct {
	handler *Handler
	store   *store.SQLiteStore
}

// newTestEnv wires a handler against in-memory collaborators: a :memory:
// event log, an NDJSON runtime stub, and an agent-definition stub.
func newTestEnv(t *testing.T, runtimeBody string, agentsHandler http.HandlerFunc) *testEnv {
	t.Helper()

	runtime := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(runtimeBody))
	}))
	t.Cleanup(runtime.Close)

	if agentsHandler == nil {
		agentsHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}
	}
	agentSrv := httptest.NewServer(agentsHandler)
	t.Cleanup(agentSrv.Close)

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cfg := &config.Config{
		MemoryID:        testMemoryID,
		EventPageSize:   10,
		SessionIDHeader: "X-Session-Id",
	}
	h := NewHandler(
		stream.NewClient(stream.Config{Endpoint: runtime.URL}),
		conversation.NewAssembler(db, testMemoryID, cfg.EventPageSize),
		registry.NewCache(registry.NewClient(agentSrv.URL, 0), 0, nil),
		engine,
		cfg,
	)
	return &testEnv{handler: h, store: db}
}

func seedConversationalEvent(t *testing.T, db *store.SQLiteStore, actorID, sessionID, eventID, role, text string, ts time.Time) {
	t.Helper()
	record := &domain.RawEventRecord{
		EventID:        eventID,
		EventTimestamp: ts,
		PayloadItems: []domain.PayloadItem{
			{Conversational: &domain.ConversationalItem{Role: role, Content: domain.TextContent{Text: text}}},
		},
	}
	if err := db.PutEvent(context.Background(), testMemoryID, actorID, sessionID, record); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}
}
