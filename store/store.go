// Package store persists the append-only conversation event log.
package store

import (
	"context"
	"errors"

	"github.com/agentdesk/agentdesk/domain"
)

// ErrNotFound reports that the requested memory, actor, or session has no
// data. Readers treat it as an empty history (the new-user case).
var ErrNotFound = errors.New("not found")

// EventQuery selects one page of a session's event log.
type EventQuery struct {
	MemoryID        string
	ActorID         string
	SessionID       string
	IncludePayloads bool
	MaxResults      int
	NextToken       string
}

// EventPage is one page of records plus the continuation token for the next
// page; an empty token means the listing is exhausted.
type EventPage struct {
	Events    []domain.RawEventRecord
	NextToken string
}

// EventLog is the conversation event-log collaborator. Records are written
// once and never mutated; sessions are removed by deleting their records
// individually.
type EventLog interface {
	PutEvent(ctx context.Context, memoryID, actorID, sessionID string, record *domain.RawEventRecord) error
	ListEvents(ctx context.Context, q EventQuery) (*EventPage, error)
	DeleteEvent(ctx context.Context, memoryID, actorID, sessionID, eventID string) error

	// MemoryStrategyID resolves the long-term-memory strategy configured for
	// a memory resource, used for namespace construction.
	MemoryStrategyID(ctx context.Context, memoryID string) (string, error)
}
