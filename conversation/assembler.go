package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/agentdesk/agentdesk/domain"
	"github.com/agentdesk/agentdesk/store"
)

// Assembler rebuilds ordered conversation messages from the event log.
// One assembler serves one memory resource; no state crosses sessions
// except the lazily resolved strategy id below.
type Assembler struct {
	log      store.EventLog
	memoryID string
	pageSize int

	// strategy id for long-term-memory namespaces: resolved once, never
	// invalidated.
	mu         sync.Mutex
	strategyID string
}

// NewAssembler creates an assembler over the given event log.
func NewAssembler(eventLog store.EventLog, memoryID string, pageSize int) *Assembler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Assembler{
		log:      eventLog,
		memoryID: memoryID,
		pageSize: pageSize,
	}
}

// GetSessionEvents loads the full event log for a session and folds it into
// chronologically ordered messages. Records missing a timestamp sort first
// (deterministic but arbitrary placement); the sort is stable so ties keep
// log order. An actor with no history yields an empty slice, not an error.
func (a *Assembler) GetSessionEvents(ctx context.Context, actorID, sessionID string) ([]domain.ConversationMessage, error) {
	records, err := a.listAll(ctx, actorID, sessionID, true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.ConversationMessage{}, nil
		}
		return nil, fmt.Errorf("failed to list session events: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EventTimestamp.Before(records[j].EventTimestamp)
	})

	messages := []domain.ConversationMessage{}
	for _, record := range records {
		for _, item := range record.PayloadItems {
			msg, ok := messageFromItem(record, item, len(messages))
			if ok {
				messages = append(messages, msg)
			}
		}
	}
	return messages, nil
}

// DeleteSession walks the session's event log and deletes every record.
// Individual delete failures are logged and skipped; the batch as a whole
// still succeeds.
func (a *Assembler) DeleteSession(ctx context.Context, actorID, sessionID string) error {
	records, err := a.listAll(ctx, actorID, sessionID, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to list session events: %w", err)
	}

	deleted := 0
	for _, record := range records {
		if err := a.log.DeleteEvent(ctx, a.memoryID, actorID, sessionID, record.EventID); err != nil {
			log.Printf("ERROR: failed to delete event %s: %v", record.EventID, err)
			continue
		}
		deleted++
	}
	log.Printf("deleted %d/%d events for session %s", deleted, len(records), sessionID)
	return nil
}

// LongTermNamespace builds the long-term-memory namespace for an actor. The
// strategy id is fetched on first use and cached for the assembler's
// lifetime.
func (a *Assembler) LongTermNamespace(ctx context.Context, actorID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.strategyID == "" {
		id, err := a.log.MemoryStrategyID(ctx, a.memoryID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve memory strategy: %w", err)
		}
		a.strategyID = id
	}
	return fmt.Sprintf("/strategies/%s/actors/%s", a.strategyID, actorID), nil
}

// listAll paginates the session log to exhaustion, one page after the other.
func (a *Assembler) listAll(ctx context.Context, actorID, sessionID string, includePayloads bool) ([]domain.RawEventRecord, error) {
	var records []domain.RawEventRecord
	token := ""
	for {
		page, err := a.log.ListEvents(ctx, store.EventQuery{
			MemoryID:        a.memoryID,
			ActorID:         actorID,
			SessionID:       sessionID,
			IncludePayloads: includePayloads,
			MaxResults:      a.pageSize,
			NextToken:       token,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, page.Events...)
		if page.NextToken == "" {
			return records, nil
		}
		token = page.NextToken
	}
}

// messageFromItem folds one payload item into a message. The bool result is
// false when the item contributes nothing (undecodable blob, non-content
// blob, empty item).
func messageFromItem(record domain.RawEventRecord, item domain.PayloadItem, position int) (domain.ConversationMessage, bool) {
	switch {
	case item.Conversational != nil:
		return domain.ConversationMessage{
			ID:        messageID(record, position),
			Type:      messageType(item.Conversational.Role),
			Contents:  []domain.MessageContent{domain.TextMessageContent(item.Conversational.Content.Text)},
			Timestamp: record.EventTimestamp,
		}, true

	case len(item.Blob) > 0:
		data := DecodeBlob(domain.ClassifyBlob(item.Blob))
		if data == nil {
			return domain.ConversationMessage{}, false
		}
		return domain.ConversationMessage{
			ID:        messageID(record, position),
			Type:      messageType(data.Role),
			Contents:  MapBlocks(data.Content),
			Timestamp: record.EventTimestamp,
		}, true

	default:
		return domain.ConversationMessage{}, false
	}
}

func messageID(record domain.RawEventRecord, position int) string {
	if record.EventID != "" {
		return record.EventID
	}
	return fmt.Sprintf("msg-%d", position)
}

// messageType translates a persisted role into a message type: USER (either
// the legacy uppercase form or the blob form) maps to user, anything else to
// assistant.
func messageType(role string) string {
	if strings.EqualFold(role, domain.MessageUser) {
		return domain.MessageUser
	}
	return domain.MessageAssistant
}
