// Package domain defines the core domain models for the platform.
package domain

import "encoding/json"

// Stream event types emitted by the agent runtime during a live invocation.
const (
	EventContentBlockDelta = "modelContentBlockDeltaEvent"
	EventContentBlockStart = "modelContentBlockStartEvent"
	EventAfterModelCall    = "afterModelCallEvent"
	EventServerCompletion  = "serverCompletionEvent"
	EventServerError       = "serverErrorEvent"
)

// AgentStreamEvent is one decoded NDJSON line from an invocation stream.
// Type is open-ended: events with an unrecognized type keep only Type and
// Raw so callers can ignore or inspect them.
type AgentStreamEvent struct {
	Type     string              `json:"type"`
	Delta    *ContentBlockDelta  `json:"delta,omitempty"`
	Start    *ContentBlockStart  `json:"start,omitempty"`
	Message  *ModelMessage       `json:"message,omitempty"`
	Metadata *CompletionMetadata `json:"metadata,omitempty"`
	Error    *ServerError        `json:"error,omitempty"`

	// Raw is the original line, retained for catch-all events.
	Raw json.RawMessage `json:"-"`
}

// ContentBlockDelta is the payload of a modelContentBlockDeltaEvent.
type ContentBlockDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ContentBlockStart is the payload of a modelContentBlockStartEvent.
type ContentBlockStart struct {
	Type  string `json:"type,omitempty"`
	Index int    `json:"index,omitempty"`
}

// ModelMessage is the full message carried by an afterModelCallEvent.
type ModelMessage struct {
	Role    string             `json:"role,omitempty"`
	Content []ModelMessagePart `json:"content,omitempty"`
}

// ModelMessagePart is one content part of a model message. Parts without
// text (tool calls in flight, reasoning traces) carry an empty Text.
type ModelMessagePart struct {
	Text string `json:"text,omitempty"`
}

// CompletionMetadata is the payload of a serverCompletionEvent.
type CompletionMetadata struct {
	RequestID          string `json:"requestId"`
	Duration           int64  `json:"duration"`
	SessionID          string `json:"sessionId"`
	ConversationLength int    `json:"conversationLength"`
}

// ServerError is the payload of a serverErrorEvent.
type ServerError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
