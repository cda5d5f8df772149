package domain

import (
	"encoding/json"
	"time"
)

// Message content types.
const (
	ContentText       = "text"
	ContentToolUse    = "toolUse"
	ContentToolResult = "toolResult"
	ContentImage      = "image"
)

// Message types (the side of the conversation a message belongs to).
const (
	MessageUser      = "user"
	MessageAssistant = "assistant"
)

// ConversationMessage is one reconstructed turn of a conversation,
// built from exactly one event-log record.
type ConversationMessage struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Contents  []MessageContent `json:"contents"`
	Timestamp time.Time        `json:"timestamp"`
}

// MessageContent is one renderable unit of a message. Type selects which
// of the payload fields is set.
type MessageContent struct {
	Type       string             `json:"type"`
	Text       string             `json:"text,omitempty"`
	ToolUse    *ToolUseContent    `json:"toolUse,omitempty"`
	ToolResult *ToolResultContent `json:"toolResult,omitempty"`
	Image      *ImageContent      `json:"image,omitempty"`
}

// ToolUseContent describes a tool invocation made by the assistant.
type ToolUseContent struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Input             json.RawMessage `json:"input"`
	Status            string          `json:"status"`
	OriginalToolUseID string          `json:"originalToolUseId,omitempty"`
}

// ToolResultContent describes the outcome of a tool invocation.
type ToolResultContent struct {
	ToolUseID string `json:"toolUseId"`
	Content   string `json:"content"`
	IsError   bool   `json:"isError"`
}

// ImageContent is an inline image, base64-encoded for UI rendering.
type ImageContent struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// TextMessageContent builds a plain text content unit.
func TextMessageContent(text string) MessageContent {
	return MessageContent{Type: ContentText, Text: text}
}
