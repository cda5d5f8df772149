package domain

import (
	"encoding/json"
	"time"
)

// RawEventRecord is one entry in the append-only conversation event log.
// Records are immutable once written; a session is deleted by deleting its
// records one by one. EventID is unique within an (actorID, sessionID) pair.
type RawEventRecord struct {
	EventID        string        `json:"eventId"`
	EventTimestamp time.Time     `json:"eventTimestamp"`
	PayloadItems   []PayloadItem `json:"payload,omitempty"`
}

// PayloadItem is one payload entry of an event record. Exactly one of
// Conversational or Blob is set; records written by older platform versions
// used the conversational form, newer ones carry an encoded blob.
type PayloadItem struct {
	Conversational *ConversationalItem `json:"conversational,omitempty"`
	Blob           json.RawMessage     `json:"blob,omitempty"`
}

// ConversationalItem is the legacy plain-text payload form.
type ConversationalItem struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// TextContent wraps the text of a conversational payload item.
type TextContent struct {
	Text string `json:"text"`
}

// BlobKind discriminates the wire representations a blob payload has
// accumulated over time.
type BlobKind int

const (
	// BlobUnsupported marks a wire value none of the known conversions accept.
	BlobUnsupported BlobKind = iota
	// BlobBytes is a raw byte array (oldest records).
	BlobBytes
	// BlobText is a string whose encoding is not yet known: either base64 of
	// the serialized content, or the serialized content itself.
	BlobText
)

// BlobValue is the tagged form of a raw blob payload as received from the
// event log, before decoding. Exactly one of Bytes or Text is meaningful,
// selected by Kind.
type BlobValue struct {
	Kind  BlobKind
	Bytes []byte
	Text  string
}

// BlobFromBytes tags a raw byte-array wire value.
func BlobFromBytes(b []byte) BlobValue {
	return BlobValue{Kind: BlobBytes, Bytes: b}
}

// BlobFromText tags a string wire value of unknown encoding.
func BlobFromText(s string) BlobValue {
	return BlobValue{Kind: BlobText, Text: s}
}

// ClassifyBlob converts the JSON wire form of a blob payload into its tagged
// representation. A JSON string becomes BlobText, a JSON array of numbers
// becomes BlobBytes, anything else is BlobUnsupported.
func ClassifyBlob(raw json.RawMessage) BlobValue {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return BlobFromText(s)
	}
	var nums []int
	if err := json.Unmarshal(raw, &nums); err == nil {
		b := make([]byte, len(nums))
		for i, n := range nums {
			b[i] = byte(n)
		}
		return BlobFromBytes(b)
	}
	return BlobValue{Kind: BlobUnsupported}
}

// BlobData is the decoded content of a blob payload item. Only blobs with
// MessageType "content" contribute to a conversation; anything else is
// discarded by the decoder.
type BlobData struct {
	MessageType string         `json:"messageType"`
	Role        string         `json:"role"`
	Content     []ContentBlock `json:"content"`
}

// Content block types understood by the mapper. Unknown types are skipped.
const (
	BlockText       = "textBlock"
	BlockToolUse    = "toolUseBlock"
	BlockToolResult = "toolResultBlock"
	BlockImage      = "imageBlock"
)

// ContentBlock is one unit of a turn's content inside a decoded blob.
// Fields are optional; which ones are required depends on Type.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      *string         `json:"text,omitempty"`
	Name      string          `json:"name,omitempty"`
	ToolUseID string          `json:"toolUseId,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Status    string          `json:"status,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	Base64    string          `json:"base64,omitempty"`
	Format    string          `json:"format,omitempty"`
}
