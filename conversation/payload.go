// Package conversation reconstructs ordered multi-turn messages from the
// append-only event log.
package conversation

import (
	"encoding/base64"
	"encoding/json"
	"log"

	"github.com/agentdesk/agentdesk/domain"
)

// DecodeBlob normalizes one tagged blob payload into its decoded content.
// Persisted payloads have accumulated several encodings over time, so the
// decoder layers fallbacks instead of trusting any single one: raw bytes are
// taken as UTF-8; a string is base64-decoded first (the common transport
// encoding) and treated as already-decoded JSON when that does not yield
// parseable JSON. A value that cannot be decoded, fails to parse, or carries
// a messageType other than "content" contributes nothing: the result is nil,
// never an error, so one bad record cannot abort a session load.
func DecodeBlob(v domain.BlobValue) *domain.BlobData {
	var text string
	switch v.Kind {
	case domain.BlobBytes:
		text = string(v.Bytes)
	case domain.BlobText:
		if decoded, err := base64.StdEncoding.DecodeString(v.Text); err == nil && json.Valid(decoded) {
			text = string(decoded)
		} else {
			text = v.Text
		}
	default:
		log.Printf("WARN: unsupported blob payload kind %d", v.Kind)
		return nil
	}

	var data domain.BlobData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		log.Printf("WARN: failed to parse blob payload: %v", err)
		return nil
	}
	if data.MessageType != "content" {
		return nil
	}
	return &data
}
