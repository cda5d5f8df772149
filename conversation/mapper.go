package conversation

import (
	"encoding/json"
	"log"

	"github.com/agentdesk/agentdesk/domain"
)

var imageMimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// MapBlocks converts decoded content blocks into renderable message
// contents, preserving order. Blocks of unknown type or missing required
// fields are skipped with a warning; the mapper never fails, so the output
// is at most as long as the input.
func MapBlocks(blocks []domain.ContentBlock) []domain.MessageContent {
	var contents []domain.MessageContent
	for _, block := range blocks {
		switch block.Type {
		case domain.BlockText:
			if block.Text == nil {
				log.Printf("WARN: skipping text block without text")
				continue
			}
			contents = append(contents, domain.TextMessageContent(*block.Text))

		case domain.BlockToolUse:
			if block.Name == "" || block.ToolUseID == "" || len(block.Input) == 0 {
				log.Printf("WARN: skipping incomplete tool use block")
				continue
			}
			contents = append(contents, domain.MessageContent{
				Type: domain.ContentToolUse,
				ToolUse: &domain.ToolUseContent{
					ID:                block.ToolUseID,
					Name:              block.Name,
					Input:             block.Input,
					Status:            "completed",
					OriginalToolUseID: block.ToolUseID,
				},
			})

		case domain.BlockToolResult:
			if block.ToolUseID == "" {
				log.Printf("WARN: skipping tool result block without toolUseId")
				continue
			}
			contents = append(contents, domain.MessageContent{
				Type: domain.ContentToolResult,
				ToolResult: &domain.ToolResultContent{
					ToolUseID: block.ToolUseID,
					Content:   stringifyContent(block.Content),
					IsError:   block.Status == "error",
				},
			})

		case domain.BlockImage:
			if block.Base64 == "" || block.Format == "" {
				log.Printf("WARN: skipping incomplete image block")
				continue
			}
			contents = append(contents, domain.MessageContent{
				Type: domain.ContentImage,
				Image: &domain.ImageContent{
					Base64:   block.Base64,
					MimeType: mimeTypeForFormat(block.Format),
				},
			})

		default:
			log.Printf("WARN: skipping unknown content block type %q", block.Type)
		}
	}
	return contents
}

func mimeTypeForFormat(format string) string {
	if mime, ok := imageMimeTypes[format]; ok {
		return mime
	}
	return "image/png"
}

// stringifyContent flattens a tool result payload to a string: a JSON string
// is unwrapped, anything else keeps its JSON text form.
func stringifyContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
