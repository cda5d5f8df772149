package domain

// AgentDefinition is a configurable agent as served by the agent-definition
// service. Read-only from this module's perspective.
type AgentDefinition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SystemPrompt string   `json:"systemPrompt"`
	EnabledTools []string `json:"enabledTools"`
	ModelID      string   `json:"modelId,omitempty"`
}
