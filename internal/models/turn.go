// ABOUTME: Turn represents a single message unit in a conversation
// ABOUTME: Core data structure shared by history, llm, and bot packages
package models

// Message roles as the completion API expects them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message with a role and text content. Immutable once created.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserTurn creates a user-role turn
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant-role turn
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
