package domain

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	// RoleTool marks the result of an executed (or rejected) tool call.
	RoleTool Role = "tool"
)

// Message is a single entry in a conversation history.
// Histories are append-only; order is turn order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCall is set on assistant messages that request a tool invocation.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// ToolCallID links a tool-result message back to the originating call.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// IsError flags a tool-result message that reports a failure or rejection.
	IsError bool `json:"is_error,omitempty"`
}

// UserMessage builds a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant reply.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage builds a system directive or context message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ToolResultMessage builds the result entry for a tool call.
func ToolResultMessage(callID, content string, isError bool) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, IsError: isError}
}

// LastMessage returns the most recent message, or a zero Message if the
// history is empty.
func LastMessage(history []Message) Message {
	if len(history) == 0 {
		return Message{}
	}
	return history[len(history)-1]
}
