package model

import "time"

// 对话角色
const (
	RoleSystem    = "system"
	RoleUserMsg   = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 是对话中的一条消息。
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation 是一次会话，仅保存在进程内存或 Redis 中。
type Conversation struct {
	ID        string        `json:"id"`
	UserID    uint          `json:"user_id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// ConversationSummary 是对话列表中的摘要，不包含完整消息。
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message"`
}

// ChatUsage 是上游返回的 token 用量。
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatReply 是一次问答的结果。
type ChatReply struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	Usage          ChatUsage `json:"usage"`
}
