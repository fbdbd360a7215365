package domain

// Message roles understood by every chat-completion provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single entry of an ordered LLM conversation.
type Message struct {
	Role    string
	Content string
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ModelConfig is a caller-scoped LLM provider selection.
// APIKey may be empty, in which case the provider's configured fallback key applies.
type ModelConfig struct {
	Provider string
	APIKey   string
}

// Connection holds per-call document store parameters. The store never caches
// or pools these across requests.
type Connection struct {
	URI    string
	DBName string
}
