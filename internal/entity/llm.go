package entity

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of an oracle prompt or of the dialogue history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type LLMChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type LLMChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type LLMChatResponse struct {
	ID      string          `json:"id"`
	Choices []LLMChatChoice `json:"choices"`
}

// ExtractedAnswer is the structured record the oracle returns for a field answer.
type ExtractedAnswer struct {
	Value      any      `json:"value"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}
