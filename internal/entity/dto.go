package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatJSON     ResultFormat = "json"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatJSON, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type ChatRequest struct {
	Message     string `json:"message"`
	ThreadID    string `json:"thread_id,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type ChatResponse struct {
	Response       string         `json:"response"`
	ThreadID       string         `json:"thread_id"`
	Phase          Phase          `json:"phase"`
	IsFinal        bool           `json:"is_final"`
	FinalSpec      map[string]any `json:"final_spec,omitempty"`
	ReasoningTrace []TraceSummary `json:"reasoning_trace,omitempty"`
}

type ConversationDTO struct {
	ThreadID        string           `json:"thread_id"`
	Phase           Phase            `json:"phase"`
	ScopeConfirmed  bool             `json:"scope_confirmed"`
	ConfirmedScope  string           `json:"confirmed_scope,omitempty"`
	ProjectStage    ProjectStage     `json:"project_stage,omitempty"`
	Platform        Platform         `json:"platform,omitempty"`
	ChallengeType   ChallengeType    `json:"challenge_type,omitempty"`
	CurrentField    string           `json:"current_field,omitempty"`
	RequiredFields  []string         `json:"required_fields"`
	CompletedFields []string         `json:"completed_fields"`
	UserResponses   map[string]any   `json:"user_responses"`
	ReasoningTraces []ReasoningTrace `json:"reasoning_traces"`
	Messages        []Message        `json:"messages"`
	IsFinal         bool             `json:"is_final"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type SchemaKey struct {
	Platform      Platform      `json:"platform"`
	ChallengeType ChallengeType `json:"challenge_type"`
}

type SchemaSummary struct {
	SchemaKey
	FieldCount    int      `json:"field_count"`
	RequiredCount int      `json:"required_count"`
	Fields        []string `json:"fields"`
}

type ListSchemasResponse struct {
	Schemas []SchemaSummary `json:"schemas"`
}

type DeleteConversationResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
