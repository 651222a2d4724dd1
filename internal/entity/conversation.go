package entity

import (
	"fmt"
	"time"
)

// Phase is the stage of the conversation state machine.
type Phase string

const (
	PhaseScoping         Phase = "SCOPING"          // Narrowing the user goal into a bounded scope
	PhaseSchemaSelection Phase = "SCHEMA_SELECTION" // Choosing platform and challenge type
	PhaseSchemaLoading   Phase = "SCHEMA_LOADING"   // Resolving the field schema for the selected pair
	PhaseFieldQuestions  Phase = "FIELD_QUESTIONS"  // Asking about schema fields one at a time
	PhaseSpecGeneration  Phase = "SPEC_GENERATION"  // All fields collected, final spec pending
	PhaseDone            Phase = "DONE"             // Final spec produced
)

func (p Phase) Validate() error {
	switch p {
	case PhaseScoping, PhaseSchemaSelection, PhaseSchemaLoading,
		PhaseFieldQuestions, PhaseSpecGeneration, PhaseDone:
		return nil
	default:
		return fmt.Errorf("unknown phase: %s", p)
	}
}

// ProjectStage is an advisory hint detected in scoping replies.
type ProjectStage string

const (
	ProjectStageIdea        ProjectStage = "idea"
	ProjectStageDesign      ProjectStage = "design"
	ProjectStageDevelopment ProjectStage = "development"
	ProjectStageTesting     ProjectStage = "testing"
	ProjectStagePOC         ProjectStage = "poc"
	ProjectStageExisting    ProjectStage = "existing"
)

// ConfirmedScopeKey is the user_responses key holding the confirmed scope description.
const ConfirmedScopeKey = "confirmed_scope"

// IsReservedResponseKey reports whether key is written by the conversation
// itself and so cannot be declared as a schema field.
func IsReservedResponseKey(key string) bool {
	return key == ConfirmedScopeKey
}

// ReasoningTrace records how a value attached to the specification was derived.
// Confidence is nil for user-stated facts.
type ReasoningTrace struct {
	Field      string   `json:"field"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
	Reasoning  string   `json:"reasoning"`
	Value      any      `json:"value,omitempty"`
}

// TraceSummary is the externally visible part of a reasoning trace.
type TraceSummary struct {
	Field      string   `json:"field"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence"`
}

// ConversationState is the persisted unit of a single conversation thread.
type ConversationState struct {
	ThreadID        string           `json:"thread_id"`
	Phase           Phase            `json:"phase"`
	UserResponses   map[string]any   `json:"user_responses"`
	ScopeConfirmed  bool             `json:"scope_confirmed"`
	ProjectStage    ProjectStage     `json:"project_stage,omitempty"`
	Platform        Platform         `json:"platform,omitempty"`
	ChallengeType   ChallengeType    `json:"challenge_type,omitempty"`
	Schema          *FieldSchema     `json:"schema_snapshot,omitempty"`
	RequiredFields  []string         `json:"required_fields"`
	CompletedFields []string         `json:"completed_fields"`
	CurrentField    string           `json:"current_field,omitempty"`
	ReasoningTraces []ReasoningTrace `json:"reasoning_traces"`
	Messages        []Message        `json:"messages"`
	IsFinal         bool             `json:"is_final"`
	FinalSpec       *FinalSpec       `json:"final_spec,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewConversationState returns an empty state in the SCOPING phase.
func NewConversationState(threadID string) ConversationState {
	now := time.Now().UTC()
	return ConversationState{
		ThreadID:        threadID,
		Phase:           PhaseScoping,
		UserResponses:   map[string]any{},
		RequiredFields:  []string{},
		CompletedFields: []string{},
		ReasoningTraces: []ReasoningTrace{},
		Messages:        []Message{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a copy that shares no mutable containers with s.
// The schema snapshot and the final spec are immutable and stay shared.
func (s ConversationState) Clone() ConversationState {
	c := s

	c.UserResponses = make(map[string]any, len(s.UserResponses))
	for k, v := range s.UserResponses {
		c.UserResponses[k] = v
	}

	c.RequiredFields = append([]string{}, s.RequiredFields...)
	c.CompletedFields = append([]string{}, s.CompletedFields...)
	c.ReasoningTraces = append([]ReasoningTrace{}, s.ReasoningTraces...)
	c.Messages = append([]Message{}, s.Messages...)

	return c
}

// IsCompleted reports whether field has already been answered.
func (s *ConversationState) IsCompleted(field string) bool {
	for _, f := range s.CompletedFields {
		if f == field {
			return true
		}
	}
	return false
}

// ConfirmedScope returns the confirmed scope description, if any.
func (s *ConversationState) ConfirmedScope() string {
	if v, ok := s.UserResponses[ConfirmedScopeKey].(string); ok {
		return v
	}
	return ""
}

// FinalSpec is the specification produced once every field has been collected.
type FinalSpec struct {
	ThreadID       string         `json:"thread_id"`
	Platform       Platform       `json:"platform,omitempty"`
	ChallengeType  ChallengeType  `json:"challenge_type,omitempty"`
	Scope          string         `json:"scope,omitempty"`
	ProjectStage   ProjectStage   `json:"project_stage,omitempty"`
	FieldOrder     []string       `json:"field_order"`
	Fields         map[string]any `json:"fields"`
	ReasoningTrace []TraceSummary `json:"reasoning_trace"`
}
