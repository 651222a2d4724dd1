package session

import "github.com/futig/spec-copilot/internal/entity"

func toChatResponse(state *entity.ConversationState, reply string) *entity.ChatResponse {
	resp := &entity.ChatResponse{
		Response: reply,
		ThreadID: state.ThreadID,
		Phase:    state.Phase,
		IsFinal:  state.IsFinal,
	}

	if state.IsFinal && state.FinalSpec != nil {
		resp.FinalSpec = state.FinalSpec.Fields
		resp.ReasoningTrace = state.FinalSpec.ReasoningTrace
	}

	return resp
}

func toConversationDTO(state *entity.ConversationState) *entity.ConversationDTO {
	return &entity.ConversationDTO{
		ThreadID:        state.ThreadID,
		Phase:           state.Phase,
		ScopeConfirmed:  state.ScopeConfirmed,
		ConfirmedScope:  state.ConfirmedScope(),
		ProjectStage:    state.ProjectStage,
		Platform:        state.Platform,
		ChallengeType:   state.ChallengeType,
		CurrentField:    state.CurrentField,
		RequiredFields:  state.RequiredFields,
		CompletedFields: state.CompletedFields,
		UserResponses:   state.UserResponses,
		ReasoningTraces: state.ReasoningTraces,
		Messages:        state.Messages,
		IsFinal:         state.IsFinal,
		CreatedAt:       state.CreatedAt,
		UpdatedAt:       state.UpdatedAt,
	}
}
