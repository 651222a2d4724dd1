package entity

import "strings"

// SimilarSpec is a previously written challenge specification returned by the suggestion service.
type SimilarSpec struct {
	Title           string         `json:"title"`
	Overview        string         `json:"overview"`
	Platform        string         `json:"platform"`
	ChallengeType   string         `json:"challenge_type"`
	TechStack       []string       `json:"tech_stack,omitempty"`
	Timeline        map[string]any `json:"timeline,omitempty"`
	JudgingCriteria []string       `json:"judging_criteria,omitempty"`
	Objectives      []string       `json:"objectives,omitempty"`
	PrizeStructure  map[string]any `json:"prize_structure,omitempty"`
	SimilarityScore float64        `json:"similarity_score"`
}

// FieldValue returns the value the spec carries for a schema field key.
func (s SimilarSpec) FieldValue(key string) (any, bool) {
	switch key {
	case "title":
		return s.Title, s.Title != ""
	case "overview":
		return s.Overview, s.Overview != ""
	case "tech_stack":
		return s.TechStack, len(s.TechStack) > 0
	case "timeline":
		return s.Timeline, len(s.Timeline) > 0
	case "judging_criteria":
		return s.JudgingCriteria, len(s.JudgingCriteria) > 0
	case "objectives":
		return s.Objectives, len(s.Objectives) > 0
	case "prize_structure":
		return s.PrizeStructure, len(s.PrizeStructure) > 0
	default:
		return nil, false
	}
}

// SearchText is the text a keyword index matches against.
func (s SimilarSpec) SearchText() string {
	parts := []string{s.Title, s.Overview, s.Platform, s.ChallengeType}
	parts = append(parts, s.TechStack...)
	parts = append(parts, s.Objectives...)
	return strings.Join(parts, " ")
}

type RAGSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type RAGSearchResponse struct {
	Results []SimilarSpec `json:"results"`
}
