package conversation

import (
	"context"

	"github.com/futig/spec-copilot/internal/entity"
)

// TextOracle completes a role-tagged prompt. Any error is treated as an unavailable oracle.
type TextOracle interface {
	Complete(ctx context.Context, messages []entity.Message) (string, error)
}

// SuggestionService retrieves similar prior specifications.
// Implementations log their own failures and return an empty slice.
type SuggestionService interface {
	Search(ctx context.Context, query string, limit int) []entity.SimilarSpec
}

type SchemaCatalog interface {
	Get(platform entity.Platform, challengeType entity.ChallengeType) (*entity.FieldSchema, bool)
	RequiredFields(schema *entity.FieldSchema) []string
	FieldDefinition(schema *entity.FieldSchema, key string) (entity.FieldDefinition, bool)
	Validate(schema *entity.FieldSchema, key string, value any) bool
}

// Recorder observes recoveries from oracle failures.
type Recorder interface {
	OracleFallback(ctx context.Context, step string)
}

type nopRecorder struct{}

func (nopRecorder) OracleFallback(context.Context, string) {}
