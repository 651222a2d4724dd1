// Package schema holds the immutable catalog of challenge field schemas.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/futig/spec-copilot/internal/entity"
)

// Catalog maps (platform, challenge type) pairs to field schemas.
// It is read-only after construction and safe for concurrent use.
type Catalog struct {
	schemas map[entity.SchemaKey]*entity.FieldSchema
	order   []entity.SchemaKey
}

// NewCatalog validates the given schemas and builds a catalog over them.
// A later schema for the same pair replaces an earlier one.
func NewCatalog(schemas ...*entity.FieldSchema) (*Catalog, error) {
	c := &Catalog{
		schemas: make(map[entity.SchemaKey]*entity.FieldSchema, len(schemas)),
	}

	for _, s := range schemas {
		if err := validateSchema(s); err != nil {
			return nil, err
		}

		key := entity.SchemaKey{Platform: s.Platform, ChallengeType: s.ChallengeType}
		if _, ok := c.schemas[key]; !ok {
			c.order = append(c.order, key)
		}
		c.schemas[key] = s.Clone()
	}

	return c, nil
}

func validateSchema(s *entity.FieldSchema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", entity.ErrInvalidSchema)
	}
	if _, err := entity.ParsePlatform(string(s.Platform)); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrInvalidSchema, err)
	}
	if _, err := entity.ParseChallengeType(string(s.ChallengeType)); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrInvalidSchema, err)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: %s %s has no fields", entity.ErrInvalidSchema, s.Platform, s.ChallengeType)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: empty field key", entity.ErrInvalidSchema)
		}
		if entity.IsReservedResponseKey(f.Key) {
			return fmt.Errorf("%w: field key %q is reserved", entity.ErrInvalidSchema, f.Key)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: duplicate field %q", entity.ErrInvalidSchema, f.Key)
		}
		seen[f.Key] = struct{}{}

		if err := f.FieldType.Validate(); err != nil {
			return fmt.Errorf("%w: field %q: %w", entity.ErrInvalidSchema, f.Key, err)
		}
	}

	return nil
}

// Get returns a copy of the schema for the pair. Unknown pairs yield false.
func (c *Catalog) Get(platform entity.Platform, challengeType entity.ChallengeType) (*entity.FieldSchema, bool) {
	s, ok := c.schemas[entity.SchemaKey{Platform: platform, ChallengeType: challengeType}]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// RequiredFields returns the required keys in declared order.
func (c *Catalog) RequiredFields(s *entity.FieldSchema) []string {
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			required = append(required, f.Key)
		}
	}
	return required
}

func (c *Catalog) FieldDefinition(s *entity.FieldSchema, key string) (entity.FieldDefinition, bool) {
	return s.Lookup(key)
}

// Validate performs a structural type check of value against the field type.
// Keys outside the schema never validate.
func (c *Catalog) Validate(s *entity.FieldSchema, key string, value any) bool {
	def, ok := s.Lookup(key)
	if !ok {
		return false
	}

	switch def.FieldType {
	case entity.FieldTypeText:
		_, ok := value.(string)
		return ok
	case entity.FieldTypeArray:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case entity.FieldTypeObject:
		_, ok := value.(map[string]any)
		return ok
	case entity.FieldTypeNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32, json.Number:
			return true
		}
		return false
	default:
		return false
	}
}

// Available lists the known pairs in load order.
func (c *Catalog) Available() []entity.SchemaKey {
	return append([]entity.SchemaKey{}, c.order...)
}

// Summaries describes every schema in load order.
func (c *Catalog) Summaries() []entity.SchemaSummary {
	summaries := make([]entity.SchemaSummary, 0, len(c.order))
	for _, key := range c.order {
		s := c.schemas[key]
		summaries = append(summaries, entity.SchemaSummary{
			SchemaKey:     key,
			FieldCount:    len(s.Fields),
			RequiredCount: len(c.RequiredFields(s)),
			Fields:        s.Keys(),
		})
	}
	return summaries
}
