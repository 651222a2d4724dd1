package entity

import "fmt"

type Platform string

const (
	PlatformTopcoder Platform = "Topcoder"
	PlatformKaggle   Platform = "Kaggle"
	PlatformHeroX    Platform = "HeroX"
	PlatformZindi    Platform = "Zindi"
	PlatformInternal Platform = "Internal"
)

// AllPlatforms returns the supported platforms in menu order.
func AllPlatforms() []Platform {
	return []Platform{PlatformTopcoder, PlatformKaggle, PlatformHeroX, PlatformZindi, PlatformInternal}
}

// ParsePlatform accepts only the exact enumeration value.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range AllPlatforms() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: platform %q", ErrInvalidEnumeration, s)
}

type ChallengeType string

const (
	ChallengeTypeDesign       ChallengeType = "Design"
	ChallengeTypeDevelopment  ChallengeType = "Development"
	ChallengeTypeDataScience  ChallengeType = "Data Science"
	ChallengeTypeFirst2Finish ChallengeType = "First2Finish"
	ChallengeTypeBugHunt      ChallengeType = "Bug Hunt"
)

// AllChallengeTypes returns the supported challenge types in menu order.
func AllChallengeTypes() []ChallengeType {
	return []ChallengeType{
		ChallengeTypeDesign,
		ChallengeTypeDevelopment,
		ChallengeTypeDataScience,
		ChallengeTypeFirst2Finish,
		ChallengeTypeBugHunt,
	}
}

// ParseChallengeType accepts only the exact enumeration value.
func ParseChallengeType(s string) (ChallengeType, error) {
	for _, t := range AllChallengeTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: challenge type %q", ErrInvalidEnumeration, s)
}

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeArray  FieldType = "array"
	FieldTypeObject FieldType = "object"
	FieldTypeNumber FieldType = "number"
)

func (t FieldType) Validate() error {
	switch t {
	case FieldTypeText, FieldTypeArray, FieldTypeObject, FieldTypeNumber:
		return nil
	default:
		return fmt.Errorf("unknown field type: %s", t)
	}
}

type FieldDefinition struct {
	Required    bool      `json:"required" yaml:"required"`
	FieldType   FieldType `json:"field_type" yaml:"field_type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// SchemaField is one entry of a FieldSchema, kept in declaration order.
type SchemaField struct {
	Key string `json:"key"`
	FieldDefinition
}

// FieldSchema is the ordered field set for one (platform, challenge type) pair.
// It is never mutated after loading.
type FieldSchema struct {
	Platform      Platform      `json:"platform"`
	ChallengeType ChallengeType `json:"challenge_type"`
	Fields        []SchemaField `json:"fields"`
}

// Keys returns every field key in declaration order.
func (s *FieldSchema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Lookup returns the definition for key.
func (s *FieldSchema) Lookup(key string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.FieldDefinition, true
		}
	}
	return FieldDefinition{}, false
}

// Clone returns a deep copy of the schema.
func (s *FieldSchema) Clone() *FieldSchema {
	c := *s
	c.Fields = append([]SchemaField{}, s.Fields...)
	return &c
}
