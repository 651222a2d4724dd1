package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/futig/spec-copilot/internal/entity"
)

//go:embed defaults
var defaultSchemas embed.FS

type schemaFile struct {
	Platform      string    `yaml:"platform"`
	ChallengeType string    `yaml:"challenge_type"`
	Fields        yaml.Node `yaml:"fields"`
}

// Default returns the catalog built from the embedded schema files.
func Default() *Catalog {
	schemas, err := readSchemas(defaultSchemas, "defaults", zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("embedded schemas: %v", err))
	}

	c, err := NewCatalog(schemas...)
	if err != nil {
		panic(fmt.Sprintf("embedded schemas: %v", err))
	}
	return c
}

// LoadDir builds a catalog from the .yaml, .yml and .json files in dir.
// A missing, unset or empty directory falls back to the embedded defaults.
// Unreadable files are skipped with a warning.
func LoadDir(dir string, logger *zap.Logger) (*Catalog, error) {
	if dir == "" {
		logger.Info("Schema directory not set, using built-in schemas")
		return Default(), nil
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Schema directory does not exist, using built-in schemas", zap.String("dir", dir))
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema path %s is not a directory", dir)
	}

	return LoadFS(os.DirFS(dir), ".", logger)
}

// LoadFS builds a catalog from schema files under root in fsys.
func LoadFS(fsys fs.FS, root string, logger *zap.Logger) (*Catalog, error) {
	schemas, err := readSchemas(fsys, root, logger)
	if err != nil {
		return nil, err
	}

	if len(schemas) == 0 {
		logger.Warn("No schema files found, using built-in schemas", zap.String("root", root))
		return Default(), nil
	}

	c, err := NewCatalog(schemas...)
	if err != nil {
		return nil, err
	}

	logger.Info("Schema catalog loaded", zap.Int("schemas", len(c.order)))
	return c, nil
}

func readSchemas(fsys fs.FS, root string, logger *zap.Logger) ([]*entity.FieldSchema, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	schemas := make([]*entity.FieldSchema, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			logger.Warn("Failed to read schema file", zap.String("file", name), zap.Error(err))
			continue
		}

		s, err := ParseSchema(data)
		if err != nil {
			logger.Warn("Failed to parse schema file", zap.String("file", name), zap.Error(err))
			continue
		}

		schemas = append(schemas, s)
	}

	return schemas, nil
}

// ParseSchema decodes one schema document. JSON documents are accepted as YAML.
// Field order follows the order of keys in the document.
func ParseSchema(data []byte) (*entity.FieldSchema, error) {
	var raw schemaFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidSchema, err)
	}

	platform, err := entity.ParsePlatform(raw.Platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidSchema, err)
	}

	challengeType, err := entity.ParseChallengeType(raw.ChallengeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidSchema, err)
	}

	if raw.Fields.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: fields must be a mapping", entity.ErrInvalidSchema)
	}

	s := &entity.FieldSchema{
		Platform:      platform,
		ChallengeType: challengeType,
		Fields:        make([]entity.SchemaField, 0, len(raw.Fields.Content)/2),
	}

	for i := 0; i+1 < len(raw.Fields.Content); i += 2 {
		keyNode, valueNode := raw.Fields.Content[i], raw.Fields.Content[i+1]

		var def entity.FieldDefinition
		if err := valueNode.Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", entity.ErrInvalidSchema, keyNode.Value, err)
		}

		s.Fields = append(s.Fields, entity.SchemaField{Key: keyNode.Value, FieldDefinition: def})
	}

	if err := validateSchema(s); err != nil {
		return nil, err
	}

	return s, nil
}
