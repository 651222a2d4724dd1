package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/futig/spec-copilot/internal/entity"
)

// specDocument is the layout shared by the document formatters.
type specDocument struct {
	title    string
	meta     [][2]string
	sections []section
	trace    []string
}

type section struct {
	heading string
	lines   []string
}

func buildDocument(spec *entity.FinalSpec) specDocument {
	doc := specDocument{title: baseTitle}

	if spec.Platform != "" {
		doc.title = fmt.Sprintf("%s: %s %s", baseTitle, spec.Platform, spec.ChallengeType)
		doc.meta = append(doc.meta,
			[2]string{"Platform", string(spec.Platform)},
			[2]string{"Challenge type", string(spec.ChallengeType)},
		)
	}
	if spec.Scope != "" {
		doc.meta = append(doc.meta, [2]string{"Scope", spec.Scope})
	}
	if spec.ProjectStage != "" {
		doc.meta = append(doc.meta, [2]string{"Project stage", string(spec.ProjectStage)})
	}

	for _, key := range spec.FieldOrder {
		doc.sections = append(doc.sections, section{
			heading: headingFor(key),
			lines:   ValueLines(spec.Fields[key]),
		})
	}

	for _, t := range spec.ReasoningTrace {
		line := fmt.Sprintf("%s: %s", t.Field, t.Source)
		if t.Confidence != nil {
			line += fmt.Sprintf(" (confidence %.2f)", *t.Confidence)
		}
		doc.trace = append(doc.trace, line)
	}

	return doc
}

func headingFor(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatValue renders a field value on a single line.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatNumber(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			parts = append(parts, fmt.Sprintf("%s: %s", k, FormatValue(val[k])))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ValueLines renders a field value as document lines: one per list item or object key.
func ValueLines(v any) []string {
	switch val := v.(type) {
	case []string:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+item)
		}
		return lines
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+FormatValue(item))
		}
		return lines
	case map[string]any:
		lines := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			lines = append(lines, fmt.Sprintf("%s: %s", k, FormatValue(val[k])))
		}
		return lines
	default:
		return []string{FormatValue(val)}
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
