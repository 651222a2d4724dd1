package conversation

import (
	"fmt"
	"strings"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/formatter"
)

const (
	scopingExamples     = 2
	overviewPreviewSize = 100
	fieldExamples       = 2
	similarSpecsLimit   = 3
)

const (
	replyRephrase         = "Sorry, I couldn't process that just now. Could you rephrase or add a bit more detail?"
	replyNeedSelection    = "I need to know the platform and challenge type first. Let me help you select those."
	replyNoTemplateFormat = "I don't have a schema/template for %s %s challenges. Let me help you with a different combination."
	replyRecordedFormat   = "Great! I've recorded your answer for %s. Let me ask about the next field."
	replyAllCollected     = "Perfect! I have all the information I need. Let me generate your challenge specification."
	replyCompiling        = "Let me compile your complete challenge specification now."
	replySkipFormat       = "Let me ask about the %s field instead."
	replySkipDone         = "I have all the information I need. Let me generate your challenge specification."
)

const scopingPromptHeader = `You are a copilot that helps users define and scope challenges for platforms such as Topcoder and Kaggle.

Your job:
1. Understand the user's high-level goal.
2. Judge whether it fits a single challenge.
3. Steer the user toward a well-scoped unit of work.
4. Help them find the scope; do not impose one.

Scoping guidelines:
- A good challenge is completable in 3 to 21 days.
- Deliverables are clear and measurable.
- It is neither too broad (an entire app) nor too narrow (a single function).
- Account for what already exists and what still has to be built.

Conversation flow:
1. Ask about project status and what is already done.
2. Clarify which part the user wants to focus on.
3. Propose a scoped version and ask for confirmation.
4. Once the user confirms, end your reply with: "SCOPE_CONFIRMED: <brief description>"

Ask specific questions and propose concrete, actionable scopes.`

const selectionPrompt = `You are helping the user choose a platform and challenge type for their project.

Available platforms:
- Topcoder: design and development challenges
- Kaggle: data science and ML competitions
- HeroX: innovation challenges
- Zindi: Africa-focused data science competitions
- Internal: company internal challenges

Available challenge types:
- Design: UI/UX design, mockups, prototypes
- Development: code, APIs, applications
- Data Science: ML models, data analysis, predictions
- First2Finish: quick implementation tasks
- Bug Hunt: finding and fixing bugs

Recommend the best combination for the confirmed scope using exactly this format:

RECOMMENDATION: <Platform> - <Challenge Type>
REASONING: <why this combination fits>
CONFIDENCE: <0.0-1.0>

If you need more information, ask specific questions instead.`

func buildScopingPrompt(similar []entity.SimilarSpec) string {
	var b strings.Builder
	b.WriteString(scopingPromptHeader)

	if len(similar) > 0 {
		b.WriteString("\n\nSimilar successful challenges for reference:\n")
		for i, spec := range similar[:min(len(similar), scopingExamples)] {
			title := spec.Title
			if title == "" {
				title = "Unknown"
			}
			fmt.Fprintf(&b, "%d. %s\n   Scope: %s...\n", i+1, title, truncate(spec.Overview, overviewPreviewSize))
		}
	}

	return b.String()
}

func buildSelectionInput(scope, input string) string {
	return fmt.Sprintf("Scope: %s\nUser input: %s", scope, input)
}

type fieldPromptData struct {
	key           string
	def           entity.FieldDefinition
	platform      entity.Platform
	challengeType entity.ChallengeType
	scope         string
	examples      []any
	suggestions   []string
}

func buildFieldQuestionPrompt(d fieldPromptData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are asking about the '%s' field of a challenge specification.\n\n", d.key)
	b.WriteString("Field details:\n")
	fmt.Fprintf(&b, "- Type: %s\n", d.def.FieldType)
	fmt.Fprintf(&b, "- Required: %t\n", d.def.Required)
	fmt.Fprintf(&b, "- Description: %s\n\n", orDefault(d.def.Description, "No description provided"))

	b.WriteString("Challenge context:\n")
	fmt.Fprintf(&b, "- Platform: %s\n", d.platform)
	fmt.Fprintf(&b, "- Challenge type: %s\n", d.challengeType)
	fmt.Fprintf(&b, "- Scope: %s\n", orDefault(d.scope, "Not specified"))

	if len(d.examples) > 0 {
		b.WriteString("\nExamples from similar challenges:\n")
		for _, ex := range d.examples {
			fmt.Fprintf(&b, "- %s\n", formatter.FormatValue(ex))
		}
	}

	if len(d.suggestions) > 0 {
		b.WriteString("\nSuggestions based on similar challenges:\n")
		for _, s := range d.suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	b.WriteString("\nAsk one clear, specific question that helps the user provide the right information for this field. Keep it conversational.")

	return b.String()
}

func buildFieldQuestionInput(key, userQuestion string) string {
	msg := fmt.Sprintf("Please ask a question about the '%s' field for this challenge.", key)
	if userQuestion != "" {
		msg += fmt.Sprintf("\nThe user asked: %q", userQuestion)
	}
	return msg
}

func buildAnswerPrompt(key string, def entity.FieldDefinition, answer string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are processing the user's answer for the '%s' field of a challenge specification.\n\n", key)
	b.WriteString("Field definition:\n")
	fmt.Fprintf(&b, "- Type: %s\n", def.FieldType)
	fmt.Fprintf(&b, "- Required: %t\n", def.Required)
	fmt.Fprintf(&b, "- Description: %s\n\n", orDefault(def.Description, "No description"))
	fmt.Fprintf(&b, "User's answer: %q\n\n", answer)
	b.WriteString(`Extract the relevant information and format it for the field type.
Respond with a single JSON object and nothing else:
{"value": <string, array or object as the type requires>, "confidence": <0.0-1.0>, "reasoning": "<how you processed the answer>"}`)

	return b.String()
}

// fallbackQuestion is asked when the oracle cannot phrase a field question.
func fallbackQuestion(key string, def entity.FieldDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Could you tell me about the %s", humanize(key))
	if def.Description != "" {
		fmt.Fprintf(&b, " (%s)", strings.ToLower(def.Description))
	}
	b.WriteString("?")

	switch def.FieldType {
	case entity.FieldTypeArray:
		b.WriteString(" A list works best, one item per line or separated by commas.")
	case entity.FieldTypeObject:
		b.WriteString(" Please include the individual parts, for example name: value pairs.")
	case entity.FieldTypeNumber:
		b.WriteString(" A number is expected.")
	}

	if !def.Required {
		b.WriteString(" This field is optional.")
	}

	return b.String()
}

func fieldIntro(key string, def entity.FieldDefinition) string {
	if def.Description == "" {
		return fmt.Sprintf("Next up: **%s**.", key)
	}
	return fmt.Sprintf("Next up: **%s**: %s.", key, def.Description)
}

func schemaIntro(s *entity.FieldSchema, required int) string {
	total := len(s.Fields)
	return fmt.Sprintf(
		"Perfect! I've loaded the %s %s challenge template. "+
			"I'll need to collect information for %d fields (%d required, %d optional). "+
			"Let me start by asking about the most important details for your challenge.",
		s.Platform, s.ChallengeType, total, required, total-required,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func humanize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
