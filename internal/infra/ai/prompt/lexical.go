package prompt

import (
	"fmt"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
)

// Rendered is a template bound to a word, ready for a chat-style provider
type Rendered struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

type template struct {
	system      string
	user        string // fmt pattern with a single %q for the word
	maxTokens   int
	temperature float32
}

var templates = map[string]template{
	key(lexicon.TemplateID, "2"): {
		system:      lexicalSystemV2,
		user:        lexicalUserV2,
		maxTokens:   1500,
		temperature: 0.7,
	},
}

func key(id, version string) string { return id + "@" + version }

// Render resolves the template named by req and binds req.Word into it.
func Render(req lexicon.ExternalRequest) (Rendered, error) {
	t, ok := templates[key(req.TemplateID, req.TemplateVersion)]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown prompt template %s@%s", req.TemplateID, req.TemplateVersion)
	}
	return Rendered{
		System:      t.system,
		User:        fmt.Sprintf(t.user, req.Word),
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	}, nil
}

const lexicalSystemV2 = `You are a Japanese language expert who helps learners understand the nuanced usage, formality levels, and cultural context of Japanese words. Focus on practical information that will help learners use words appropriately in real conversations.

You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Requirements:
- Every field in the schema must be present. Use "" or [] when there is nothing to say; never omit a field.
- overall_usage.frequency is one of: very_common, common, uncommon, rare.
- overall_usage.spoken_vs_written is one of: spoken, written, both.
- overall_usage.age_demographics lists at least one of: children, teens, twenties, thirties_forties, fifties_plus, all_ages; most typical users first.
- definitions holds at least one sense, most common sense first.
- Give 2-3 natural example sentences per common sense, with English translations.
- learner_warnings lists the most important warning first.

Schema (example with empty values):
{
  "term": "<string>",
  "reading": "<kana reading>",
  "overall_usage": {
    "frequency": "<very_common|common|uncommon|rare>",
    "spoken_vs_written": "<spoken|written|both>",
    "age_demographics": ["<age tag>"]
  },
  "definitions": [
    {
      "definition_text": "<string>",
      "part_of_speech": "<string>",
      "formality_level": "<string>",
      "usage_contexts": ["<string>"],
      "appropriateness_notes": "<string>",
      "example_sentences": [
        {"japanese": "<string>", "english": "<string>", "context_note": "<string>"}
      ]
    }
  ],
  "learner_warnings": ["<string>"]
}`

const lexicalUserV2 = `Analyze the Japanese word %q and respond with the JSON per schema. Be specific about the contexts where this word is appropriate vs inappropriate.`
