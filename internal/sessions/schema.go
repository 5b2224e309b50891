package sessions

import "github.com/dhanush/skillpath/internal/llm"

// QuizSchema defines the JSON schema for quiz generation.
var QuizSchema = &llm.Schema{
	Name:        "unit-quiz",
	Description: "A multiple-choice quiz checking understanding of one lesson",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Verbatim copy of the correct option",
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"Easy", "Moderate", "Hard"},
						},
						"rationale": map[string]any{
							"type":        "string",
							"description": "One sentence explaining the correct answer",
						},
					},
					"required":             []any{"question", "options", "correct_answer", "difficulty", "rationale"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// LinksSchema defines the JSON schema for resource link generation.
var LinksSchema = &llm.Schema{
	Name:        "study-links",
	Description: "A list of study resource URLs for one subtopic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"links": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-5 URLs",
			},
		},
		"required":             []any{"links"},
		"additionalProperties": false,
	},
}
