package roadmap

import "github.com/dhanush/skillpath/internal/llm"

// DecomposeSchema defines the JSON schema for topic decomposition.
var DecomposeSchema = &llm.Schema{
	Name:        "roadmap-subtopics",
	Description: "An ordered list of subtopics that together cover one study topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subtopics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short subtopic title (2-6 words)",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "One sentence on what the student will learn",
						},
						"resources": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "2-3 article or documentation URLs",
						},
					},
					"required":             []any{"title", "description", "resources"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"subtopics"},
		"additionalProperties": false,
	},
}
