package remediation

import "github.com/dhanush/skillpath/internal/llm"

// SplitSchema defines the JSON schema for decomposing a failed subtopic.
var SplitSchema = &llm.Schema{
	Name:        "subtopic-split",
	Description: "Simpler sub-parts of a subtopic a student failed",
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
							"description": "Short sub-part title (2-6 words)",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "One sentence on what this sub-part covers",
						},
					},
					"required":             []any{"title", "description"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"subtopics"},
		"additionalProperties": false,
	},
}
