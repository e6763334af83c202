package schema

import "github.com/sonicalchemist/api/internal/model"

// SoundtrackOutput is the contract for the soundtrack flow.
var SoundtrackOutput = Output[model.SoundtrackResult]{
	Name:        "soundtrack_result",
	Description: "A textual soundtrack concept with metadata and an optional inline audio payload.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "A description of the generated soundtrack, including BPM, key, instruments used, and mood tags.",
			},
			"audioDataUri": map[string]any{
				"type":        "string",
				"description": "The generated soundtrack as a data URI in base64 format.",
			},
		},
		"required":             []string{"description"},
		"additionalProperties": false,
	},
}

// MetadataSummaryOutput is the contract for the metadata summary flow.
var MetadataSummaryOutput = Output[model.MetadataSummaryResult]{
	Name:        "metadata_summary",
	Description: "A concise summary of soundtrack metadata.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "A concise summary of the soundtrack metadata.",
			},
		},
		"required":             []string{"summary"},
		"additionalProperties": false,
	},
}
