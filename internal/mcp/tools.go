package mcp

import "github.com/mark3labs/mcp-go/mcp"

var emptySchema = mcp.ToolInputSchema{
	Type:       "object",
	Properties: map[string]any{},
}

var personaListToolDef = mcp.Tool{
	Name:        "persona_list",
	Description: "List the consumer personas available for interviews, with their demographic, psychographic and behavioral profiles.",
	InputSchema: emptySchema,
}

var topicListToolDef = mcp.Tool{
	Name:        "topic_list",
	Description: "List the built-in research topics and question templates with their questions.",
	InputSchema: emptySchema,
}

var interviewRunToolDef = mcp.Tool{
	Name:        "interview_run",
	Description: "Interview one or more personas with the same questions. Each transcript is saved and indexed. When questions is omitted, topic must name a built-in topic or template and its questions are used.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "Research topic shown to the persona",
			},
			"questions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Questions to ask, in order",
			},
			"persona_ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Personas to interview (default: all)",
			},
		},
		Required: []string{"topic"},
	},
}

var interviewQuickTestToolDef = mcp.Tool{
	Name:        "interview_quick_test",
	Description: "Run the three-question smoke test against the tech_early_adopter persona to check the generation backend.",
	InputSchema: emptySchema,
}

var transcriptListToolDef = mcp.Tool{
	Name:        "transcript_list",
	Description: "List saved interview transcripts, newest first.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"persona": map[string]any{
				"type":        "string",
				"description": "Only transcripts for this persona ID",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "Only transcripts for this topic (case-insensitive)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Max items (default 20, max 100)",
			},
			"offset": map[string]any{
				"type":        "integer",
				"description": "Items to skip",
			},
		},
	},
}

var transcriptFetchToolDef = mcp.Tool{
	Name:        "transcript_fetch",
	Description: "Fetch a saved transcript by session ID, optionally rendered as markdown or HTML.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Session ID from interview_run or transcript_list",
			},
			"format": map[string]any{
				"type":        "string",
				"enum":        []string{"json", "markdown", "html"},
				"description": "Adds a rendered copy of the transcript (default: json only)",
			},
		},
		Required: []string{"id"},
	},
}

var responseRateToolDef = mcp.Tool{
	Name:        "response_rate",
	Description: "Ask the model to rate how poignant a piece of text is on a 1-10 scale. Unparseable answers rate 5.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to rate",
			},
		},
		Required: []string{"text"},
	},
}
