package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/panelist/internal/catalog"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	deps *ops.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps *ops.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// Request types for each tool

// InterviewRunRequest represents the arguments for interview_run.
type InterviewRunRequest struct {
	Topic      string   `json:"topic"`
	Questions  []string `json:"questions,omitempty"`
	PersonaIDs []string `json:"persona_ids,omitempty"`
}

// TranscriptListRequest represents the arguments for transcript_list.
type TranscriptListRequest struct {
	Persona string `json:"persona,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// TranscriptFetchRequest represents the arguments for transcript_fetch.
type TranscriptFetchRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

// ResponseRateRequest represents the arguments for response_rate.
type ResponseRateRequest struct {
	Text string `json:"text"`
}

// PersonaItem is one entry of persona_list.
type PersonaItem struct {
	persona.Profile
	DisplayName string `json:"display_name"`
}

// HandlePersonaList handles the persona_list tool.
func (h *Handlers) HandlePersonaList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles := h.deps.Registry.Profiles()
	items := make([]PersonaItem, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, PersonaItem{Profile: p, DisplayName: persona.DisplayName(p.ID)})
	}
	return successResult(map[string]any{"items": items})
}

// HandleTopicList handles the topic_list tool.
func (h *Handlers) HandleTopicList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{
		"topics":    catalog.Topics(),
		"templates": catalog.Templates(),
	})
}

// HandleInterviewRun handles the interview_run tool.
func (h *Handlers) HandleInterviewRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[InterviewRunRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	questions := r.Questions
	if len(questions) == 0 {
		questions, err = builtinQuestions(r.Topic)
		if err != nil {
			return errorResult(err), nil
		}
	}
	personas := r.PersonaIDs
	if len(personas) == 0 {
		personas = h.deps.Registry.IDs()
	}

	result, err := ops.RunInterviews(ctx, h.deps, ops.RunInput{
		Topic:      r.Topic,
		Questions:  questions,
		PersonaIDs: personas,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// builtinQuestions resolves a topic name or template key to its questions.
func builtinQuestions(topic string) ([]string, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, errors.NewInvalidRequest("topic is required")
	}
	if q, err := catalog.TopicQuestions(topic); err == nil {
		return q, nil
	}
	if q, err := catalog.TemplateQuestions(strings.TrimSpace(topic)); err == nil {
		return q, nil
	}
	return nil, errors.NewInvalidRequest("questions are required unless topic names a built-in topic or template")
}

// HandleInterviewQuickTest handles the interview_quick_test tool.
func (h *Handlers) HandleInterviewQuickTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.QuickTest(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTranscriptList handles the transcript_list tool.
func (h *Handlers) HandleTranscriptList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[TranscriptListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListTranscripts(ctx, h.deps.DB, ops.ListInput{
		Persona: r.Persona,
		Topic:   r.Topic,
		Limit:   r.Limit,
		Offset:  r.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// TranscriptFetchResponse is a fetched transcript with an optional rendering.
type TranscriptFetchResponse struct {
	*ops.FetchOutput
	Markdown string `json:"markdown,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// HandleTranscriptFetch handles the transcript_fetch tool.
func (h *Handlers) HandleTranscriptFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[TranscriptFetchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	out, err := ops.FetchTranscript(ctx, h.deps.DB, r.ID)
	if err != nil {
		return errorResult(err), nil
	}

	resp := TranscriptFetchResponse{FetchOutput: out}
	switch r.Format {
	case "", "json":
	case "markdown":
		resp.Markdown = ops.RenderMarkdown(out.Record)
	case "html":
		if resp.HTML, err = ops.RenderReport(out.Record); err != nil {
			return errorResult(err), nil
		}
	default:
		return errorResult(errors.NewInvalidRequest("format must be json, markdown or html")), nil
	}
	return successResult(resp)
}

// HandleResponseRate handles the response_rate tool.
func (h *Handlers) HandleResponseRate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[ResponseRateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Rate(ctx, h.deps, r.Text)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result carrying the structured error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PanelError
	if stderrors.As(err, &pErr) {
		message := pErr.Message
		if err != error(pErr) {
			// Keep wrapper context such as "persona luxury_consumer: ...".
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": message,
			"status":  pErr.Status,
		}
		// INTERNAL details may carry file paths or SQL text.
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
