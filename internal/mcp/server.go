package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/panelist/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"persona_list": {
		def:     personaListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePersonaList },
	},
	"topic_list": {
		def:     topicListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTopicList },
	},
	"interview_run": {
		def:     interviewRunToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInterviewRun },
	},
	"interview_quick_test": {
		def:     interviewQuickTestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInterviewQuickTest },
	},
	"transcript_list": {
		def:     transcriptListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTranscriptList },
	},
	"transcript_fetch": {
		def:     transcriptFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTranscriptFetch },
	},
	"response_rate": {
		def:     responseRateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResponseRate },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the interview tools registered.
// Tools listed in disabled are skipped.
func NewServer(deps *ops.Deps, disabled []string, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"panelist",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	for name, entry := range toolRegistry {
		if skip[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves MCP over stdio until stdin closes.
func Run(deps *ops.Deps, disabled []string, version string) error {
	return server.ServeStdio(NewServer(deps, disabled, version))
}
