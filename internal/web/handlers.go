package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hpungsan/panelist/internal/catalog"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	registry *persona.Registry
	renderer *Renderer
}

// HandleList handles GET /transcripts.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Persona: q.Get("persona"),
		Topic:   q.Get("topic"),
		Limit:   parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:  parseIntParam(r, "offset", 0),
	}

	result, err := ops.ListTranscripts(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Transcripts",
			Version: h.renderer.version,
			Nav:     "transcripts",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Personas:   h.registry.IDs(),
		Persona:    input.Persona,
		Topic:      input.Topic,
	})
}

// HandleDetail handles GET /transcripts/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("transcript ID is required"))
		return
	}

	out, err := ops.FetchTranscript(r.Context(), h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	body, err := ops.RenderReport(out.Record)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	name := persona.DisplayName(out.PersonaID)
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   name + ": " + out.Topic,
			Version: h.renderer.version,
			Nav:     "transcripts",
		},
		Transcript: out,
		// Response text is escaped before goldmark sees it.
		RenderedHTML: template.HTML(body),
		DisplayName:  name,
	})
}

// HandlePersonas handles GET /personas.
func (h *Handlers) HandlePersonas(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "personas", PersonasPageData{
		PageData: PageData{
			Title:   "Personas",
			Version: h.renderer.version,
			Nav:     "personas",
		},
		Profiles: h.registry.Profiles(),
	})
}

// HandleTopics handles GET /topics.
func (h *Handlers) HandleTopics(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "topics", TopicsPageData{
		PageData: PageData{
			Title:   "Topics",
			Version: h.renderer.version,
			Nav:     "topics",
		},
		Topics:    catalog.Topics(),
		Templates: catalog.Templates(),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
