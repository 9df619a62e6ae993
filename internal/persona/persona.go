package persona

import (
	"fmt"
	"strings"

	"github.com/hpungsan/panelist/internal/errors"
)

// Profile is a fixed consumer profile the model role-plays during an interview.
type Profile struct {
	ID            string `json:"id"`
	Demographic   string `json:"demographic"`
	Psychographic string `json:"psychographic"`
	Behavioral    string `json:"behavioral"`
	Description   string `json:"description"` // one-line summary for menus
}

// Registry is an immutable, ordered set of profiles keyed by ID.
type Registry struct {
	order    []string
	profiles map[string]Profile
}

// NewRegistry builds a registry from profiles, keeping their order.
// Empty or duplicate IDs are rejected.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		order:    make([]string, 0, len(profiles)),
		profiles: make(map[string]Profile, len(profiles)),
	}
	for _, p := range profiles {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, errors.NewInvalidRequest("persona id must not be empty")
		}
		if _, dup := r.profiles[id]; dup {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("duplicate persona id: %s", id))
		}
		p.ID = id
		r.order = append(r.order, id)
		r.profiles[id] = p
	}
	return r, nil
}

// ProfileFor returns the profile for id, or UNKNOWN_PERSONA.
func (r *Registry) ProfileFor(id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, errors.NewUnknownPersona(id)
	}
	return p, nil
}

// Has reports whether id is in the registry.
func (r *Registry) Has(id string) bool {
	_, ok := r.profiles[id]
	return ok
}

// IDs returns persona IDs in registry order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Profiles returns all profiles in registry order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Len returns the number of personas.
func (r *Registry) Len() int {
	return len(r.order)
}

const promptTemplate = `You are a market research participant with the following characteristics:

Demographics: %s
Psychographics: %s
Behavioral Traits: %s

Respond to interview questions as this person would, staying consistent with these characteristics throughout the conversation. Be authentic and provide detailed, realistic responses based on your profile.`

// RenderPrompt formats a profile into the instruction block that opens every
// interview prompt. The output depends only on the profile fields.
func RenderPrompt(p Profile) string {
	return fmt.Sprintf(promptTemplate, p.Demographic, p.Psychographic, p.Behavioral)
}

// DisplayName turns a snake_case ID into title case: "tech_early_adopter" → "Tech Early Adopter".
func DisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
