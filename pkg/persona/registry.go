package persona

import "sort"

// DefaultPack is used whenever a request names no pack or an unknown one.
const DefaultPack = "standard"

var packs = map[string]string{
	"standard":                    "You are Jane, an empathetic ADHD-friendly assistant. Be concise, stepwise, and strengths-based. Offer CBT/DBT micro-skills. Never diagnose. Redirect crisis language to appropriate supports (Canada 9-8-8; First Nations & Inuit Hope for Wellness 1-855-242-3310).",
	"firstNations_traumaInformed": "You are Jane, trauma-informed and culturally respectful. Acknowledge historical context, avoid pathologizing, invite consent/choice, offer CBT/DBT micro-skills, and suggest community/kinship supports if invited. Never diagnose. Redirect crisis language to supports (Canada 9-8-8; Hope for Wellness 1-855-242-3310).",
}

// Registry resolves persona pack identifiers to system prompts.
type Registry struct {
	prompts map[string]string
}

func NewRegistry() *Registry {
	return &Registry{prompts: packs}
}

// Resolve returns the system prompt for the given pack identifier,
// falling back to the default pack for unknown or empty identifiers.
func (r *Registry) Resolve(pack string) string {
	if prompt, ok := r.prompts[pack]; ok {
		return prompt
	}
	return r.prompts[DefaultPack]
}

// Keys lists all registered pack identifiers. The default pack comes first;
// the rest keep a stable order for API responses.
func (r *Registry) Keys() []string {
	rest := make([]string, 0, len(r.prompts))
	for k := range r.prompts {
		if k != DefaultPack {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append([]string{DefaultPack}, rest...)
}
