package compare

import (
	"encoding/json"
	"net/url"
	"strings"

	"quickprice/pkg/gemini"
	"quickprice/pkg/models"
)

// placeholderTitle is substituted when a citation carries no title.
const placeholderTitle = "Market Source"

type payload struct {
	Items   []models.GroceryItem `json:"items"`
	Summary string               `json:"summary"`
}

// stripCodeFences removes markdown code-block wrappers some replies
// arrive in despite the schema constraint.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 && !strings.ContainsAny(s[:idx], "{[") {
		// drop the language tag line ("json", "JSON", ...)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizePayload parses the reply text into items and a summary,
// tolerating missing fields. An empty reply normalizes to an empty
// result rather than an error.
func normalizePayload(text string) (payload, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		cleaned = "{}"
	}

	var p payload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return payload{}, err
	}

	if p.Items == nil {
		p.Items = []models.GroceryItem{}
	}
	for i := range p.Items {
		if p.Items[i].Currency == "" {
			p.Items[i].Currency = models.DefaultCurrency
		}
	}
	return p, nil
}

// fillLinkFallbacks gives available items the provider returned
// without a direct link the platform's search-results URL for the
// query. Unknown platforms and unavailable items are left alone.
func fillLinkFallbacks(items []models.GroceryItem, query string) {
	for i := range items {
		if !items[i].IsAvailable || strings.TrimSpace(items[i].Link) != "" {
			continue
		}
		if p, ok := models.KnownPlatform(items[i].Platform); ok {
			items[i].Link = strings.ReplaceAll(p.SearchURL, "[QUERY]", url.QueryEscape(query))
		}
	}
}

// normalizeSources maps grounding citations to sources, dropping any
// entry without a usable URI and filling in a placeholder title.
func normalizeSources(refs []gemini.WebSource) []models.Source {
	sources := make([]models.Source, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.URI) == "" {
			continue
		}
		title := ref.Title
		if strings.TrimSpace(title) == "" {
			title = placeholderTitle
		}
		sources = append(sources, models.Source{Title: title, URI: ref.URI})
	}
	return sources
}
