package insights

// DefaultModel is used when a request names no model
const DefaultModel = "claude-3-5-haiku-latest"

// ModelOption is one entry of the model picker
type ModelOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

var catalog = []ModelOption{
	{ID: "claude-3-5-haiku-latest", Label: "Claude 3.5 Haiku", Description: "Fast and cost-effective", Default: true},
	{ID: "claude-3-5-sonnet-latest", Label: "Claude 3.5 Sonnet", Description: "Balanced performance"},
	{ID: "gemini-1.5-flash", Label: "Gemini 1.5 Flash", Description: "Google's fast model"},
}

// Models returns the known insight models. Ids outside the catalog are
// still forwarded to the engine, which decides whether it supports them.
func Models() []ModelOption {
	out := make([]ModelOption, len(catalog))
	copy(out, catalog)
	return out
}

// ResolveModel maps an empty id to DefaultModel
func ResolveModel(id string) string {
	if id == "" {
		return DefaultModel
	}
	return id
}
