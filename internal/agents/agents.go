// Package agents holds the catalog of AI agent presets a query can be
// tagged with. The identifiers are labels carried on the query row; the
// actual behavior behind each preset lives in the worker.
package agents

// DefaultAgent is the preset selected when a form starts out and the
// fallback when a recalled query carries no agent list.
const DefaultAgent = "crow"

// Agent describes one preset shown in the research interface.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists the available presets in display order.
var Catalog = []Agent{
	{ID: "phoenix", Name: "Phoenix", Description: "Experimental chemistry tasks: synthesis planning and molecule design"},
	{ID: "crow", Name: "Crow", Description: "Concise search: succinct answers citing scientific sources"},
	{ID: "falcon", Name: "Falcon", Description: "Deep search: long reports for literature reviews"},
	{ID: "owl", Name: "Owl", Description: "Precedent search: has anyone done this before"},
}

var ids = func() map[string]bool {
	m := make(map[string]bool, len(Catalog))
	for _, a := range Catalog {
		m[a.ID] = true
	}
	return m
}()

// Known reports whether id names a catalog preset.
func Known(id string) bool {
	return ids[id]
}
