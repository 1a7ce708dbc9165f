package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ResearchQuery is a single unit of research work. It is created in
// StatusPending by the submission workflow; the agent worker owns every
// later status transition and fills in Results and Citations. Rows are
// never deleted.
type ResearchQuery struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	Title        string          `json:"title" db:"title"`
	QueryText    string          `json:"query_text" db:"query_text"`
	AIAgentsUsed pq.StringArray  `json:"ai_agents_used" db:"ai_agents_used"`
	Status       QueryStatus     `json:"status" db:"status"`
	Results      json.RawMessage `json:"results" db:"results"`
	Citations    json.RawMessage `json:"citations" db:"citations"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// NewResearchQuery builds a pending query row for the given owner. Title and
// query text are stored trimmed; agent order is preserved exactly as given
// so a recalled query restores the same selection.
func NewResearchQuery(userID, title, queryText string, agents []string) (ResearchQuery, error) {
	if strings.TrimSpace(userID) == "" {
		return ResearchQuery{}, fmt.Errorf("research query: user id is required")
	}
	title = strings.TrimSpace(title)
	queryText = strings.TrimSpace(queryText)
	if title == "" {
		return ResearchQuery{}, fmt.Errorf("research query: title is required")
	}
	if queryText == "" {
		return ResearchQuery{}, fmt.Errorf("research query: query text is required")
	}
	if len(agents) == 0 {
		return ResearchQuery{}, fmt.Errorf("research query: at least one agent is required")
	}
	return ResearchQuery{
		UserID:       userID,
		Title:        title,
		QueryText:    queryText,
		AIAgentsUsed: pq.StringArray(agents),
		Status:       StatusPending,
	}, nil
}

// QueryUpdate carries the fields a query owner may change after submission.
// Status and payloads stay worker-owned.
type QueryUpdate struct {
	Title     *string `json:"title"`
	QueryText *string `json:"query_text"`
}
