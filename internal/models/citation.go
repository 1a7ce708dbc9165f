package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Citation is a reference attached to a research query. Most rows are
// written by the agent worker; users can also add entries by hand through
// the citation manager. A citation outlives edits to its parent query.
type Citation struct {
	ID                string         `json:"id" db:"id"`
	QueryID           string         `json:"query_id" db:"query_id"`
	Title             string         `json:"title" db:"title"`
	Authors           pq.StringArray `json:"authors" db:"authors"`
	Year              sql.NullInt32  `json:"year" db:"year"`
	Publication       sql.NullString `json:"publication" db:"publication"`
	DOI               sql.NullString `json:"doi" db:"doi"`
	URL               sql.NullString `json:"url" db:"url"`
	CitationStyle     CitationStyle  `json:"citation_style" db:"citation_style"`
	FormattedCitation sql.NullString `json:"formatted_citation" db:"formatted_citation"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// NewCitation validates the required fields of a manual citation entry.
func NewCitation(queryID, title string, authors []string, style CitationStyle) (Citation, error) {
	queryID = strings.TrimSpace(queryID)
	title = strings.TrimSpace(title)
	if queryID == "" {
		return Citation{}, fmt.Errorf("citation: query id is required")
	}
	if title == "" {
		return Citation{}, fmt.Errorf("citation: title is required")
	}
	if style == "" {
		style = StyleAPA
	}
	if !style.Valid() {
		return Citation{}, fmt.Errorf("citation: invalid style %q", style)
	}
	return Citation{
		QueryID:       queryID,
		Title:         title,
		Authors:       pq.StringArray(authors),
		CitationStyle: style,
	}, nil
}
