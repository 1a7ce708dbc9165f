package models

// QueryStatus tracks a research query through agent processing.
type QueryStatus string

const (
	StatusPending    QueryStatus = "pending"
	StatusProcessing QueryStatus = "processing"
	StatusCompleted  QueryStatus = "completed"
	StatusFailed     QueryStatus = "failed"
)

func (s QueryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// SubscriptionTier is the plan level a user is subscribed to.
type SubscriptionTier string

const (
	TierStudent     SubscriptionTier = "student"
	TierResearch    SubscriptionTier = "research"
	TierInstitution SubscriptionTier = "institution"
)

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierStudent, TierResearch, TierInstitution:
		return true
	}
	return false
}

// QueryLimit returns the monthly query allowance for a tier. Mirrors the
// get_query_limit function in the database so both sides agree on the
// numbers.
func (t SubscriptionTier) QueryLimit() int {
	switch t {
	case TierStudent:
		return 100
	case TierResearch:
		return 500
	case TierInstitution:
		return 2000
	}
	return 0
}

// CitationStyle selects the formatting convention for a citation.
type CitationStyle string

const (
	StyleAPA     CitationStyle = "apa"
	StyleMLA     CitationStyle = "mla"
	StyleChicago CitationStyle = "chicago"
	StyleHarvard CitationStyle = "harvard"
	StyleIEEE    CitationStyle = "ieee"
)

func (s CitationStyle) Valid() bool {
	switch s {
	case StyleAPA, StyleMLA, StyleChicago, StyleHarvard, StyleIEEE:
		return true
	}
	return false
}

// UserRole classifies a profile.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleResearcher UserRole = "researcher"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleResearcher, RoleAdmin:
		return true
	}
	return false
}
