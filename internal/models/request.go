package models

// LoginRequest represents the login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"type"`
}

// SubmitQueryRequest is the payload for submitting a new research query.
type SubmitQueryRequest struct {
	Title     string   `json:"title"`
	QueryText string   `json:"query_text"`
	Agents    []string `json:"ai_agents"`
}

// CreateWorkspaceRequest is the payload for creating a workspace.
type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// AddMemberRequest is the payload for adding a workspace member.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// CreateCitationRequest is the payload for a manual citation entry.
type CreateCitationRequest struct {
	QueryID       string   `json:"query_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year"`
	Publication   string   `json:"publication"`
	DOI           string   `json:"doi"`
	URL           string   `json:"url"`
	CitationStyle string   `json:"citation_style"`
}
