// Package supabase wraps the gotrue auth API used to validate user
// credentials at login. The resulting auth user id is what every owned row
// references.
package supabase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go"
)

// Authenticator validates credentials against an auth backend.
type Authenticator interface {
	SignIn(email, password string) (userID string, err error)
}

// Client talks to a Supabase gotrue instance.
type Client struct {
	auth gotrue.Client
}

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	parts := strings.Split(url, ".")
	return parts[0]
}

// NewClient initializes the Supabase authentication client and verifies
// connectivity.
func NewClient(supabaseURL, serviceKey string) (*Client, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase URL and service key must be set")
	}

	projectRef := extractProjectRef(supabaseURL)
	slog.Info("Initializing Supabase client", "project_ref", projectRef)

	client := gotrue.New(projectRef, serviceKey)
	if _, err := client.GetSettings(); err != nil {
		return nil, fmt.Errorf("failed to connect to Supabase: %w", err)
	}

	return &Client{auth: client}, nil
}

// SignIn checks the credentials and returns the auth user id on success.
func (c *Client) SignIn(email, password string) (string, error) {
	res, err := c.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return "", fmt.Errorf("authentication rejected")
	}
	return res.User.ID.String(), nil
}
