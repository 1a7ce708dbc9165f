package api

import (
	"github.com/gofiber/fiber/v2"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"github.com/labkite/researchdesk/internal/apperr"
)

// Session identifies the authenticated caller for one request. It is
// resolved from the verified JWT once per request and passed explicitly
// into every store call; no handler reads identity from ambient state.
type Session struct {
	UserID string
	Email  string
}

// sessionFrom extracts the session from the token the jwt middleware
// verified. Owner-scoped work is impossible without a subject claim.
func sessionFrom(c *fiber.Ctx) (Session, error) {
	token, ok := c.Locals("user").(*jwtv4.Token)
	if !ok {
		return Session{}, apperr.ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		return Session{}, apperr.ErrUnauthenticated
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Session{}, apperr.ErrUnauthenticated
	}
	email, _ := claims["email"].(string)
	return Session{UserID: sub, Email: email}, nil
}
