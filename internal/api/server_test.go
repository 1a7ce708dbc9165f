package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/labkite/researchdesk/internal/config"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/pkg/database"
)

// MockProducer simulates the Kafka producer for testing.
type MockProducer struct {
	sarama.SyncProducer
	messages []*sarama.ProducerMessage
}

func (m *MockProducer) SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error) {
	m.messages = append(m.messages, msg)
	return 0, 0, nil
}

func (m *MockProducer) Close() error { return nil }

// stubAuth stands in for the Supabase credential check.
type stubAuth struct {
	userID string
	err    error
}

func (a *stubAuth) SignIn(email, password string) (string, error) {
	return a.userID, a.err
}

// setupTestServer initializes a test instance of the API server. Routes are
// re-registered on a bare app with a fixed session injected, standing in
// for the verified JWT.
func setupTestServer(t *testing.T, auth *stubAuth) (*Server, sqlmock.Sqlmock, *miniredis.Miniredis, *MockProducer) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")

	miniRedis, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(miniRedis.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: miniRedis.Addr()})

	producer := &MockProducer{}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: ":8080", Environment: "development"},
		JWT:    config.JWTConfig{Secret: "test-secret", Expiration: 24 * time.Hour},
		Kafka:  config.KafkaConfig{Topic: "test-topic"},
	}

	clients := &database.Clients{DB: db, Redis: redisClient}
	server := NewServer(cfg, clients, producer, auth)

	// Replace the app to skip the JWT middleware, injecting the session the
	// middleware would have established.
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwtv4.Token{Claims: jwtv4.MapClaims{
			"sub":   "user-1",
			"email": "user@example.com",
		}})
		return c.Next()
	})
	server.app = app

	app.Post("/api/login", server.handleLogin)
	app.Get("/api/queries", server.handleListQueries)
	app.Post("/api/queries", server.handleSubmitQuery)
	app.Get("/api/queries/:id/recall", server.handleRecallQuery)
	app.Delete("/api/workspaces/:id", server.handleDeleteWorkspace)
	app.Get("/api/subscription", server.handleGetSubscription)

	return server, mock, miniRedis, producer
}

func subscriptionRows(limit, used int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "tier", "monthly_query_limit", "monthly_queries_used", "status",
		"current_period_start", "current_period_end", "stripe_customer_id", "stripe_subscription_id",
		"created_at", "updated_at",
	}).AddRow("sub-1", "user-1", "research", limit, used, "active", now, now.AddDate(0, 1, 0), nil, nil, now, now)
}

func queryRows(agents string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "query_text", "ai_agents_used", "status",
		"results", "citations", "created_at", "updated_at",
	}).AddRow("query-1", "user-1", "Quantum Computing", "Effects on drug discovery", []byte(agents), "pending", nil, nil, now, now)
}

func TestHandleLogin(t *testing.T) {
	server, mock, _, _ := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("user-1", "user@example.com", "student").
		WillReturnResult(sqlmock.NewResult(0, 1))

	payload, _ := json.Marshal(models.LoginRequest{Email: "user@example.com", Password: "secret"})
	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body models.LoginResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleLoginInvalidCredentials(t *testing.T) {
	server, _, _, _ := setupTestServer(t, &stubAuth{err: errors.New("invalid login credentials")})

	payload, _ := json.Marshal(models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleSubmitQuery(t *testing.T) {
	server, mock, miniRedis, producer := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 247))
	mock.ExpectQuery("INSERT INTO research_queries").
		WillReturnRows(queryRows("{crow}"))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 247))

	payload, _ := json.Marshal(models.SubmitQueryRequest{
		Title:     "Quantum Computing",
		QueryText: "Effects on drug discovery",
		Agents:    []string{"crow"},
	})
	req := httptest.NewRequest("POST", "/api/queries", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Query     models.ResearchQuery `json:"query"`
		Remaining int                  `json:"remaining"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.StatusPending, body.Query.Status)
	assert.Equal(t, 253, body.Remaining)

	assert.Len(t, producer.messages, 1)
	status, err := miniRedis.Get("query:query-1")
	assert.NoError(t, err)
	assert.Equal(t, "pending", status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSubmitQueryQuotaExceeded(t *testing.T) {
	server, mock, _, producer := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 500))

	payload, _ := json.Marshal(models.SubmitQueryRequest{
		Title:     "Quantum Computing",
		QueryText: "Effects on drug discovery",
		Agents:    []string{"crow"},
	})
	req := httptest.NewRequest("POST", "/api/queries", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	assert.Empty(t, producer.messages)
	// No insert was attempted.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSubmitQueryValidation(t *testing.T) {
	server, mock, _, producer := setupTestServer(t, &stubAuth{userID: "user-1"})

	payload, _ := json.Marshal(models.SubmitQueryRequest{Title: "  ", QueryText: "", Agents: nil})
	req := httptest.NewRequest("POST", "/api/queries", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Fields, 3)

	assert.Empty(t, producer.messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetSubscriptionAbsent(t *testing.T) {
	server, mock, _, _ := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("GET", "/api/subscription", nil)
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Subscription *models.Subscription `json:"subscription"`
		Remaining    int                  `json:"remaining"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body.Subscription)
	assert.Equal(t, 0, body.Remaining)
}

func TestHandleRecallFallsBackToDefaultAgent(t *testing.T) {
	server, mock, _, _ := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectQuery("SELECT (.+) FROM research_queries WHERE id").
		WithArgs("query-1", "user-1").
		WillReturnRows(queryRows("{}"))

	req := httptest.NewRequest("GET", "/api/queries/query-1/recall", nil)
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Title     string   `json:"title"`
		QueryText string   `json:"query_text"`
		Agents    []string `json:"ai_agents"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Quantum Computing", body.Title)
	assert.Equal(t, []string{"crow"}, body.Agents)
}

func TestHandleDeleteWorkspaceNotOwned(t *testing.T) {
	server, mock, _, _ := setupTestServer(t, &stubAuth{userID: "user-1"})

	mock.ExpectExec("DELETE FROM workspace_members").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM workspaces").
		WithArgs("ws-9", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest("DELETE", "/api/workspaces/ws-9", nil)
	resp, err := server.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
