package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/internal/store"
	"github.com/labkite/researchdesk/pkg/database"
)

// MockProducer records published messages instead of talking to Kafka.
type MockProducer struct {
	sarama.SyncProducer
	messages []*sarama.ProducerMessage
	err      error
}

func (m *MockProducer) SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.messages = append(m.messages, msg)
	return 0, 0, nil
}

func (m *MockProducer) Close() error { return nil }

func setupSubmitter(t *testing.T) (*Submitter, sqlmock.Sqlmock, *miniredis.Miniredis, *MockProducer) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")

	miniRedis, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(miniRedis.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: miniRedis.Addr()})

	clients := &database.Clients{DB: db, Redis: redisClient}
	producer := &MockProducer{}

	return NewSubmitter(store.New(clients), producer, "test-topic"), mock, miniRedis, producer
}

func subscriptionRows(limit, used int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "tier", "monthly_query_limit", "monthly_queries_used", "status",
		"current_period_start", "current_period_end", "stripe_customer_id", "stripe_subscription_id",
		"created_at", "updated_at",
	}).AddRow("sub-1", "user-1", "research", limit, used, "active", now, now.AddDate(0, 1, 0), nil, nil, now, now)
}

func queryRow(id, userID, title, text, agents string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "query_text", "ai_agents_used", "status",
		"results", "citations", "created_at", "updated_at",
	}).AddRow(id, userID, title, text, []byte(agents), "pending", nil, nil, now, now)
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Validate(Form{Title: "   ", QueryText: "\t", Agents: nil})

	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{
		"title is required",
		"query text is required",
		"select at least one AI agent",
	}, ve.Fields)
}

func TestValidateRejectsUnknownAgent(t *testing.T) {
	err := Validate(Form{Title: "T", QueryText: "Q", Agents: []string{"crow", "pigeon"}})

	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{`unknown agent "pigeon"`}, ve.Fields)
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	assert.NoError(t, Validate(Form{Title: "T", QueryText: "Q", Agents: []string{"falcon", "crow"}}))
}

func TestSubmitInvalidFormNeverReachesBackend(t *testing.T) {
	submitter, mock, _, producer := setupSubmitter(t)

	form := Form{Title: "", QueryText: "something", Agents: []string{"crow"}}
	_, err := submitter.Submit(context.Background(), "user-1", &form)

	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Empty(t, producer.messages)
	// Form stays populated for the retry.
	assert.Equal(t, "something", form.QueryText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitQuotaExhausted(t *testing.T) {
	submitter, mock, _, producer := setupSubmitter(t)

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 500))

	form := Form{Title: "Quantum Computing", QueryText: "Effects on drug discovery", Agents: []string{"crow"}}
	_, err := submitter.Submit(context.Background(), "user-1", &form)

	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))
	assert.Empty(t, producer.messages)
	// No insert was attempted.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitWithoutSubscription(t *testing.T) {
	submitter, mock, _, producer := setupSubmitter(t)

	// An empty result set means the user has no subscription row at all.
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	form := Form{Title: "T", QueryText: "Q", Agents: []string{"crow"}}
	_, err := submitter.Submit(context.Background(), "user-1", &form)

	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))
	assert.Empty(t, producer.messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitSuccess(t *testing.T) {
	submitter, mock, miniRedis, producer := setupSubmitter(t)

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 247))
	mock.ExpectQuery("INSERT INTO research_queries").
		WithArgs("user-1", "Quantum Computing", "Effects on drug discovery", sqlmock.AnyArg(), "pending").
		WillReturnRows(queryRow("query-1", "user-1", "Quantum Computing", "Effects on drug discovery", "{falcon,crow}"))

	// A stale cached list must be dropped by the successful mutation.
	miniRedis.Set("research_queries:user:user-1", "[]")

	form := Form{Title: "  Quantum Computing  ", QueryText: " Effects on drug discovery ", Agents: []string{"falcon", "crow"}}
	created, err := submitter.Submit(context.Background(), "user-1", &form)
	assert.NoError(t, err)

	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "Quantum Computing", created.Title)
	assert.Equal(t, []string{"falcon", "crow"}, []string(created.AIAgentsUsed))

	// Form cleared back to defaults
	assert.Equal(t, DefaultForm(), form)

	// Query handed to the agent pipeline
	assert.Len(t, producer.messages, 1)
	assert.Equal(t, "test-topic", producer.messages[0].Topic)

	// Initial status mirrored into Redis, list cache invalidated
	status, err := miniRedis.Get("query:query-1")
	assert.NoError(t, err)
	assert.Equal(t, "pending", status)
	assert.False(t, miniRedis.Exists("research_queries:user:user-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBackendFailureKeepsForm(t *testing.T) {
	submitter, mock, miniRedis, producer := setupSubmitter(t)

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows(500, 247))
	mock.ExpectQuery("INSERT INTO research_queries").
		WillReturnError(errors.New("permission denied for table research_queries"))

	miniRedis.Set("research_queries:user:user-1", "[]")

	form := Form{Title: "T", QueryText: "Q", Agents: []string{"crow"}}
	_, err := submitter.Submit(context.Background(), "user-1", &form)

	var be *apperr.BackendError
	assert.True(t, errors.As(err, &be))
	// The store's message reaches the user verbatim.
	assert.Contains(t, err.Error(), "permission denied for table research_queries")

	// Form stays populated, nothing published, cache untouched.
	assert.Equal(t, "T", form.Title)
	assert.Equal(t, "Q", form.QueryText)
	assert.Empty(t, producer.messages)
	assert.True(t, miniRedis.Exists("research_queries:user:user-1"))
}

func TestSubmitUnauthenticated(t *testing.T) {
	submitter, _, _, producer := setupSubmitter(t)

	form := Form{Title: "T", QueryText: "Q", Agents: []string{"crow"}}
	_, err := submitter.Submit(context.Background(), "", &form)

	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
	assert.Empty(t, producer.messages)
}

func TestRecallRoundTrip(t *testing.T) {
	query := &models.ResearchQuery{
		Title:        "Quantum Computing",
		QueryText:    "Effects on drug discovery",
		AIAgentsUsed: pq.StringArray{"falcon", "crow"},
	}

	form := Recall(query)
	assert.Equal(t, "Quantum Computing", form.Title)
	assert.Equal(t, "Effects on drug discovery", form.QueryText)
	// Selection order is preserved exactly.
	assert.Equal(t, []string{"falcon", "crow"}, form.Agents)
}

func TestRecallEmptyAgentsFallsBackToDefault(t *testing.T) {
	form := Recall(&models.ResearchQuery{Title: "T", QueryText: "Q"})
	assert.Equal(t, []string{"crow"}, form.Agents)
}
