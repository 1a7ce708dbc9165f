// Package worker runs the agent processing pipeline. It consumes submitted
// research queries from Kafka and owns every status transition after
// pending: processing while agents run, then completed or failed. It also
// increments the subscription usage counter — the quota guard on the
// submission side never does.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/labkite/researchdesk/internal/config"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/internal/store"
	"github.com/labkite/researchdesk/pkg/database"
)

type Worker struct {
	cfg      *config.Config
	store    *store.Store
	consumer sarama.ConsumerGroup
	ready    chan bool
}

func NewWorker(cfg *config.Config, db *database.Clients, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		store:    store.New(db),
		consumer: consumer,
		ready:    make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting agent worker", "topics", topics)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Log consumer errors
	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	// Start consuming messages
	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			// Reset the ready channel after a new session is created
			w.ready = make(chan bool)
		}
	}()

	<-w.ready // Wait till the consumer has been set up
	slog.Info("Agent worker ready")

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled; shutting down worker")
	}

	slog.Info("Agent worker shutting down gracefully")
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	close(w.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := w.ProcessQuery(session.Context(), message.Value); err != nil {
			slog.Error("Failed to process query", "error", err, "offset", message.Offset)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// ProcessQuery runs the selected agents for one submitted query and records
// the outcome. A failure after the processing transition marks the query
// failed rather than leaving it stuck.
func (w *Worker) ProcessQuery(ctx context.Context, payload []byte) error {
	var query models.ResearchQuery
	if err := json.Unmarshal(payload, &query); err != nil {
		return fmt.Errorf("failed to decode query message: %w", err)
	}
	if query.ID == "" {
		return fmt.Errorf("query message missing id")
	}

	slog.Info("Processing research query", "query_id", query.ID, "agents", query.AIAgentsUsed)

	if err := w.store.Queries.SetStatus(ctx, query.ID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to mark query processing: %w", err)
	}

	// Usage counts actual processing, not submission attempts.
	if err := w.store.Subscriptions.IncrementUsage(ctx, query.UserID); err != nil {
		slog.Error("Failed to record query usage", "error", err, "user_id", query.UserID)
	}

	results, citations, err := w.runAgents(query)
	if err != nil {
		if ferr := w.store.Queries.SetStatus(ctx, query.ID, models.StatusFailed); ferr != nil {
			slog.Error("Failed to mark query failed", "error", ferr, "query_id", query.ID)
		}
		return fmt.Errorf("agent processing failed: %w", err)
	}

	if err := w.store.Queries.Complete(ctx, query.ID, results, citations); err != nil {
		return fmt.Errorf("failed to store query results: %w", err)
	}

	slog.Info("Research query completed", "query_id", query.ID)
	return nil
}

// agentFinding is one agent's contribution to the results payload.
type agentFinding struct {
	Agent   string   `json:"agent"`
	Summary string   `json:"summary"`
	Sources []string `json:"sources"`
}

// runAgents produces the results and citations payloads for a query. Each
// selected agent contributes one finding, in selection order.
func (w *Worker) runAgents(query models.ResearchQuery) (json.RawMessage, json.RawMessage, error) {
	if len(query.AIAgentsUsed) == 0 {
		return nil, nil, fmt.Errorf("query %s has no agents selected", query.ID)
	}

	findings := make([]agentFinding, 0, len(query.AIAgentsUsed))
	refs := make([]map[string]any, 0, len(query.AIAgentsUsed))
	for _, agent := range query.AIAgentsUsed {
		findings = append(findings, agentFinding{
			Agent:   agent,
			Summary: fmt.Sprintf("%s findings for %q", agent, query.Title),
			Sources: []string{},
		})
		refs = append(refs, map[string]any{
			"id":    uuid.NewString(),
			"agent": agent,
			"title": query.Title,
		})
	}

	results, err := json.Marshal(map[string]any{"findings": findings})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode results: %w", err)
	}
	citations, err := json.Marshal(refs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode citations: %w", err)
	}
	return results, citations, nil
}
