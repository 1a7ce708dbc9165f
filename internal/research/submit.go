// Package research implements the query submission workflow: validate the
// form, check the quota guard, persist the pending row, and hand the query
// to the agent pipeline. Status transitions after pending belong to the
// worker, never to this package.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"github.com/labkite/researchdesk/internal/agents"
	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/internal/quota"
	"github.com/labkite/researchdesk/internal/store"
)

// Form holds the submission fields as the user entered them. Agent order is
// significant and survives the round trip through storage.
type Form struct {
	Title     string
	QueryText string
	Agents    []string
}

// DefaultForm is the state a cleared form returns to.
func DefaultForm() Form {
	return Form{Agents: []string{agents.DefaultAgent}}
}

// Validate checks every field and reports the full set of problems at
// once, in a fixed order, so the caller learns everything wrong with one
// attempt.
func Validate(form Form) error {
	var fields []string
	if strings.TrimSpace(form.Title) == "" {
		fields = append(fields, "title is required")
	}
	if strings.TrimSpace(form.QueryText) == "" {
		fields = append(fields, "query text is required")
	}
	if len(form.Agents) == 0 {
		fields = append(fields, "select at least one AI agent")
	} else {
		for _, id := range form.Agents {
			if !agents.Known(id) {
				fields = append(fields, fmt.Sprintf("unknown agent %q", id))
			}
		}
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// Submitter runs the submission workflow.
type Submitter struct {
	store    *store.Store
	producer sarama.SyncProducer
	topic    string
}

func NewSubmitter(st *store.Store, producer sarama.SyncProducer, topic string) *Submitter {
	return &Submitter{store: st, producer: producer, topic: topic}
}

// Submit validates the form, checks the quota, persists a pending query and
// publishes it for agent processing. On success the form is cleared back to
// its defaults; on any failure it is left populated so the user can fix and
// retry. Validation and quota failures never reach the store.
func (s *Submitter) Submit(ctx context.Context, userID string, form *Form) (models.ResearchQuery, error) {
	if userID == "" {
		return models.ResearchQuery{}, apperr.ErrUnauthenticated
	}
	if err := Validate(*form); err != nil {
		return models.ResearchQuery{}, err
	}

	sub, err := s.store.Subscriptions.GetByUser(ctx, userID)
	if err != nil {
		return models.ResearchQuery{}, apperr.Backend("failed to check subscription", err)
	}
	if err := quota.Check(sub); err != nil {
		return models.ResearchQuery{}, err
	}

	query, err := models.NewResearchQuery(userID, form.Title, form.QueryText, form.Agents)
	if err != nil {
		return models.ResearchQuery{}, &apperr.ValidationError{Fields: []string{err.Error()}}
	}

	created, err := s.store.Queries.Insert(ctx, query)
	if err != nil {
		return models.ResearchQuery{}, &apperr.BackendError{Err: err}
	}

	if err := s.publish(created); err != nil {
		// The row stays pending; a re-submit creates a fresh one.
		return models.ResearchQuery{}, apperr.Backend("failed to queue query for processing", err)
	}

	slog.Info("research query submitted", "query_id", created.ID, "user_id", userID, "agents", created.AIAgentsUsed)
	*form = DefaultForm()
	return created, nil
}

func (s *Submitter) publish(query models.ResearchQuery) error {
	payload, err := json.Marshal(query)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(query.ID),
		Value: sarama.ByteEncoder(payload),
	}
	_, _, err = s.producer.SendMessage(msg)
	return err
}

// Recall repopulates a form from a stored query exactly as it was
// submitted. A row with no recorded agents comes back with the default
// agent selected, never an empty selection.
func Recall(query *models.ResearchQuery) Form {
	form := Form{
		Title:     query.Title,
		QueryText: query.QueryText,
		Agents:    append([]string(nil), query.AIAgentsUsed...),
	}
	if len(form.Agents) == 0 {
		form.Agents = []string{agents.DefaultAgent}
	}
	return form
}
