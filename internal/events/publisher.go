package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"compliance-service/internal/models"
)

const (
	subjectObligationsRefreshed = "compliance.obligations.refreshed"
	subjectDeadlineAlert        = "compliance.alert"
)

// ObligationsRefreshedEvent is published after a successful refresh
type ObligationsRefreshedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	ProfileID    string    `json:"profile_id"`
	Total        int       `json:"total"`
	SkippedRules int       `json:"skipped_rules,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// DeadlineAlertEvent carries one risk alert for downstream notification
// services. The compliance service decides which deadlines deserve an
// alert; delivery (email, calendar, push) happens elsewhere.
type DeadlineAlertEvent struct {
	EventID    string            `json:"event_id"`
	EventType  string            `json:"event_type"`
	ProfileID  string            `json:"profile_id"`
	Level      models.AlertLevel `json:"level"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	DeadlineID string            `json:"deadline_id"`
	Action     string            `json:"action"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Publisher publishes compliance events to NATS
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher. Returns an error
// when NATS_URL is not set; callers treat a missing publisher as
// events-disabled rather than fatal.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("compliance-service-publisher"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishObligationsRefreshed publishes an obligations refreshed event
func (p *Publisher) PublishObligationsRefreshed(_ context.Context, profileID string, total, skipped int) error {
	event := ObligationsRefreshedEvent{
		EventID:      uuid.New().String(),
		EventType:    subjectObligationsRefreshed,
		ProfileID:    profileID,
		Total:        total,
		SkippedRules: skipped,
		Timestamp:    time.Now(),
	}
	return p.publish(subjectObligationsRefreshed, event)
}

// PublishDeadlineAlert publishes a deadline alert event
func (p *Publisher) PublishDeadlineAlert(_ context.Context, profileID string, alert models.RiskAlert) error {
	event := DeadlineAlertEvent{
		EventID:    uuid.New().String(),
		EventType:  subjectDeadlineAlert,
		ProfileID:  profileID,
		Level:      alert.Level,
		Title:      alert.Title,
		Message:    alert.Message,
		DeadlineID: alert.DeadlineID,
		Action:     alert.Action,
		Timestamp:  time.Now(),
	}
	return p.publish(subjectDeadlineAlert, event)
}

func (p *Publisher) publish(subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.logger.WithField("subject", subject).Debug("Published event")
	return nil
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
