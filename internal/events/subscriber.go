package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"compliance-service/internal/models"
	"compliance-service/internal/repository"
)

// ProfileUpdatedEvent is published by the profile-owning side whenever a
// business profile changes in a way that can affect obligation
// applicability (turnover bracket, business type, GST registration).
type ProfileUpdatedEvent struct {
	EventType string    `json:"event_type"`
	ProfileID string    `json:"profile_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Refresher re-derives the obligation set for a profile
type Refresher interface {
	RefreshObligations(ctx context.Context, profileID string, now time.Time) (*models.RefreshResponse, error)
}

// Subscriber handles NATS event subscriptions for the compliance service
type Subscriber struct {
	conn      *nats.Conn
	refresher Refresher
	logger    *logrus.Entry
}

// NewSubscriber creates a new event subscriber
func NewSubscriber(refresher Refresher, logger *logrus.Logger) (*Subscriber, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("compliance-service-subscriber"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Subscriber{
		conn:      conn,
		refresher: refresher,
		logger:    logger.WithField("component", "events.subscriber"),
	}, nil
}

// Start begins listening for events
func (s *Subscriber) Start() error {
	_, err := s.conn.Subscribe("profiles.updated", func(msg *nats.Msg) {
		s.handleProfileUpdated(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to profiles.updated: %w", err)
	}

	s.logger.Info("Subscribed to profiles.updated events for automatic obligation refresh")
	return nil
}

// handleProfileUpdated re-runs the rules pipeline when a profile changes
func (s *Subscriber) handleProfileUpdated(msg *nats.Msg) {
	var event ProfileUpdatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal profiles.updated event")
		return
	}

	if event.ProfileID == "" {
		s.logger.Warn("No profile id in profiles.updated event, skipping refresh")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.refresher.RefreshObligations(ctx, event.ProfileID, time.Now())
	switch {
	case err == nil:
		s.logger.WithField("profile_id", event.ProfileID).Info("Refreshed obligations after profile update")
	case errors.Is(err, repository.ErrLockNotAcquired):
		// Another refresh is already running for this profile
		s.logger.WithField("profile_id", event.ProfileID).Debug("Refresh already in progress, skipping")
	case errors.Is(err, repository.ErrProfileNotFound):
		s.logger.WithField("profile_id", event.ProfileID).Warn("Profile from event not found, skipping refresh")
	default:
		s.logger.WithError(err).Error("Failed to refresh obligations after profile update")
	}
}

// Close closes the subscriber connection
func (s *Subscriber) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
