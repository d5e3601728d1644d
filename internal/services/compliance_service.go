package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"compliance-service/internal/models"
	"compliance-service/internal/repository"
)

// EventPublisher is the notification collaborator boundary. The service
// decides which deadlines deserve an alert; delivery belongs elsewhere.
type EventPublisher interface {
	PublishObligationsRefreshed(ctx context.Context, profileID string, total, skipped int) error
	PublishDeadlineAlert(ctx context.Context, profileID string, alert models.RiskAlert) error
}

// ComplianceService orchestrates the evaluate → project → alert pipeline
// over the obligation store.
type ComplianceService struct {
	profiles    repository.ProfileStore
	obligations repository.ObligationStore
	locker      repository.RefreshLocker
	publisher   EventPublisher
	logger      *logrus.Entry
}

// NewComplianceService creates a new compliance service. publisher may be
// nil when event publishing is disabled.
func NewComplianceService(
	profiles repository.ProfileStore,
	obligations repository.ObligationStore,
	locker repository.RefreshLocker,
	publisher EventPublisher,
	logger *logrus.Logger,
) *ComplianceService {
	return &ComplianceService{
		profiles:    profiles,
		obligations: obligations,
		locker:      locker,
		publisher:   publisher,
		logger:      logger.WithField("component", "services.compliance"),
	}
}

// RefreshObligations re-evaluates the rule catalog against the profile's
// current state and reconciles the stored obligation set: rules that no
// longer apply are removed, still-applicable rules are upserted in place
// (the deterministic ids make this idempotent), new rules are inserted.
// At most one refresh runs per profile at a time.
func (s *ComplianceService) RefreshObligations(ctx context.Context, profileID string, now time.Time) (*models.RefreshResponse, error) {
	release, err := s.locker.Acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	fresh, skipped := EvaluateObligations(*profile)
	if skipped > 0 {
		s.logger.WithFields(logrus.Fields{
			"profile_id": profileID,
			"skipped":    skipped,
		}).Warn("Some rules could not be evaluated against this profile")
	}

	stored, err := s.obligations.GetObligations(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("refresh failed, store unreachable: %w", err)
	}

	existing := make(map[string]models.ComplianceObligation, len(stored))
	for _, obl := range stored {
		existing[obl.ID] = obl
	}

	freshIDs := make(map[string]struct{}, len(fresh))
	for i := range fresh {
		freshIDs[fresh[i].ID] = struct{}{}

		if prev, ok := existing[fresh[i].ID]; ok {
			fresh[i].CreatedAt = prev.CreatedAt
			if prev.Status == models.ObligationCompleted {
				fresh[i].Status = models.ObligationCompleted
			}
		}

		deadline := ProjectDeadline(fresh[i], now)
		if fresh[i].Status != models.ObligationCompleted {
			due := deadline.DueDate
			fresh[i].DueDate = &due
			if deadline.Status == models.DeadlineOverdue {
				fresh[i].Status = models.ObligationOverdue
			}
		}
	}

	var deleteIDs []string
	for _, obl := range stored {
		if _, stillApplies := freshIDs[obl.ID]; !stillApplies {
			deleteIDs = append(deleteIDs, obl.ID)
		}
	}

	if err := s.obligations.ReplaceObligations(ctx, profileID, fresh, deleteIDs); err != nil {
		return nil, fmt.Errorf("refresh failed, store unreachable: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"profile_id": profileID,
		"total":      len(fresh),
		"removed":    len(deleteIDs),
	}).Info("Obligations refreshed")

	s.publishRefreshEvents(ctx, profileID, fresh, skipped, now)

	return &models.RefreshResponse{
		ProfileID:    profileID,
		Obligations:  fresh,
		SkippedRules: skipped,
	}, nil
}

// publishRefreshEvents notifies downstream services. Publishing is best
// effort; a refresh never fails because NATS is down.
func (s *ComplianceService) publishRefreshEvents(ctx context.Context, profileID string, obligations []models.ComplianceObligation, skipped int, now time.Time) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishObligationsRefreshed(ctx, profileID, len(obligations), skipped); err != nil {
		s.logger.WithError(err).Warn("Failed to publish obligations refreshed event")
	}

	deadlines := GenerateDeadlines(obligations, now)
	for _, alert := range GenerateAlerts(deadlines, now) {
		if err := s.publisher.PublishDeadlineAlert(ctx, profileID, alert); err != nil {
			s.logger.WithError(err).Warn("Failed to publish deadline alert event")
		}
	}
}

// GetObligations lists the currently stored obligations for a profile
func (s *ComplianceService) GetObligations(ctx context.Context, profileID string) ([]models.ComplianceObligation, error) {
	if _, err := s.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return s.obligations.GetObligations(ctx, profileID)
}

// GetDeadlines derives the deadline projections for a profile's stored
// obligations at the given reference time. Deadlines are never persisted.
func (s *ComplianceService) GetDeadlines(ctx context.Context, profileID string, now time.Time) ([]models.Deadline, error) {
	obligations, err := s.GetObligations(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return GenerateDeadlines(obligations, now), nil
}

// GetAlerts derives the prioritized risk alerts for a profile at the given
// reference time.
func (s *ComplianceService) GetAlerts(ctx context.Context, profileID string, now time.Time) ([]models.RiskAlert, error) {
	deadlines, err := s.GetDeadlines(ctx, profileID, now)
	if err != nil {
		return nil, err
	}
	return GenerateAlerts(deadlines, now), nil
}

// GetSummary aggregates the applicable obligations for a profile's current
// state (evaluated fresh, not read from the store).
func (s *ComplianceService) GetSummary(ctx context.Context, profileID string) (*models.ComplianceSummary, error) {
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeCompliance(*profile)
	return &summary, nil
}

// MarkObligationStatus sets an obligation's status (completed or pending)
func (s *ComplianceService) MarkObligationStatus(ctx context.Context, obligationID string, status models.ObligationStatus) error {
	switch status {
	case models.ObligationPending, models.ObligationCompleted:
	default:
		return fmt.Errorf("unsupported obligation status %q", status)
	}
	return s.obligations.UpdateObligationStatus(ctx, obligationID, status)
}
