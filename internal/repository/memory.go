package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"compliance-service/internal/models"
)

// MemoryRepository is an in-memory implementation of ProfileStore and
// ObligationStore, used in tests and as a dependency-free fallback. All
// state is explicit; there is no process-wide ambient store.
type MemoryRepository struct {
	mu          sync.RWMutex
	profiles    map[string]models.BusinessProfile
	obligations map[string]map[string]models.ComplianceObligation // profileID -> obligationID -> obligation

	// FailWrites makes mutating operations return this error, for testing
	// store-unavailable behavior.
	FailWrites error
	// FailReads makes read operations return this error.
	FailReads error
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles:    make(map[string]models.BusinessProfile),
		obligations: make(map[string]map[string]models.ComplianceObligation),
	}
}

// GetProfile fetches a profile by id
func (m *MemoryRepository) GetProfile(_ context.Context, id string) (*models.BusinessProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	profile, ok := m.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

// CreateProfile stores a profile
func (m *MemoryRepository) CreateProfile(_ context.Context, profile *models.BusinessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.profiles[profile.ID] = *profile
	return nil
}

// UpdateProfile replaces a stored profile
func (m *MemoryRepository) UpdateProfile(_ context.Context, profile *models.BusinessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	profile.UpdatedAt = time.Now()
	m.profiles[profile.ID] = *profile
	return nil
}

// GetObligations lists stored obligations for a profile in insertion order
// by creation time, then id, matching the database implementation.
func (m *MemoryRepository) GetObligations(_ context.Context, profileID string) ([]models.ComplianceObligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}

	stored := m.obligations[profileID]
	result := make([]models.ComplianceObligation, 0, len(stored))
	for _, obl := range stored {
		result = append(result, obl)
	}
	sortObligations(result)
	return result, nil
}

// ReplaceObligations applies deletions and upserts atomically under the lock
func (m *MemoryRepository) ReplaceObligations(_ context.Context, profileID string, upserts []models.ComplianceObligation, deleteIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}

	stored, ok := m.obligations[profileID]
	if !ok {
		stored = make(map[string]models.ComplianceObligation)
		m.obligations[profileID] = stored
	}
	for _, id := range deleteIDs {
		delete(stored, id)
	}
	for _, obl := range upserts {
		if existing, exists := stored[obl.ID]; exists {
			obl.CreatedAt = existing.CreatedAt
		} else if obl.CreatedAt.IsZero() {
			obl.CreatedAt = time.Now()
		}
		obl.UpdatedAt = time.Now()
		stored[obl.ID] = obl
	}
	return nil
}

// UpdateObligationStatus marks a stored obligation with the given status
func (m *MemoryRepository) UpdateObligationStatus(_ context.Context, obligationID string, status models.ObligationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}

	for _, stored := range m.obligations {
		if obl, ok := stored[obligationID]; ok {
			obl.Status = status
			obl.UpdatedAt = time.Now()
			stored[obligationID] = obl
			return nil
		}
	}
	return ErrObligationNotFound
}

func sortObligations(obligations []models.ComplianceObligation) {
	sort.Slice(obligations, func(i, j int) bool {
		if !obligations[i].CreatedAt.Equal(obligations[j].CreatedAt) {
			return obligations[i].CreatedAt.Before(obligations[j].CreatedAt)
		}
		return obligations[i].ID < obligations[j].ID
	})
}
