package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compliance-service/internal/models"
)

// Cache TTL for per-profile obligation lists
const ObligationCacheTTL = 10 * time.Minute

const cacheKeyPrefix = "taxally:compliance:"

var (
	// ErrProfileNotFound is returned when no profile exists for the id
	ErrProfileNotFound = errors.New("profile not found")
	// ErrObligationNotFound is returned when no obligation exists for the id
	ErrObligationNotFound = errors.New("obligation not found")
)

// ProfileStore supplies business profiles by id
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.BusinessProfile, error)
	CreateProfile(ctx context.Context, profile *models.BusinessProfile) error
	UpdateProfile(ctx context.Context, profile *models.BusinessProfile) error
}

// ObligationStore persists compliance obligations per profile. A refresh is
// one logical update: deletions and upserts land in a single transaction so
// a failure leaves previously stored obligations untouched.
type ObligationStore interface {
	GetObligations(ctx context.Context, profileID string) ([]models.ComplianceObligation, error)
	ReplaceObligations(ctx context.Context, profileID string, upserts []models.ComplianceObligation, deleteIDs []string) error
	UpdateObligationStatus(ctx context.Context, obligationID string, status models.ObligationStatus) error
}

// ComplianceRepository is the gorm/postgres implementation of the profile
// and obligation stores, with redis cache-aside for obligation lists.
type ComplianceRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewComplianceRepository creates a new compliance repository. redisClient
// may be nil; caching is then disabled.
func NewComplianceRepository(db *gorm.DB, redisClient *redis.Client) *ComplianceRepository {
	return &ComplianceRepository{
		db:    db,
		redis: redisClient,
	}
}

func obligationsCacheKey(profileID string) string {
	return fmt.Sprintf("%sobligations:%s", cacheKeyPrefix, profileID)
}

func (r *ComplianceRepository) invalidateObligationsCache(ctx context.Context, profileID string) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, obligationsCacheKey(profileID)).Err()
}

// GetProfile fetches a business profile by id
func (r *ComplianceRepository) GetProfile(ctx context.Context, id string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile stores a new business profile
func (r *ComplianceRepository) CreateProfile(ctx context.Context, profile *models.BusinessProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// UpdateProfile updates an existing business profile
func (r *ComplianceRepository) UpdateProfile(ctx context.Context, profile *models.BusinessProfile) error {
	profile.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(profile).Error
}

// GetObligations lists the stored obligations for a profile, ordered by
// creation. Errors surface to the caller; an unreachable store must not
// masquerade as "no obligations".
func (r *ComplianceRepository) GetObligations(ctx context.Context, profileID string) ([]models.ComplianceObligation, error) {
	cacheKey := obligationsCacheKey(profileID)

	// Try cache first
	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var obligations []models.ComplianceObligation
			if err := json.Unmarshal([]byte(val), &obligations); err == nil {
				return obligations, nil
			}
		}
	}

	var obligations []models.ComplianceObligation
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at, id").
		Find(&obligations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch obligations: %w", err)
	}

	// Cache the result
	if r.redis != nil {
		if data, marshalErr := json.Marshal(obligations); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, ObligationCacheTTL)
		}
	}

	return obligations, nil
}

// ReplaceObligations applies a refresh diff in one transaction: obligations
// whose rule no longer applies are deleted, the rest are upserted keyed on
// their deterministic id so repeated refreshes never accumulate duplicates.
func (r *ComplianceRepository) ReplaceObligations(ctx context.Context, profileID string, upserts []models.ComplianceObligation, deleteIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			if err := tx.Where("profile_id = ? AND id IN ?", profileID, deleteIDs).
				Delete(&models.ComplianceObligation{}).Error; err != nil {
				return err
			}
		}
		if len(upserts) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"rule_id", "kind", "name", "category", "description",
					"frequency", "penalty", "help_text", "status", "due_date", "updated_at",
				}),
			}).Create(&upserts).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace obligations: %w", err)
	}

	r.invalidateObligationsCache(ctx, profileID)
	return nil
}

// UpdateObligationStatus marks an obligation completed or pending
func (r *ComplianceRepository) UpdateObligationStatus(ctx context.Context, obligationID string, status models.ObligationStatus) error {
	var obligation models.ComplianceObligation
	if err := r.db.WithContext(ctx).First(&obligation, "id = ?", obligationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrObligationNotFound
		}
		return fmt.Errorf("failed to fetch obligation: %w", err)
	}

	err := r.db.WithContext(ctx).Model(&models.ComplianceObligation{}).
		Where("id = ?", obligationID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to update obligation status: %w", err)
	}

	r.invalidateObligationsCache(ctx, obligation.ProfileID)
	return nil
}
