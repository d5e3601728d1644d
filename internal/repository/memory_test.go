package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-service/internal/models"
)

func TestMemoryRepository_Profiles(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile := models.BusinessProfile{ID: "profile-1", Name: "Sharma Traders", Turnover: models.Turnover20LTo1Cr}
	require.NoError(t, repo.CreateProfile(ctx, &profile))

	got, err := repo.GetProfile(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "Sharma Traders", got.Name)

	profile.Name = "Sharma & Sons"
	require.NoError(t, repo.UpdateProfile(ctx, &profile))

	got, err = repo.GetProfile(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "Sharma & Sons", got.Name)
}

func TestMemoryRepository_ReplaceObligations(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	upserts := []models.ComplianceObligation{
		{ID: "profile-1:RULE_A", ProfileID: "profile-1", RuleID: "RULE_A", Status: models.ObligationPending},
		{ID: "profile-1:RULE_B", ProfileID: "profile-1", RuleID: "RULE_B", Status: models.ObligationPending},
	}
	require.NoError(t, repo.ReplaceObligations(ctx, "profile-1", upserts, nil))

	stored, err := repo.GetObligations(ctx, "profile-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	createdAt := stored[0].CreatedAt
	assert.False(t, createdAt.IsZero())

	// Upserting the same id keeps the original creation time; the delete
	// list drops rows the upserts no longer mention.
	require.NoError(t, repo.ReplaceObligations(ctx, "profile-1",
		[]models.ComplianceObligation{upserts[0]}, []string{"profile-1:RULE_B"}))

	stored, err = repo.GetObligations(ctx, "profile-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "profile-1:RULE_A", stored[0].ID)
	assert.Equal(t, createdAt, stored[0].CreatedAt)
}

func TestMemoryRepository_UpdateObligationStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	err := repo.UpdateObligationStatus(ctx, "missing", models.ObligationCompleted)
	assert.ErrorIs(t, err, ErrObligationNotFound)

	require.NoError(t, repo.ReplaceObligations(ctx, "profile-1", []models.ComplianceObligation{
		{ID: "profile-1:RULE_A", ProfileID: "profile-1", RuleID: "RULE_A", Status: models.ObligationPending},
	}, nil))

	require.NoError(t, repo.UpdateObligationStatus(ctx, "profile-1:RULE_A", models.ObligationCompleted))

	stored, err := repo.GetObligations(ctx, "profile-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.ObligationCompleted, stored[0].Status)
}

func TestMemoryRepository_ErrorInjection(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	readErr := errors.New("read failed")
	writeErr := errors.New("write failed")
	repo.FailReads = readErr
	repo.FailWrites = writeErr

	_, err := repo.GetProfile(ctx, "profile-1")
	assert.ErrorIs(t, err, readErr)
	_, err = repo.GetObligations(ctx, "profile-1")
	assert.ErrorIs(t, err, readErr)

	assert.ErrorIs(t, repo.CreateProfile(ctx, &models.BusinessProfile{ID: "p"}), writeErr)
	assert.ErrorIs(t, repo.ReplaceObligations(ctx, "profile-1", nil, nil), writeErr)
	assert.ErrorIs(t, repo.UpdateObligationStatus(ctx, "x", models.ObligationCompleted), writeErr)
}
