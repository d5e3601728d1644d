package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-service/internal/models"
)

func testProfile(turnover models.TurnoverRange, hasGST bool) models.BusinessProfile {
	return models.BusinessProfile{
		ID:       "profile-1",
		Name:     "Sharma Traders",
		Type:     models.BusinessTypeMicroTrader,
		Turnover: turnover,
		State:    "Maharashtra",
		HasGST:   hasGST,
	}
}

func ruleIDs(obligations []models.ComplianceObligation) []string {
	ids := make([]string, 0, len(obligations))
	for _, obl := range obligations {
		ids = append(ids, obl.RuleID)
	}
	return ids
}

func TestEvaluateObligations_LargeGSTRegisteredBusiness(t *testing.T) {
	profile := testProfile(models.TurnoverAbove1Cr, true)

	obligations, skipped := EvaluateObligations(profile)

	assert.Zero(t, skipped)
	assert.Equal(t, []string{
		"GSTR1_MONTHLY",
		"GSTR3B_MONTHLY",
		"ITR_INDIVIDUAL",
		"ADVANCE_TAX_Q1",
		"ADVANCE_TAX_Q2",
		"ADVANCE_TAX_Q3",
		"ADVANCE_TAX_Q4",
		"TDS_194C",
		"TDS_RETURN",
	}, ruleIDs(obligations))

	// Already registered, so the registration rule must not fire; monthly
	// filers never get the QRMP variant.
	assert.NotContains(t, ruleIDs(obligations), "GST_REG_20L")
	assert.NotContains(t, ruleIDs(obligations), "GSTR1_QUARTERLY")
}

func TestEvaluateObligations_SmallUnregisteredBusiness(t *testing.T) {
	profile := testProfile(models.TurnoverBelow20L, false)

	obligations, skipped := EvaluateObligations(profile)

	assert.Zero(t, skipped)
	// Below the threshold with no GST: only the universal ITR rule applies.
	assert.Equal(t, []string{"ITR_INDIVIDUAL"}, ruleIDs(obligations))
}

func TestEvaluateObligations_QRMPForMidSizeGSTBusiness(t *testing.T) {
	profile := testProfile(models.Turnover20LTo1Cr, true)

	obligations, _ := EvaluateObligations(profile)
	ids := ruleIDs(obligations)

	assert.Contains(t, ids, "GSTR1_QUARTERLY")
	assert.NotContains(t, ids, "GSTR1_MONTHLY")
	assert.Contains(t, ids, "GSTR3B_MONTHLY")
}

func TestEvaluateObligations_ExactlyOneGSTR1Variant(t *testing.T) {
	for _, turnover := range []models.TurnoverRange{
		models.TurnoverBelow20L,
		models.Turnover20LTo1Cr,
		models.TurnoverAbove1Cr,
	} {
		obligations, _ := EvaluateObligations(testProfile(turnover, true))

		variants := 0
		for _, id := range ruleIDs(obligations) {
			if id == "GSTR1_MONTHLY" || id == "GSTR1_QUARTERLY" {
				variants++
			}
		}
		assert.Equal(t, 1, variants, "turnover %s", turnover)
	}
}

func TestEvaluateObligations_DeterministicIDs(t *testing.T) {
	profile := testProfile(models.TurnoverAbove1Cr, true)

	first, _ := EvaluateObligations(profile)
	second, _ := EvaluateObligations(profile)
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, models.ObligationID(profile.ID, first[i].RuleID), first[i].ID)
	}
}

func TestEvaluateObligations_UnknownTurnoverSkipsTurnoverRules(t *testing.T) {
	profile := testProfile("5Cr_to_10Cr", true)

	obligations, skipped := EvaluateObligations(profile)

	// 9 of the 11 rules read the turnover bracket and must be skipped.
	assert.Equal(t, 9, skipped)
	assert.Equal(t, []string{"GSTR3B_MONTHLY", "ITR_INDIVIDUAL"}, ruleIDs(obligations))
}

func TestEvaluateObligations_NewObligationsArePending(t *testing.T) {
	obligations, _ := EvaluateObligations(testProfile(models.TurnoverAbove1Cr, true))

	for _, obl := range obligations {
		assert.Equal(t, models.ObligationPending, obl.Status)
		assert.Equal(t, "profile-1", obl.ProfileID)
		assert.Nil(t, obl.DueDate)
	}
}

func TestComplianceRules_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool, len(ComplianceRules))
	for _, rule := range ComplianceRules {
		assert.False(t, seen[rule.ID], "duplicate rule id %s", rule.ID)
		seen[rule.ID] = true
	}
}

func TestSummarizeCompliance(t *testing.T) {
	summary := SummarizeCompliance(testProfile(models.TurnoverAbove1Cr, true))

	assert.Equal(t, 9, summary.TotalObligations)
	assert.Equal(t, 2, summary.GSTObligations)
	assert.Equal(t, 5, summary.IncomeTaxObligations)
	assert.Equal(t, 2, summary.TDSObligations)
	assert.False(t, summary.NeedsGSTRegistration)

	summary = SummarizeCompliance(testProfile(models.Turnover20LTo1Cr, false))
	assert.True(t, summary.NeedsGSTRegistration)
}
