package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-service/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func obligation(kind models.ObligationKind, frequency models.Frequency) models.ComplianceObligation {
	return models.ComplianceObligation{
		ID:        models.ObligationID("profile-1", string(kind)),
		ProfileID: "profile-1",
		RuleID:    string(kind),
		Kind:      kind,
		Name:      string(kind),
		Frequency: frequency,
		Status:    models.ObligationPending,
	}
}

func TestProjectDeadline_ITRRollsToNextYearAfterJuly(t *testing.T) {
	obl := obligation(models.KindITR, models.FrequencyAnnual)

	d := ProjectDeadline(obl, date(2026, time.August, 15))
	assert.Equal(t, date(2027, time.July, 31), d.DueDate)

	d = ProjectDeadline(obl, date(2026, time.March, 1))
	assert.Equal(t, date(2026, time.July, 31), d.DueDate)
}

func TestProjectDeadline_AdvanceTaxQ4RollsIndependently(t *testing.T) {
	obl := obligation(models.KindAdvanceTaxQ4, models.FrequencyQuarterly)

	d := ProjectDeadline(obl, date(2026, time.April, 1))
	assert.Equal(t, date(2027, time.March, 15), d.DueDate)

	d = ProjectDeadline(obl, date(2026, time.February, 1))
	assert.Equal(t, date(2026, time.March, 15), d.DueDate)

	// An anchor falling on the reference date itself is still this year's
	// occurrence, due today.
	d = ProjectDeadline(obl, date(2026, time.March, 15))
	assert.Equal(t, date(2026, time.March, 15), d.DueDate)
	assert.Equal(t, 0, d.DaysRemaining)
	assert.Equal(t, models.DeadlineDueSoon, d.Status)
}

func TestProjectDeadline_MonthlyFilingDays(t *testing.T) {
	now := date(2026, time.August, 15)

	d := ProjectDeadline(obligation(models.KindGSTR1Monthly, models.FrequencyMonthly), now)
	assert.Equal(t, date(2026, time.September, 11), d.DueDate)

	d = ProjectDeadline(obligation(models.KindGSTR3B, models.FrequencyMonthly), now)
	assert.Equal(t, date(2026, time.September, 20), d.DueDate)

	// Kinds without a mapped filing day land on the 15th of next month.
	d = ProjectDeadline(obligation(models.KindTDSContractor, models.FrequencyMonthly), now)
	assert.Equal(t, date(2026, time.September, 15), d.DueDate)
}

func TestProjectDeadline_MonthlyWrapsAcrossDecember(t *testing.T) {
	now := date(2026, time.December, 10)

	d := ProjectDeadline(obligation(models.KindGSTR3B, models.FrequencyMonthly), now)
	assert.Equal(t, date(2027, time.January, 20), d.DueDate)
}

func TestProjectDeadline_QuarterlyGSTR1Anchors(t *testing.T) {
	obl := obligation(models.KindGSTR1Quarterly, models.FrequencyQuarterly)

	d := ProjectDeadline(obl, date(2026, time.August, 15))
	assert.Equal(t, date(2026, time.October, 13), d.DueDate)

	// Past the October anchor the next occurrence is January of next year.
	d = ProjectDeadline(obl, date(2026, time.November, 1))
	assert.Equal(t, date(2027, time.January, 13), d.DueDate)
}

func TestProjectDeadline_TDSReturnAnchors(t *testing.T) {
	obl := obligation(models.KindTDSReturn, models.FrequencyQuarterly)

	d := ProjectDeadline(obl, date(2026, time.February, 15))
	assert.Equal(t, date(2026, time.May, 31), d.DueDate)

	d = ProjectDeadline(obl, date(2026, time.December, 1))
	assert.Equal(t, date(2027, time.January, 31), d.DueDate)
}

func TestProjectDeadline_UnknownKindFallsBackByFrequency(t *testing.T) {
	now := date(2026, time.August, 15)

	// Unrecognized quarterly kinds use generic quarter ends.
	d := ProjectDeadline(obligation(models.KindGeneric, models.FrequencyQuarterly), now)
	assert.Equal(t, date(2026, time.September, 30), d.DueDate)

	// Unrecognized annual kinds use the financial year end.
	d = ProjectDeadline(obligation(models.KindGeneric, models.FrequencyAnnual), now)
	assert.Equal(t, date(2027, time.March, 31), d.DueDate)
}

func TestProjectDeadline_OneTimeAndUnknownFrequency(t *testing.T) {
	now := date(2026, time.August, 15)

	d := ProjectDeadline(obligation(models.KindGSTRegistration, models.FrequencyOneTime), now)
	assert.Equal(t, now.Add(30*24*time.Hour), d.DueDate)

	obl := obligation(models.KindGeneric, "weekly")
	d = ProjectDeadline(obl, now)
	assert.Equal(t, now.Add(30*24*time.Hour), d.DueDate)
}

func TestProjectDeadline_CompletedPassesThrough(t *testing.T) {
	obl := obligation(models.KindITR, models.FrequencyAnnual)
	obl.Status = models.ObligationCompleted

	d := ProjectDeadline(obl, date(2026, time.August, 15))
	assert.Equal(t, models.DeadlineCompleted, d.Status)
	assert.Zero(t, d.DaysRemaining)
}

func TestDaysRemaining(t *testing.T) {
	now := date(2026, time.August, 15)

	assert.Equal(t, 5, DaysRemaining(date(2026, time.August, 20), now))
	assert.Equal(t, -2, DaysRemaining(date(2026, time.August, 13), now))
	assert.Equal(t, 0, DaysRemaining(now, now))
}

func TestProjectDeadline_StatusBuckets(t *testing.T) {
	now := date(2026, time.September, 5)

	// GSTR-3B due September 20 from a September 5 reference: 15 days out.
	d := ProjectDeadline(obligation(models.KindGSTR3B, models.FrequencyMonthly), now)
	assert.Equal(t, 15, d.DaysRemaining)
	assert.Equal(t, models.DeadlineUpcoming, d.Status)

	// GSTR-1 due September 11: 6 days out, inside the due-soon window.
	d = ProjectDeadline(obligation(models.KindGSTR1Monthly, models.FrequencyMonthly), now)
	assert.Equal(t, 6, d.DaysRemaining)
	assert.Equal(t, models.DeadlineDueSoon, d.Status)
}

func TestGenerateDeadlines_SortedByDueDate(t *testing.T) {
	now := date(2026, time.August, 15)
	obligations := []models.ComplianceObligation{
		obligation(models.KindITR, models.FrequencyAnnual),             // 2027-07-31
		obligation(models.KindGSTR1Monthly, models.FrequencyMonthly),   // 2026-09-11
		obligation(models.KindAdvanceTaxQ2, models.FrequencyQuarterly), // 2026-09-15
	}

	deadlines := GenerateDeadlines(obligations, now)
	require.Len(t, deadlines, 3)

	assert.Equal(t, date(2026, time.September, 11), deadlines[0].DueDate)
	assert.Equal(t, date(2026, time.September, 15), deadlines[1].DueDate)
	assert.Equal(t, date(2027, time.July, 31), deadlines[2].DueDate)

	for i, d := range deadlines {
		assert.Equal(t, "deadline-"+d.ObligationID, d.ID, "deadline %d", i)
	}
}

func TestFilterUpcomingDeadlines(t *testing.T) {
	deadlines := []models.Deadline{
		{ID: "d1", DaysRemaining: 3, Status: models.DeadlineDueSoon},
		{ID: "d2", DaysRemaining: 45, Status: models.DeadlineUpcoming},
		{ID: "d3", DaysRemaining: 10, Status: models.DeadlineCompleted},
		{ID: "d4", DaysRemaining: -1, Status: models.DeadlineOverdue},
	}

	filtered := FilterUpcomingDeadlines(deadlines, 30)
	require.Len(t, filtered, 2)
	assert.Equal(t, "d1", filtered[0].ID)
	assert.Equal(t, "d4", filtered[1].ID)

	overdue := FilterOverdueDeadlines(deadlines)
	require.Len(t, overdue, 1)
	assert.Equal(t, "d4", overdue[0].ID)
}
