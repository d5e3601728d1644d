package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"compliance-service/internal/models"
)

// monthDay is a fixed calendar anchor (month + day of month).
type monthDay struct {
	month time.Month
	day   int
}

// anchorSchedules maps obligation kinds with fixed calendar dates to their
// anchor set. The projector picks the earliest occurrence of any anchor on
// or after the reference date, rolling each anchor's year independently.
// Adding a deadline type means adding a table entry, not a new branch.
var anchorSchedules = map[models.ObligationKind][]monthDay{
	// Advance tax installments: each installment is its own obligation with
	// a single anchor, so Q4 (March 15) rolls to next year the moment
	// March 15 has passed, independent of the other installments.
	models.KindAdvanceTaxQ1: {{time.June, 15}},
	models.KindAdvanceTaxQ2: {{time.September, 15}},
	models.KindAdvanceTaxQ3: {{time.December, 15}},
	models.KindAdvanceTaxQ4: {{time.March, 15}},

	// GSTR-1 under QRMP: quarter-end filings
	models.KindGSTR1Quarterly: {{time.July, 13}, {time.October, 13}, {time.January, 13}, {time.April, 13}},

	// Quarterly TDS return (Form 26Q)
	models.KindTDSReturn: {{time.July, 31}, {time.October, 31}, {time.January, 31}, {time.May, 31}},
}

// quarterEndAnchors is the generic fallback for quarterly obligations of
// unrecognized kind.
var quarterEndAnchors = []monthDay{
	{time.March, 31}, {time.June, 30}, {time.September, 30}, {time.December, 31},
}

// monthlyDueDay maps obligation kinds to their day-of-month filing date in
// the month following the reference date.
var monthlyDueDay = map[models.ObligationKind]int{
	models.KindGSTR1Monthly: 11,
	models.KindGSTR3B:       20,
}

const defaultMonthlyDueDay = 15

// nextDueDate computes the next occurrence of an obligation's due date after
// the reference time. Unknown kinds degrade to the generic handler for their
// frequency; unknown frequencies degrade to a 30-day window. A malformed
// obligation yields an approximate date, never an error.
func nextDueDate(obl models.ComplianceObligation, now time.Time) time.Time {
	switch obl.Frequency {
	case models.FrequencyMonthly:
		day, ok := monthlyDueDay[obl.Kind]
		if !ok {
			day = defaultMonthlyDueDay
		}
		// time.Date normalizes month+1 past December into next year
		return time.Date(now.Year(), now.Month()+1, day, 0, 0, 0, 0, now.Location())

	case models.FrequencyQuarterly:
		anchors, ok := anchorSchedules[obl.Kind]
		if !ok {
			anchors = quarterEndAnchors
		}
		return nextAnchorDate(anchors, now)

	case models.FrequencyAnnual:
		if obl.Kind == models.KindITR {
			return nextAnchorDate([]monthDay{{time.July, 31}}, now)
		}
		return nextAnchorDate([]monthDay{{time.March, 31}}, now)

	case models.FrequencyOneTime:
		return now.Add(30 * 24 * time.Hour)

	default:
		return now.Add(30 * 24 * time.Hour)
	}
}

// nextAnchorDate returns the earliest occurrence of any anchor whose
// calendar date is on or after the reference date. Each anchor's year
// rollover is computed from its own month/day, so an anchor due today still
// counts as this year's occurrence.
func nextAnchorDate(anchors []monthDay, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var next time.Time
	for _, a := range anchors {
		candidate := time.Date(now.Year(), a.month, a.day, 0, 0, 0, 0, now.Location())
		if candidate.Before(today) {
			candidate = time.Date(now.Year()+1, a.month, a.day, 0, 0, 0, 0, now.Location())
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// DaysRemaining returns the signed number of days until the due date,
// rounded up. Negative values mean the deadline has passed.
func DaysRemaining(dueDate, now time.Time) int {
	return int(math.Ceil(dueDate.Sub(now).Hours() / 24))
}

// deadlineStatus derives the urgency bucket from days remaining
func deadlineStatus(daysRemaining int) models.DeadlineStatus {
	switch {
	case daysRemaining < 0:
		return models.DeadlineOverdue
	case daysRemaining <= 7:
		return models.DeadlineDueSoon
	default:
		return models.DeadlineUpcoming
	}
}

// ProjectDeadline computes the next deadline for one obligation at the given
// reference time. Obligations already marked completed pass through with
// status completed; their urgency is not recomputed.
func ProjectDeadline(obl models.ComplianceObligation, now time.Time) models.Deadline {
	dueDate := nextDueDate(obl, now)
	deadline := models.Deadline{
		ID:             fmt.Sprintf("deadline-%s", obl.ID),
		ObligationID:   obl.ID,
		ObligationName: obl.Name,
		DueDate:        dueDate,
		Description:    obl.Description,
		Penalty:        obl.Penalty,
	}

	if obl.Status == models.ObligationCompleted {
		deadline.Status = models.DeadlineCompleted
		return deadline
	}

	deadline.DaysRemaining = DaysRemaining(dueDate, now)
	deadline.Status = deadlineStatus(deadline.DaysRemaining)
	return deadline
}

// GenerateDeadlines projects every obligation and returns the deadlines
// sorted by ascending due date.
func GenerateDeadlines(obligations []models.ComplianceObligation, now time.Time) []models.Deadline {
	deadlines := make([]models.Deadline, 0, len(obligations))
	for _, obl := range obligations {
		deadlines = append(deadlines, ProjectDeadline(obl, now))
	}

	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].DueDate.Before(deadlines[j].DueDate)
	})
	return deadlines
}

// FilterUpcomingDeadlines keeps non-completed deadlines within the window
func FilterUpcomingDeadlines(deadlines []models.Deadline, days int) []models.Deadline {
	filtered := make([]models.Deadline, 0, len(deadlines))
	for _, d := range deadlines {
		if d.Status != models.DeadlineCompleted && d.DaysRemaining <= days {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// FilterOverdueDeadlines keeps overdue deadlines only
func FilterOverdueDeadlines(deadlines []models.Deadline) []models.Deadline {
	filtered := make([]models.Deadline, 0, len(deadlines))
	for _, d := range deadlines {
		if d.Status == models.DeadlineOverdue {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
