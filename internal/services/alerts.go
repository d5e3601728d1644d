package services

import (
	"fmt"
	"sort"
	"time"

	"compliance-service/internal/models"
)

var alertLevelOrder = map[models.AlertLevel]int{
	models.AlertCritical: 0,
	models.AlertWarning:  1,
	models.AlertInfo:     2,
}

// GenerateAlerts converts projected deadlines into prioritized risk alerts.
// Only overdue and due-soon deadlines produce alerts. The result is
// stable-sorted critical before warning before info, preserving the input's
// ascending due-date order within each level. Pure function of its input.
func GenerateAlerts(deadlines []models.Deadline, now time.Time) []models.RiskAlert {
	alerts := make([]models.RiskAlert, 0, len(deadlines))

	for _, deadline := range deadlines {
		switch deadline.Status {
		case models.DeadlineOverdue:
			daysOverdue := -deadline.DaysRemaining
			message := fmt.Sprintf("This was due on %s (%d days ago).", formatDate(deadline.DueDate), daysOverdue)
			if deadline.Penalty != "" {
				message += fmt.Sprintf(" Penalty: %s", deadline.Penalty)
			} else {
				message += " Late fees may apply."
			}

			alerts = append(alerts, models.RiskAlert{
				ID:         fmt.Sprintf("alert-overdue-%s", deadline.ID),
				Level:      models.AlertCritical,
				Title:      fmt.Sprintf("OVERDUE: %s", deadline.ObligationName),
				Message:    message,
				DeadlineID: deadline.ID,
				Action:     "File immediately to minimize penalties",
				CreatedAt:  now,
			})

		case models.DeadlineDueSoon:
			action := "Plan to complete this week"
			if deadline.DaysRemaining <= 3 {
				action = "Complete today to be safe"
			}

			alerts = append(alerts, models.RiskAlert{
				ID:         fmt.Sprintf("alert-due-soon-%s", deadline.ID),
				Level:      models.AlertWarning,
				Title:      fmt.Sprintf("Due Soon: %s", deadline.ObligationName),
				Message:    fmt.Sprintf("Due in %d days on %s. Don't miss this deadline!", deadline.DaysRemaining, formatDate(deadline.DueDate)),
				DeadlineID: deadline.ID,
				Action:     action,
				CreatedAt:  now,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alertLevelOrder[alerts[i].Level] < alertLevelOrder[alerts[j].Level]
	})
	return alerts
}

// CountAlerts breaks down alerts by level
func CountAlerts(alerts []models.RiskAlert) models.AlertCounts {
	var counts models.AlertCounts
	for _, a := range alerts {
		switch a.Level {
		case models.AlertCritical:
			counts.Critical++
		case models.AlertWarning:
			counts.Warning++
		case models.AlertInfo:
			counts.Info++
		}
	}
	return counts
}

// FilterAlertsByLevel keeps alerts of the given level only
func FilterAlertsByLevel(alerts []models.RiskAlert, level models.AlertLevel) []models.RiskAlert {
	filtered := make([]models.RiskAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Level == level {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func formatDate(date time.Time) string {
	return date.Format("2 Jan 2006")
}
