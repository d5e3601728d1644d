package models

import (
	"fmt"
	"time"
)

// BusinessType represents the kind of micro-business being onboarded
type BusinessType string

const (
	BusinessTypeFreelancer    BusinessType = "freelancer"
	BusinessTypeGigWorker     BusinessType = "gig_worker"
	BusinessTypeMicroTrader   BusinessType = "micro_trader"
	BusinessTypeSmallRetailer BusinessType = "small_retailer"
)

// TurnoverRange represents the annual turnover bracket of a business
type TurnoverRange string

const (
	TurnoverBelow20L TurnoverRange = "below_20L"  // Below ₹20 Lakhs
	Turnover20LTo1Cr TurnoverRange = "20L_to_1Cr" // ₹20 Lakhs - ₹1 Crore
	TurnoverAbove1Cr TurnoverRange = "above_1Cr"  // Above ₹1 Crore
)

// IsValid reports whether the turnover value is one of the known brackets.
func (t TurnoverRange) IsValid() bool {
	switch t {
	case TurnoverBelow20L, Turnover20LTo1Cr, TurnoverAbove1Cr:
		return true
	}
	return false
}

// BusinessProfile represents one onboarded business and its tax-relevant facts
type BusinessProfile struct {
	ID        string        `json:"id" gorm:"type:uuid;primary_key"`
	Name      string        `json:"name" gorm:"type:varchar(255);not null"`
	OwnerName string        `json:"ownerName" gorm:"type:varchar(255)"`
	Type      BusinessType  `json:"type" gorm:"type:varchar(50);not null"`
	Turnover  TurnoverRange `json:"turnover" gorm:"type:varchar(50);not null"`
	State     string        `json:"state" gorm:"type:varchar(100)"`
	HasGST    bool          `json:"hasGst" gorm:"default:false"`
	GSTNumber string        `json:"gstNumber,omitempty" gorm:"type:varchar(15)"` // 15-char GSTIN when registered
	PANNumber string        `json:"panNumber" gorm:"type:varchar(10)"`
	Email     string        `json:"email" gorm:"type:varchar(255)"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ObligationCategory represents the tax category of an obligation
type ObligationCategory string

const (
	CategoryGST       ObligationCategory = "GST"
	CategoryIncomeTax ObligationCategory = "INCOME_TAX"
	CategoryTDS       ObligationCategory = "TDS"
	CategoryOther     ObligationCategory = "OTHER"
)

// Frequency represents how often an obligation recurs
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
	FrequencyOneTime   Frequency = "one_time"
)

// ObligationKind identifies the calendar behavior of an obligation.
// The deadline projector switches on this, never on id text.
type ObligationKind string

const (
	KindGSTRegistration ObligationKind = "GST_REGISTRATION"
	KindGSTR1Monthly    ObligationKind = "GSTR1_MONTHLY"
	KindGSTR1Quarterly  ObligationKind = "GSTR1_QUARTERLY"
	KindGSTR3B          ObligationKind = "GSTR3B"
	KindITR             ObligationKind = "ITR"
	KindAdvanceTaxQ1    ObligationKind = "ADVANCE_TAX_Q1"
	KindAdvanceTaxQ2    ObligationKind = "ADVANCE_TAX_Q2"
	KindAdvanceTaxQ3    ObligationKind = "ADVANCE_TAX_Q3"
	KindAdvanceTaxQ4    ObligationKind = "ADVANCE_TAX_Q4"
	KindTDSContractor   ObligationKind = "TDS_CONTRACTOR"
	KindTDSReturn       ObligationKind = "TDS_RETURN"
	KindGeneric         ObligationKind = "GENERIC"
)

// ObligationStatus represents the lifecycle status of a stored obligation
type ObligationStatus string

const (
	ObligationPending   ObligationStatus = "pending"
	ObligationCompleted ObligationStatus = "completed"
	ObligationOverdue   ObligationStatus = "overdue"
)

// ComplianceObligation is the materialized result of one rule matching one
// profile. The id is the deterministic profile/rule composite so a refresh
// upserts the same row instead of minting duplicates.
type ComplianceObligation struct {
	ID          string             `json:"id" gorm:"type:varchar(255);primary_key"`
	ProfileID   string             `json:"profileId" gorm:"type:uuid;not null;index:idx_obligation_profile"`
	RuleID      string             `json:"ruleId" gorm:"type:varchar(100);not null"`
	Kind        ObligationKind     `json:"kind" gorm:"type:varchar(50);not null"`
	Name        string             `json:"name" gorm:"type:varchar(255);not null"`
	Category    ObligationCategory `json:"category" gorm:"type:varchar(50);not null"`
	Description string             `json:"description" gorm:"type:text"`
	Frequency   Frequency          `json:"frequency" gorm:"type:varchar(50);not null"`
	Penalty     string             `json:"penalty" gorm:"type:text"`
	HelpText    string             `json:"helpText" gorm:"type:text"`
	Status      ObligationStatus   `json:"status" gorm:"type:varchar(50);default:'pending'"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// ObligationID builds the deterministic id for a (profile, rule) pair.
func ObligationID(profileID, ruleID string) string {
	return fmt.Sprintf("%s:%s", profileID, ruleID)
}

// DeadlineStatus represents the urgency of a projected deadline
type DeadlineStatus string

const (
	DeadlineUpcoming  DeadlineStatus = "upcoming"
	DeadlineDueSoon   DeadlineStatus = "due_soon"
	DeadlineOverdue   DeadlineStatus = "overdue"
	DeadlineCompleted DeadlineStatus = "completed"
)

// Deadline is the projection of one obligation's next due occurrence.
// Deadlines are derived from obligations plus a reference time on every
// read; they are never persisted.
type Deadline struct {
	ID             string         `json:"id"`
	ObligationID   string         `json:"obligationId"`
	ObligationName string         `json:"obligationName"`
	DueDate        time.Time      `json:"dueDate"`
	Status         DeadlineStatus `json:"status"`
	DaysRemaining  int            `json:"daysRemaining"` // negative when overdue
	Description    string         `json:"description"`
	Penalty        string         `json:"penalty,omitempty"`
}

// AlertLevel represents the severity of a risk alert
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
	AlertInfo     AlertLevel = "info"
)

// RiskAlert is a derived notification for an overdue or due-soon deadline
type RiskAlert struct {
	ID         string     `json:"id"`
	Level      AlertLevel `json:"level"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	DeadlineID string     `json:"deadlineId"`
	Action     string     `json:"action"`
	CreatedAt  time.Time  `json:"createdAt"`
}
