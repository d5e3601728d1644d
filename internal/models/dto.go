package models

// CreateProfileRequest represents a request to onboard a business profile
type CreateProfileRequest struct {
	Name      string        `json:"name" binding:"required"`
	OwnerName string        `json:"ownerName"`
	Type      BusinessType  `json:"type" binding:"required"`
	Turnover  TurnoverRange `json:"turnover" binding:"required"`
	State     string        `json:"state" binding:"required"`
	HasGST    bool          `json:"hasGst"`
	GSTNumber string        `json:"gstNumber"`
	PANNumber string        `json:"panNumber"`
	Email     string        `json:"email"`
}

// UpdateProfileRequest represents a profile update. Changing turnover, type
// or GST registration affects which obligations apply on the next refresh.
type UpdateProfileRequest struct {
	Name      *string        `json:"name"`
	OwnerName *string        `json:"ownerName"`
	Type      *BusinessType  `json:"type"`
	Turnover  *TurnoverRange `json:"turnover"`
	State     *string        `json:"state"`
	HasGST    *bool          `json:"hasGst"`
	GSTNumber *string        `json:"gstNumber"`
}

// RefreshResponse represents the result of an obligation refresh
type RefreshResponse struct {
	ProfileID    string                 `json:"profileId"`
	Obligations  []ComplianceObligation `json:"obligations"`
	SkippedRules int                    `json:"skippedRules,omitempty"` // rules not evaluable against this profile
}

// UpdateObligationStatusRequest marks an obligation completed or pending
type UpdateObligationStatusRequest struct {
	Status ObligationStatus `json:"status" binding:"required"`
}

// ComplianceSummary aggregates obligation counts per category for a profile
type ComplianceSummary struct {
	TotalObligations     int  `json:"totalObligations"`
	GSTObligations       int  `json:"gstObligations"`
	IncomeTaxObligations int  `json:"incomeTaxObligations"`
	TDSObligations       int  `json:"tdsObligations"`
	NeedsGSTRegistration bool `json:"needsGstRegistration"`
}

// AlertCounts breaks down generated alerts by level
type AlertCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}
