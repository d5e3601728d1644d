package services

import (
	"compliance-service/internal/models"
)

// ComplianceRule pairs a pure predicate over a business profile with the
// template of the obligation it produces. Rule ids are unique and stable
// across releases; they are embedded in generated obligation ids.
type ComplianceRule struct {
	ID        string
	Name      string
	Condition func(p models.BusinessProfile) bool

	// NeedsTurnover marks predicates that read the turnover bracket. When a
	// profile carries an unrecognized turnover value these rules are skipped
	// and counted instead of evaluated against garbage.
	NeedsTurnover bool

	Obligation ObligationTemplate
}

// ObligationTemplate describes the obligation a matching rule produces
type ObligationTemplate struct {
	Kind        models.ObligationKind
	Name        string
	Category    models.ObligationCategory
	Description string
	Frequency   models.Frequency
	Penalty     string
	HelpText    string
}

// ComplianceRules is the ordered catalog of Indian tax compliance rules.
// Static configuration shared by every profile; single-sourced here.
var ComplianceRules = []ComplianceRule{
	// GST rules
	{
		ID:            "GST_REG_20L",
		Name:          "GST Registration Threshold",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover != models.TurnoverBelow20L && !p.HasGST },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindGSTRegistration,
			Name:        "GST Registration",
			Category:    models.CategoryGST,
			Description: "Register for GST as your turnover exceeds ₹20 Lakhs",
			Frequency:   models.FrequencyOneTime,
			Penalty:     "Late fee of ₹200/day (max ₹10,000) + 10% of tax due",
			HelpText:    "GST registration is mandatory when your annual turnover crosses ₹20 Lakhs. You can register online at gst.gov.in",
		},
	},
	{
		ID:            "GSTR1_MONTHLY",
		Name:          "GSTR-1 Monthly Filing",
		Condition:     func(p models.BusinessProfile) bool { return p.HasGST && p.Turnover == models.TurnoverAbove1Cr },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindGSTR1Monthly,
			Name:        "GSTR-1 (Monthly)",
			Category:    models.CategoryGST,
			Description: "File monthly sales return by 11th of next month",
			Frequency:   models.FrequencyMonthly,
			Penalty:     "Late fee ₹50/day (₹20 for nil return)",
			HelpText:    "GSTR-1 contains details of all your outward supplies (sales). Due by 11th of the following month.",
		},
	},
	{
		ID:            "GSTR1_QUARTERLY",
		Name:          "GSTR-1 Quarterly Filing",
		Condition:     func(p models.BusinessProfile) bool { return p.HasGST && p.Turnover != models.TurnoverAbove1Cr },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindGSTR1Quarterly,
			Name:        "GSTR-1 (Quarterly)",
			Category:    models.CategoryGST,
			Description: "File quarterly sales return under QRMP scheme",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Late fee ₹50/day (₹20 for nil return)",
			HelpText:    "Under QRMP scheme, you file GSTR-1 quarterly. Due dates: Apr-Jun by July 13, Jul-Sep by Oct 13, etc.",
		},
	},
	{
		ID:        "GSTR3B_MONTHLY",
		Name:      "GSTR-3B Monthly Filing",
		Condition: func(p models.BusinessProfile) bool { return p.HasGST },
		Obligation: ObligationTemplate{
			Kind:        models.KindGSTR3B,
			Name:        "GSTR-3B",
			Category:    models.CategoryGST,
			Description: "File monthly summary return and pay GST by 20th",
			Frequency:   models.FrequencyMonthly,
			Penalty:     "Late fee ₹50/day + 18% interest on unpaid tax",
			HelpText:    "GSTR-3B is your monthly summary return where you pay your GST liability. Due by 20th of next month.",
		},
	},
	// Income tax rules
	{
		ID:        "ITR_INDIVIDUAL",
		Name:      "Income Tax Return Filing",
		Condition: func(_ models.BusinessProfile) bool { return true }, // everyone files ITR
		Obligation: ObligationTemplate{
			Kind:        models.KindITR,
			Name:        "Income Tax Return (ITR)",
			Category:    models.CategoryIncomeTax,
			Description: "File annual income tax return by July 31st",
			Frequency:   models.FrequencyAnnual,
			Penalty:     "Late fee up to ₹5,000 + interest on unpaid tax",
			HelpText:    "File ITR-3 (business income) or ITR-4 (presumptive taxation) by July 31st. Use presumptive taxation (44AD/44ADA) for simpler compliance if eligible.",
		},
	},
	{
		ID:            "ADVANCE_TAX_Q1",
		Name:          "Advance Tax Q1",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover != models.TurnoverBelow20L },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindAdvanceTaxQ1,
			Name:        "Advance Tax - Q1",
			Category:    models.CategoryIncomeTax,
			Description: "Pay 15% of estimated annual tax by June 15",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Interest under section 234B and 234C",
			HelpText:    "If your tax liability exceeds ₹10,000/year, pay advance tax quarterly. Q1 (15% of tax) is due by June 15.",
		},
	},
	{
		ID:            "ADVANCE_TAX_Q2",
		Name:          "Advance Tax Q2",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover != models.TurnoverBelow20L },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindAdvanceTaxQ2,
			Name:        "Advance Tax - Q2",
			Category:    models.CategoryIncomeTax,
			Description: "Pay 45% of estimated annual tax by September 15",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Interest under section 234B and 234C",
			HelpText:    "Second installment of advance tax. Pay cumulative 45% of annual tax liability by September 15.",
		},
	},
	{
		ID:            "ADVANCE_TAX_Q3",
		Name:          "Advance Tax Q3",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover != models.TurnoverBelow20L },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindAdvanceTaxQ3,
			Name:        "Advance Tax - Q3",
			Category:    models.CategoryIncomeTax,
			Description: "Pay 75% of estimated annual tax by December 15",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Interest under section 234B and 234C",
			HelpText:    "Third installment of advance tax. Pay cumulative 75% of annual tax liability by December 15.",
		},
	},
	{
		ID:            "ADVANCE_TAX_Q4",
		Name:          "Advance Tax Q4",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover != models.TurnoverBelow20L },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindAdvanceTaxQ4,
			Name:        "Advance Tax - Q4",
			Category:    models.CategoryIncomeTax,
			Description: "Pay 100% of estimated annual tax by March 15",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Interest under section 234B and 234C",
			HelpText:    "Final installment of advance tax. Pay remaining tax liability by March 15 to avoid interest.",
		},
	},
	// TDS rules
	{
		ID:            "TDS_194C",
		Name:          "TDS on Contractor Payments",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover == models.TurnoverAbove1Cr },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindTDSContractor,
			Name:        "TDS on Contractors (194C)",
			Category:    models.CategoryTDS,
			Description: "Deduct TDS on contractor payments exceeding ₹30,000",
			Frequency:   models.FrequencyMonthly,
			Penalty:     "Disallowance of expense + interest",
			HelpText:    "If you pay contractors more than ₹30,000 in a single transaction or ₹1 lakh/year, deduct TDS at 1% (individuals) or 2% (others).",
		},
	},
	{
		ID:            "TDS_RETURN",
		Name:          "Quarterly TDS Return",
		Condition:     func(p models.BusinessProfile) bool { return p.Turnover == models.TurnoverAbove1Cr },
		NeedsTurnover: true,
		Obligation: ObligationTemplate{
			Kind:        models.KindTDSReturn,
			Name:        "TDS Return (Form 26Q)",
			Category:    models.CategoryTDS,
			Description: "File quarterly TDS return by end of following month",
			Frequency:   models.FrequencyQuarterly,
			Penalty:     "Late fee ₹200/day + penalty up to tax amount",
			HelpText:    "File TDS return quarterly. Q1 by July 31, Q2 by Oct 31, Q3 by Jan 31, Q4 by May 31.",
		},
	},
}

// EvaluateObligations applies the rule catalog to a profile and returns the
// obligations whose rule matches, in catalog order, with deterministic ids.
// Rules that cannot be evaluated safely (unknown turnover bracket) are
// skipped and counted so callers can surface a partial-result diagnostic.
// Pure function: no I/O, no clock.
func EvaluateObligations(profile models.BusinessProfile) ([]models.ComplianceObligation, int) {
	obligations := make([]models.ComplianceObligation, 0, len(ComplianceRules))
	skipped := 0
	turnoverOK := profile.Turnover.IsValid()

	for _, rule := range ComplianceRules {
		if rule.NeedsTurnover && !turnoverOK {
			skipped++
			continue
		}
		if !rule.Condition(profile) {
			continue
		}
		obligations = append(obligations, models.ComplianceObligation{
			ID:          models.ObligationID(profile.ID, rule.ID),
			ProfileID:   profile.ID,
			RuleID:      rule.ID,
			Kind:        rule.Obligation.Kind,
			Name:        rule.Obligation.Name,
			Category:    rule.Obligation.Category,
			Description: rule.Obligation.Description,
			Frequency:   rule.Obligation.Frequency,
			Penalty:     rule.Obligation.Penalty,
			HelpText:    rule.Obligation.HelpText,
			Status:      models.ObligationPending,
		})
	}

	return obligations, skipped
}

// SummarizeCompliance aggregates the applicable obligations for a profile
func SummarizeCompliance(profile models.BusinessProfile) models.ComplianceSummary {
	obligations, _ := EvaluateObligations(profile)

	summary := models.ComplianceSummary{TotalObligations: len(obligations)}
	for _, obl := range obligations {
		switch obl.Category {
		case models.CategoryGST:
			summary.GSTObligations++
		case models.CategoryIncomeTax:
			summary.IncomeTaxObligations++
		case models.CategoryTDS:
			summary.TDSObligations++
		}
		if obl.Kind == models.KindGSTRegistration {
			summary.NeedsGSTRegistration = true
		}
	}
	return summary
}
