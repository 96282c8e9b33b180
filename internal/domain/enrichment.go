package domain

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// co2KgPerTree is the yearly CO2 uptake of one mature tree.
const co2KgPerTree = 21.77

// Enrichment is the narrative layer produced by the language model. Numeric
// fields that restate SolarMetrics are overwritten by Reconcile.
type Enrichment struct {
	Suitability              SuitabilityAssessment `json:"suitability_assessment"`
	Financial                FinancialAnalysis     `json:"financial_analysis"`
	TechnicalRecommendations []string              `json:"technical_recommendations"`
	Environmental            EnvironmentalImpact   `json:"environmental_impact"`
	Vendors                  []Vendor              `json:"local_vendors"`
	Incentives               GovernmentIncentives  `json:"government_incentives"`
	Timeline                 InstallationTimeline  `json:"installation_timeline"`
}

type SuitabilityAssessment struct {
	OverallScore float64  `json:"overall_score"`
	Factors      []string `json:"factors"`
}

type FinancialAnalysis struct {
	ROIPercentage       float64  `json:"roi_percentage"`
	BreakEvenYears      *float64 `json:"break_even_years"`
	TotalSavings25Years float64  `json:"total_savings_25_years"`
	InvestmentGrade     string   `json:"investment_grade"`
}

type EnvironmentalImpact struct {
	CO2ReductionTons      float64 `json:"co2_reduction_tons"`
	EquivalentTrees       float64 `json:"equivalent_trees"`
	CleanEnergyPercentage float64 `json:"clean_energy_percentage"`
}

type Vendor struct {
	Name            string   `json:"name"`
	Rating          float64  `json:"rating"`
	ExperienceYears float64  `json:"experience_years"`
	Specialization  string   `json:"specialization"`
	Contact         string   `json:"contact"`
	EstimatedQuote  string   `json:"estimated_quote"`
	Certifications  []string `json:"certifications"`
}

type GovernmentIncentives struct {
	CentralSubsidy       float64 `json:"central_subsidy"`
	StateSubsidy         float64 `json:"state_subsidy"`
	NetMeteringAvailable bool    `json:"net_metering_available"`
	TaxBenefits          string  `json:"tax_benefits"`
}

type InstallationTimeline struct {
	SiteSurvey    string `json:"site_survey"`
	Approvals     string `json:"approvals"`
	Installation  string `json:"installation"`
	Commissioning string `json:"commissioning"`
}

// EnrichmentInput is everything the narrative layer may reference. It must
// treat Metrics as read-only ground truth.
type EnrichmentInput struct {
	Request AnalysisRequest
	Region  string
	Metrics SolarMetrics
	Weather WeatherReading
}

// Enricher produces narrative analysis for a computed estimate.
type Enricher interface {
	Enrich(ctx context.Context, in EnrichmentInput) (Enrichment, error)
}

// Validate rejects enrichments that are missing required sections.
func (e Enrichment) Validate() error {
	if len(e.Vendors) == 0 {
		return errors.New("enrichment has no vendors")
	}
	return nil
}

// Reconcile overwrites every figure in e that restates the computed metrics,
// so the narrative can never disagree with them. in.Metrics is not modified.
func Reconcile(e Enrichment, in EnrichmentInput) Enrichment {
	m := in.Metrics

	if payback, ok := m.Payback(); ok {
		e.Financial.BreakEvenYears = &payback
	} else {
		e.Financial.BreakEvenYears = nil
	}
	e.Financial.ROIPercentage = ROIPercent(m)
	e.Financial.TotalSavings25Years = round2(m.AnnualSavings*25 - m.EstimatedCost)
	e.Financial.InvestmentGrade = InvestmentGrade(m)

	e.Environmental.CO2ReductionTons = round2(m.CO2ReductionKgPerYear / 1000)
	e.Environmental.EquivalentTrees = math.RoundToEven(m.CO2ReductionKgPerYear / co2KgPerTree)
	e.Environmental.CleanEnergyPercentage = CleanEnergyPercent(in.Weather.AverageSunHours)

	e.Incentives.CentralSubsidy = 0
	if in.Request.IncludeSubsidy {
		e.Incentives.CentralSubsidy = CentralSubsidyPercent
	}
	e.Incentives.StateSubsidy = StateSubsidyPercent(in.Region)

	return e
}

// ROIPercent is the first-year return on the installed cost.
func ROIPercent(m SolarMetrics) float64 {
	if m.EstimatedCost <= 0 {
		return 0
	}
	return round2(m.AnnualSavings / m.EstimatedCost * 100)
}

// InvestmentGrade buckets the payback period.
func InvestmentGrade(m SolarMetrics) string {
	years, ok := m.Payback()
	switch {
	case !ok:
		return "Poor"
	case years < 7:
		return "Excellent"
	case years < 12:
		return "Good"
	case years < 18:
		return "Moderate"
	default:
		return "Poor"
	}
}

// QuoteRange formats a vendor quote band in lakhs (100,000 currency units),
// e.g. QuoteRange(920000, 0.9, 1.1) == "₹8.3-10.1 lakhs".
func QuoteRange(cost, low, high float64) string {
	lakhs := decimal.NewFromFloat(cost).Div(decimal.NewFromInt(100000))
	lo := lakhs.Mul(decimal.NewFromFloat(low)).Round(1)
	hi := lakhs.Mul(decimal.NewFromFloat(high)).Round(1)
	return fmt.Sprintf("₹%s-%s lakhs", lo.StringFixed(1), hi.StringFixed(1))
}
