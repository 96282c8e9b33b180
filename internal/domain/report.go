package domain

import (
	"fmt"
	"math"
)

const (
	chartYears = 5

	// defaultCleanEnergyPercent is used when the enrichment carries no estimate.
	defaultCleanEnergyPercent = 85.0

	// suitabilityThreshold is the score above which a property is recommended.
	suitabilityThreshold = 70.0

	defaultConfidenceScore = 75.0
)

// ChartData feeds the results page charts.
type ChartData struct {
	CostVsSavings        CostVsSavings        `json:"cost_vs_savings"`
	EnvironmentalMetrics EnvironmentalMetrics `json:"environmental_metrics"`
}

type CostVsSavings struct {
	Years   []string  `json:"years"`
	Costs   []float64 `json:"costs"`
	Savings []float64 `json:"savings"`
}

type EnvironmentalMetrics struct {
	CarbonReduction float64 `json:"carbon_reduction"`
	CleanEnergy     float64 `json:"clean_energy"`
}

// Recommendations summarizes whether the property is worth pursuing.
type Recommendations struct {
	IsSuitable      bool     `json:"is_suitable"`
	ConfidenceScore float64  `json:"confidence_score"`
	PriorityActions []string `json:"priority_actions"`
}

// BuildChartData projects the first five years: the whole cost lands in year
// one and savings ramp up by 10% a year, scaled by the clean energy share.
func BuildChartData(m SolarMetrics, cleanEnergyPercent float64) ChartData {
	if cleanEnergyPercent <= 0 {
		cleanEnergyPercent = defaultCleanEnergyPercent
	}
	variation := cleanEnergyPercent / 100

	c := CostVsSavings{
		Years:   make([]string, 0, chartYears),
		Costs:   make([]float64, 0, chartYears),
		Savings: make([]float64, 0, chartYears),
	}
	for year := 1; year <= chartYears; year++ {
		c.Years = append(c.Years, fmt.Sprintf("Year %d", year))
		cost := 0.0
		if year == 1 {
			cost = m.EstimatedCost
		}
		c.Costs = append(c.Costs, cost)
		ramp := math.Min(1.0, (0.5+float64(year)*0.1)*variation)
		c.Savings = append(c.Savings, math.RoundToEven(m.AnnualSavings*ramp))
	}

	return ChartData{
		CostVsSavings: c,
		EnvironmentalMetrics: EnvironmentalMetrics{
			CarbonReduction: cleanEnergyPercent,
			CleanEnergy:     cleanEnergyPercent,
		},
	}
}

// BuildRecommendations derives the headline recommendation from the
// enrichment's suitability score.
func BuildRecommendations(e Enrichment) Recommendations {
	score := e.Suitability.OverallScore
	confidence := score
	if confidence <= 0 {
		confidence = defaultConfidenceScore
	}
	actions := e.TechnicalRecommendations
	if actions == nil {
		actions = []string{}
	}
	return Recommendations{
		IsSuitable:      score > suitabilityThreshold,
		ConfidenceScore: confidence,
		PriorityActions: actions,
	}
}
