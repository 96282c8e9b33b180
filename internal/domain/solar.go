package domain

import (
	"fmt"
	"math"
	"strings"
)

// Sizing constants. The tariff default is overridable per Calculator.
const (
	DefaultTariffPerKWh    = 6.5
	BaseDaylightHours      = 8.0
	ReferenceTemperatureC  = 25.0
	TemperatureCoefficient = 0.004
	CO2KgPerKWh            = 0.82

	daysPerMonth  = 30
	monthsPerYear = 12
	daysPerYear   = 365
	hoursPerDay   = 24

	// maxPanels bounds the panel count so absurd bills fail instead of
	// overflowing the integer conversion.
	maxPanels = 1 << 31
)

// PanelType selects the module line used for sizing.
type PanelType int

const (
	PanelStandard PanelType = iota
	PanelPremium
)

type panelSpec struct {
	efficiency float64 // base module efficiency at 25°C
	wattage    float64 // W per panel
	costPerKW  float64 // currency per installed kW
}

var panelSpecs = map[PanelType]panelSpec{
	PanelStandard: {efficiency: 0.17, wattage: 400, costPerKW: 50000},
	PanelPremium:  {efficiency: 0.20, wattage: 450, costPerKW: 65000},
}

// ParsePanelType resolves a client supplied panel type. Matching ignores case
// and surrounding whitespace. Only "premium" selects PanelPremium; every other
// value resolves to PanelStandard. ok is false when the input was neither
// "standard" nor "premium", so callers can report the defaulting.
func ParsePanelType(s string) (p PanelType, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "premium":
		return PanelPremium, true
	case "standard":
		return PanelStandard, true
	default:
		return PanelStandard, false
	}
}

func (p PanelType) String() string {
	if p == PanelPremium {
		return "premium"
	}
	return "standard"
}

// MarshalText encodes the panel type as its lower-case name.
func (p PanelType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes with the same defaulting rules as ParsePanelType.
func (p *PanelType) UnmarshalText(text []byte) error {
	*p, _ = ParsePanelType(string(text))
	return nil
}

func (p PanelType) spec() panelSpec {
	if s, ok := panelSpecs[p]; ok {
		return s
	}
	return panelSpecs[PanelStandard]
}

// BaseEfficiency is the module efficiency at the 25°C reference temperature.
func (p PanelType) BaseEfficiency() float64 { return p.spec().efficiency }

// WattageW is the rated output of a single panel in watts.
func (p PanelType) WattageW() float64 { return p.spec().wattage }

// CostPerKW is the installed cost per kW of capacity.
func (p PanelType) CostPerKW() float64 { return p.spec().costPerKW }

// SolarMetrics is the sizing estimate for one property. Values are rounded to
// 2 decimals (energy, currency, size) or 1 decimal (percentages, years).
type SolarMetrics struct {
	DailyConsumption           float64  `json:"daily_consumption"`
	AnnualConsumption          float64  `json:"annual_consumption"`
	RequiredSystemSizeKW       float64  `json:"required_system_size_kw"`
	NumberOfPanels             int      `json:"number_of_panels"`
	EstimatedCost              float64  `json:"estimated_cost"`
	AnnualGeneration           float64  `json:"annual_generation"`
	AnnualSavings              float64  `json:"annual_savings"`
	PaybackPeriodYears         *float64 `json:"payback_period_years"` // nil when savings are zero
	CO2ReductionKgPerYear      float64  `json:"co2_reduction_kg_per_year"`
	SystemEfficiencyPercent    float64  `json:"system_efficiency"`
	CapacityUtilizationPercent float64  `json:"capacity_utilization"`
}

// Payback returns the payback period and whether it is defined.
func (m SolarMetrics) Payback() (float64, bool) {
	if m.PaybackPeriodYears == nil {
		return 0, false
	}
	return *m.PaybackPeriodYears, true
}

// Calculator sizes rooftop systems for a given electricity tariff. The zero
// value uses DefaultTariffPerKWh. A Calculator holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	TariffPerKWh float64
}

// NewCalculator returns a Calculator for the given tariff (currency per kWh).
func NewCalculator(tariffPerKWh float64) Calculator {
	return Calculator{TariffPerKWh: tariffPerKWh}
}

func (c Calculator) tariff() float64 {
	if c.TariffPerKWh == 0 {
		return DefaultTariffPerKWh
	}
	return c.TariffPerKWh
}

// CalculateSolarMetrics runs Compute with the default tariff.
func CalculateSolarMetrics(monthlyBill float64, panel PanelType, weather WeatherReading) (SolarMetrics, error) {
	return Calculator{}.Compute(monthlyBill, panel, weather)
}

// Compute converts a monthly bill and the current weather into a system
// estimate. The weather's sun hours must already be derated for cloud cover
// (see DeriveSunHours); Compute uses them as given.
//
// The panel count is always rounded up, so the installed size is a whole
// number of panels and never below the theoretical requirement. Savings are
// capped at the household's own consumption; exported energy is not valued.
//
// Temperatures below 25°C raise efficiency above the panel's base rating and
// this is not clamped.
//
// Any invalid input yields a *CalculationError and a zero SolarMetrics.
func (c Calculator) Compute(monthlyBill float64, panel PanelType, weather WeatherReading) (SolarMetrics, error) {
	tariff := c.tariff()
	if !isFinite(tariff) || tariff <= 0 {
		return SolarMetrics{}, newCalculationError("tariff", "tariff per kWh must be positive, got %v", tariff)
	}
	if !isFinite(monthlyBill) || monthlyBill <= 0 {
		return SolarMetrics{}, newCalculationError("monthly_bill", "monthly bill must be positive, got %v", monthlyBill)
	}

	monthlyConsumption := monthlyBill / tariff
	dailyConsumption := monthlyConsumption / daysPerMonth
	annualConsumption := monthlyConsumption * monthsPerYear

	sunHours := weather.AverageSunHours
	if !isFinite(sunHours) || sunHours <= 0 {
		return SolarMetrics{}, newCalculationError("average_sun_hours", "sun hours must be positive, got %v", sunHours)
	}
	if !isFinite(weather.TemperatureCelsius) {
		return SolarMetrics{}, newCalculationError("temperature", "temperature must be finite, got %v", weather.TemperatureCelsius)
	}

	spec := panel.spec()
	efficiency := spec.efficiency * TemperatureFactor(weather.TemperatureCelsius)
	if efficiency <= 0 {
		return SolarMetrics{}, newCalculationError("efficiency",
			"panel efficiency is %v after derating for %v°C", efficiency, weather.TemperatureCelsius)
	}

	requiredKW := dailyConsumption / (sunHours * efficiency)
	panels := math.Ceil(requiredKW * 1000 / spec.wattage)
	if !isFinite(panels) || panels > maxPanels {
		return SolarMetrics{}, newCalculationError("monthly_bill", "required system of %v kW is out of range", requiredKW)
	}
	numPanels := int(panels)
	actualKW := float64(numPanels) * spec.wattage / 1000

	totalCost := actualKW * spec.costPerKW

	dailyGeneration := actualKW * sunHours * efficiency
	annualGeneration := dailyGeneration * daysPerYear

	annualSavings := math.Min(annualGeneration, annualConsumption) * tariff

	var payback *float64
	if annualSavings > 0 {
		years := round1(totalCost / annualSavings)
		payback = &years
	}

	return SolarMetrics{
		DailyConsumption:           round2(dailyConsumption),
		AnnualConsumption:          round2(annualConsumption),
		RequiredSystemSizeKW:       round2(actualKW),
		NumberOfPanels:             numPanels,
		EstimatedCost:              round2(totalCost),
		AnnualGeneration:           round2(annualGeneration),
		AnnualSavings:              round2(annualSavings),
		PaybackPeriodYears:         payback,
		CO2ReductionKgPerYear:      round2(annualGeneration * CO2KgPerKWh),
		SystemEfficiencyPercent:    round1(efficiency * 100),
		CapacityUtilizationPercent: round1(annualGeneration / (actualKW * daysPerYear * hoursPerDay) * 100),
	}, nil
}

// TemperatureFactor derates efficiency linearly above 25°C and boosts it below.
func TemperatureFactor(temperatureC float64) float64 {
	return 1 - (temperatureC-ReferenceTemperatureC)*TemperatureCoefficient
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func newCalculationError(field, format string, args ...any) *CalculationError {
	return &CalculationError{Field: field, Cause: fmt.Sprintf(format, args...)}
}
