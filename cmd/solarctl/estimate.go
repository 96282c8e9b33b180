package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ashleyalmeida07/SolarizeIt/internal/config"
	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

type estimateOptions struct {
	bill     float64
	panel    string
	sunHours float64
	cloud    float64
	temp     float64
	tariff   float64
	address  string
	subsidy  bool
	json     bool
}

// estimate is the printable result of one offline sizing run.
type estimate struct {
	Region             string                `json:"region"`
	TariffPerKWh       float64               `json:"tariff_per_kwh"`
	Weather            domain.WeatherReading `json:"weather"`
	Metrics            domain.SolarMetrics   `json:"solar_metrics"`
	ROIPercent         float64               `json:"roi_percentage"`
	InvestmentGrade    string                `json:"investment_grade"`
	CleanEnergyPercent float64               `json:"clean_energy_percentage"`
	SubsidyPercent     float64               `json:"subsidy_percentage"`
	QuoteRange         string                `json:"estimated_quote"`
}

func newEstimateCmd() *cobra.Command {
	var opts estimateOptions

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Size a rooftop system from a monthly bill",
		Long: `Size a rooftop system from a monthly electricity bill without calling any
external service. Sun hours are taken from --sun-hours, or derived from
--cloud coverage when --sun-hours is not set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("tariff") {
				t, err := config.ParseTariff()
				if err != nil {
					return err
				}
				opts.tariff = t
			}
			return runEstimate(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.bill, "bill", 0, "monthly electricity bill (required)")
	f.StringVar(&opts.panel, "panel", "standard", "panel type: standard or premium")
	f.Float64Var(&opts.sunHours, "sun-hours", 0, "usable sun hours per day (overrides --cloud)")
	f.Float64Var(&opts.cloud, "cloud", 0, "cloud coverage percent used to derive sun hours")
	f.Float64Var(&opts.temp, "temp", domain.ReferenceTemperatureC, "ambient temperature in °C")
	f.Float64Var(&opts.tariff, "tariff", domain.DefaultTariffPerKWh, "electricity tariff per kWh")
	f.StringVar(&opts.address, "address", "", "property address, used to detect the state subsidy")
	f.BoolVar(&opts.subsidy, "subsidy", true, "include the central subsidy")
	f.BoolVar(&opts.json, "json", false, "output JSON instead of human-readable text")
	_ = cmd.MarkFlagRequired("bill")

	return cmd
}

func runEstimate(w io.Writer, opts estimateOptions) error {
	est, err := computeEstimate(opts)
	if err != nil {
		return err
	}
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	_, err = fmt.Fprintln(w, formatEstimate(est))
	return err
}

func computeEstimate(opts estimateOptions) (estimate, error) {
	if opts.cloud < 0 || opts.cloud > 100 {
		return estimate{}, errors.New("--cloud must be between 0 and 100")
	}
	panel, ok := domain.ParsePanelType(opts.panel)
	if !ok {
		return estimate{}, fmt.Errorf("unknown panel type %q (want standard or premium)", opts.panel)
	}

	reading := domain.WeatherReading{
		AverageSunHours:      opts.sunHours,
		CloudCoveragePercent: opts.cloud,
		TemperatureCelsius:   opts.temp,
	}
	if reading.AverageSunHours == 0 {
		reading.AverageSunHours = domain.DeriveSunHours(opts.cloud)
	}

	m, err := domain.NewCalculator(opts.tariff).Compute(opts.bill, panel, reading)
	if err != nil {
		return estimate{}, err
	}

	region := domain.DetectRegion(opts.address)
	subsidy := domain.StateSubsidyPercent(region)
	if opts.subsidy {
		subsidy += domain.CentralSubsidyPercent
	}

	return estimate{
		Region:             region,
		TariffPerKWh:       opts.tariff,
		Weather:            reading,
		Metrics:            m,
		ROIPercent:         domain.ROIPercent(m),
		InvestmentGrade:    domain.InvestmentGrade(m),
		CleanEnergyPercent: domain.CleanEnergyPercent(reading.AverageSunHours),
		SubsidyPercent:     subsidy,
		QuoteRange:         domain.QuoteRange(m.EstimatedCost, 0.9, 1.1),
	}, nil
}

func formatEstimate(e estimate) string {
	m := e.Metrics

	payback := warnStyle.Render("never")
	if years, ok := m.Payback(); ok {
		payback = fmt.Sprintf("%.1f years", years)
	}
	grade := warnStyle.Render(e.InvestmentGrade)
	if e.InvestmentGrade == "Excellent" || e.InvestmentGrade == "Good" {
		grade = goodStyle.Render(e.InvestmentGrade)
	}

	rows := [][2]string{
		{"Region", e.Region},
		{"Sun hours / day", fmt.Sprintf("%.1f", e.Weather.AverageSunHours)},
		{"System size", fmt.Sprintf("%.2f kW (%d panels)", m.RequiredSystemSizeKW, m.NumberOfPanels)},
		{"Estimated cost", fmt.Sprintf("₹%.2f (%s)", m.EstimatedCost, e.QuoteRange)},
		{"Annual generation", fmt.Sprintf("%.2f kWh", m.AnnualGeneration)},
		{"Annual savings", fmt.Sprintf("₹%.2f", m.AnnualSavings)},
		{"Payback", payback},
		{"ROI", fmt.Sprintf("%.2f%%", e.ROIPercent)},
		{"Investment grade", grade},
		{"CO2 avoided / year", fmt.Sprintf("%.2f kg", m.CO2ReductionKgPerYear)},
		{"System efficiency", fmt.Sprintf("%.1f%%", m.SystemEfficiencyPercent)},
		{"Clean energy share", fmt.Sprintf("%.1f%%", e.CleanEnergyPercent)},
		{"Subsidy", fmt.Sprintf("%.0f%%", e.SubsidyPercent)},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r[0])+valueStyle.Render(r[1]))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Solar estimate"),
		panelStyle.Render(strings.Join(lines, "\n")),
	)
}
