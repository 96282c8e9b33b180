package llm

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

var promptTemplate = template.Must(template.New("enrichment").Parse(`Produce a rooftop solar assessment for the property below. Use the figures exactly as given; they were computed by our sizing model and must not be recalculated.

PROPERTY
- Address: {{.Address}}
- State: {{.Region}}
- Coordinates: {{.Latitude}}, {{.Longitude}}
- Roof: {{.RoofSize}}

SYSTEM
- Monthly bill: ₹{{.MonthlyBill}}
- Panel line: {{.PanelType}}
- Installed size: {{.SystemKW}} kW ({{.Panels}} panels)
- Installed cost: ₹{{.Cost}}
- Annual savings: ₹{{.Savings}}
- Payback: {{.Payback}}

WEATHER TODAY
- Usable sun hours: {{.SunHours}} per day
- Temperature: {{.Temperature}}°C
- Conditions: {{.Condition}}

Respond with a single JSON object and nothing else, in this shape:

{
  "suitability_assessment": {
    "overall_score": <60-95, driven by payback and sun hours>,
    "factors": [<4 short factors that cite the weather, sun hours, payback and {{.Region}}>]
  },
  "financial_analysis": {
    "roi_percentage": <number>,
    "break_even_years": <number or null>,
    "total_savings_25_years": <number>,
    "investment_grade": "<Excellent | Good | Moderate | Poor>"
  },
  "technical_recommendations": [<5 recommendations: sizing, tilt and orientation for latitude {{.Latitude}}, weather, maintenance in {{.Region}}, monitoring {{.Panels}} panels>],
  "environmental_impact": {
    "co2_reduction_tons": <number>,
    "equivalent_trees": <number>,
    "clean_energy_percentage": <number>
  },
  "local_vendors": [
{{- range $i, $q := .Quotes}}{{if $i}},{{end}}
    {
      "name": "<plausible installer name local to {{$.Region}}>",
      "rating": <4.0-4.9>,
      "experience_years": <5-25>,
      "specialization": "<residential, commercial, premium rooftop, ...>",
      "contact": "+91-<10 digits>",
      "estimated_quote": "{{$q}}",
      "certifications": ["MNRE Approved", "<1-2 more>"]
    }
{{- end}}
  ],
  "government_incentives": {
    "central_subsidy": <number>,
    "state_subsidy": <number>,
    "net_metering_available": true,
    "tax_benefits": "<tax benefits available in {{.Region}}>"
  },
  "installation_timeline": {
    "site_survey": "<days>",
    "approvals": "<days, per {{.Region}} regulations>",
    "installation": "<days for {{.Panels}} panels>",
    "commissioning": "<days>"
  }
}

Vendor names and phone numbers must differ from one another.`))

// vendorQuoteBands are the low/high multipliers of the installed cost quoted
// by each suggested vendor.
var vendorQuoteBands = [][2]float64{
	{0.90, 1.10},
	{1.05, 1.15},
	{0.95, 1.05},
}

type promptData struct {
	Address     string
	Region      string
	Latitude    string
	Longitude   string
	RoofSize    string
	MonthlyBill string
	PanelType   string
	SystemKW    string
	Panels      int
	Cost        string
	Savings     string
	Payback     string
	SunHours    string
	Temperature string
	Condition   string
	Quotes      []string
}

func systemPrompt(region string) string {
	return fmt.Sprintf("You are a residential solar consultant in %s, India. "+
		"Every assessment you write is specific to the property in front of you. "+
		"Reply with valid JSON only, without markdown fences or commentary.", region)
}

func buildPrompt(in domain.EnrichmentInput) (string, error) {
	m := in.Metrics
	data := promptData{
		Address:     in.Request.Address,
		Region:      in.Region,
		Latitude:    formatNumber(in.Request.Latitude),
		Longitude:   formatNumber(in.Request.Longitude),
		RoofSize:    orDefault(in.Request.RoofSize, "not provided"),
		MonthlyBill: formatNumber(in.Request.MonthlyBill),
		PanelType:   in.Request.PanelType.String(),
		SystemKW:    formatNumber(m.RequiredSystemSizeKW),
		Panels:      m.NumberOfPanels,
		Cost:        formatNumber(m.EstimatedCost),
		Savings:     formatNumber(m.AnnualSavings),
		Payback:     "not reached",
		SunHours:    formatNumber(in.Weather.AverageSunHours),
		Temperature: formatNumber(in.Weather.TemperatureCelsius),
		Condition:   orDefault(in.Weather.ConditionDescription, "unknown"),
	}
	if years, ok := m.Payback(); ok {
		data.Payback = formatNumber(years) + " years"
	}
	for _, band := range vendorQuoteBands {
		data.Quotes = append(data.Quotes, domain.QuoteRange(m.EstimatedCost, band[0], band[1]))
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
