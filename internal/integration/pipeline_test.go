//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashleyalmeida07/SolarizeIt/internal/adapter/kafka"
	"github.com/ashleyalmeida07/SolarizeIt/internal/config"
	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
	"github.com/ashleyalmeida07/SolarizeIt/internal/pipeline"
)

const testTopic = "test-solar-analyses"

type fixedWeather struct{ reading domain.WeatherReading }

func (f fixedWeather) CurrentWeather(context.Context, float64, float64) (domain.WeatherReading, error) {
	return f.reading, nil
}

type cannedEnricher struct{}

func (cannedEnricher) Enrich(_ context.Context, in domain.EnrichmentInput) (domain.Enrichment, error) {
	return domain.Enrichment{
		Suitability: domain.SuitabilityAssessment{OverallScore: 82, Factors: []string{"south-facing roof"}},
		Financial:   domain.FinancialAnalysis{ROIPercentage: 99},
		Vendors: []domain.Vendor{{
			Name:           "Capital Rooftops",
			Rating:         4.4,
			EstimatedQuote: domain.QuoteRange(in.Metrics.EstimatedCost, 0.9, 1.1),
		}},
		TechnicalRecommendations: []string{"Use a 5 kW string inverter"},
	}, nil
}

// TestAnalyzeEndToEnd runs a full analysis against real PostgreSQL and Kafka
// with stubbed weather and enrichment providers.
func TestAnalyzeEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	store, _ := startPostgres(ctx, t)
	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	p := pipeline.New(
		fixedWeather{domain.WeatherReading{AverageSunHours: 5, TemperatureCelsius: 25, CloudCoveragePercent: 20}},
		cannedEnricher{},
		store,
		discardLogger(),
		observability.NewMetricsForTesting(),
		pipeline.WithPublisher(publisher),
	)
	require.NoError(t, p.CheckReadiness(ctx))

	a, err := p.Analyze(ctx, domain.AnalysisRequest{
		Address:        "Lajpat Nagar, New Delhi",
		Latitude:       28.5677,
		Longitude:      77.2433,
		MonthlyBill:    3000,
		PanelType:      domain.PanelStandard,
		IncludeSubsidy: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", a.Region)
	assert.Equal(t, 46, a.Metrics.NumberOfPanels)
	assert.InDelta(t, 3.91, a.Enrichment.Financial.ROIPercentage, 1e-9, "reconciled with computed metrics")
	assert.InDelta(t, 15, a.Enrichment.Incentives.StateSubsidy, 1e-9)
	assert.True(t, a.Recommendations.IsSuitable)

	stored, err := p.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Metrics, stored.Metrics)
	assert.Equal(t, a.Enrichment, stored.Enrichment)

	list, err := p.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	reader := newTopicReader(broker, testTopic)
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read published analysis")

	assert.Equal(t, a.ID, string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "standard", headers["panel_type"])
	assert.Equal(t, "Delhi", headers["region"])

	var event kafka.AnalysisEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, a.ID, event.ID)
	assert.Equal(t, 46, event.NumberOfPanels)
	assert.InDelta(t, 920000, event.EstimatedCost, 1e-9)
	assert.True(t, event.IsSuitable)
}
