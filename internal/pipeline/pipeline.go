package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
)

// Outcome labels for the analyses_total metric.
const (
	outcomeSuccess          = "success"
	outcomeInvalid          = "invalid"
	outcomeCalculationError = "calculation_error"
	outcomeUpstreamError    = "upstream_error"
	outcomeEnrichmentError  = "enrichment_error"
	outcomeStoreError       = "store_error"
)

// Pipeline runs one analysis end to end: weather, sizing, enrichment,
// persistence and publication.
type Pipeline struct {
	weather   domain.WeatherProvider
	calc      domain.Calculator
	enricher  domain.Enricher
	repo      domain.AnalysisRepository
	publisher domain.AnalysisPublisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics

	enrichAttempts int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCalculator sets the sizing calculator (and so the tariff).
func WithCalculator(c domain.Calculator) Option {
	return func(p *Pipeline) { p.calc = c }
}

// WithPublisher enables publishing completed analyses.
func WithPublisher(pub domain.AnalysisPublisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithEnrichRetry sets how many times enrichment is attempted and the backoff
// between attempts.
func WithEnrichRetry(attempts int, initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.enrichAttempts = attempts
		}
		if initial > 0 {
			p.initialBackoff = initial
		}
		if maxBackoff > 0 {
			p.maxBackoff = maxBackoff
		}
	}
}

// New creates a Pipeline with the given collaborators and observability.
func New(weather domain.WeatherProvider, enricher domain.Enricher, repo domain.AnalysisRepository,
	logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		weather:        weather,
		enricher:       enricher,
		repo:           repo,
		logger:         logger,
		metrics:        metrics,
		enrichAttempts: 1,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze validates req, runs every stage and returns the stored analysis.
//
// Errors wrap domain.ErrInvalidRequest, domain.ErrUpstream or
// domain.ErrEnrichmentUnavailable, or are a *domain.CalculationError. A
// publish failure is logged and does not fail the analysis.
func (p *Pipeline) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Analysis, error) {
	if err := req.Validate(); err != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcomeInvalid).Inc()
		return domain.Analysis{}, err
	}

	a := domain.NewAnalysis(req)
	log := p.logger.With("analysis_id", a.ID)

	weather, err := p.fetchWeather(ctx, req)
	if err != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcomeUpstreamError).Inc()
		log.Error("weather unavailable", "error", err)
		return domain.Analysis{}, err
	}

	metrics, err := p.calculate(req, weather)
	if err != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcomeCalculationError).Inc()
		log.Warn("sizing rejected", "error", err)
		return domain.Analysis{}, err
	}

	in := domain.EnrichmentInput{Request: req, Region: a.Region, Metrics: metrics, Weather: weather}
	enrichment, err := p.enrich(ctx, in, log)
	if err != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcomeEnrichmentError).Inc()
		log.Error("enrichment unavailable", "error", err)
		return domain.Analysis{}, err
	}
	enrichment = domain.Reconcile(enrichment, in)

	a.Metrics = metrics
	a.Weather = weather
	a.Enrichment = enrichment
	a.Charts = domain.BuildChartData(metrics, enrichment.Environmental.CleanEnergyPercentage)
	a.Recommendations = domain.BuildRecommendations(enrichment)

	if err := p.save(ctx, a); err != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcomeStoreError).Inc()
		log.Error("save analysis failed", "error", err)
		return domain.Analysis{}, err
	}

	p.publish(ctx, a, log)

	p.metrics.AnalysesTotal.WithLabelValues(outcomeSuccess).Inc()
	log.Info("analysis completed",
		"region", a.Region,
		"panel_type", req.PanelType.String(),
		"system_kw", metrics.RequiredSystemSizeKW,
		"panels", metrics.NumberOfPanels,
	)
	return a, nil
}

// Get returns a stored analysis. Unknown ids yield domain.ErrNotFound.
func (p *Pipeline) Get(ctx context.Context, id string) (domain.Analysis, error) {
	return p.repo.GetAnalysis(ctx, id)
}

// List returns up to limit analysis summaries, newest first.
func (p *Pipeline) List(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	return p.repo.ListAnalyses(ctx, limit)
}

// CheckReadiness returns nil when the analysis store is reachable.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if err := p.repo.Ping(ctx); err != nil {
		return fmt.Errorf("analysis store unreachable: %w", err)
	}
	return nil
}

func (p *Pipeline) fetchWeather(ctx context.Context, req domain.AnalysisRequest) (domain.WeatherReading, error) {
	defer p.observeStage("weather", time.Now())

	w, err := p.weather.CurrentWeather(ctx, req.Latitude, req.Longitude)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("%w: weather: %w", domain.ErrUpstream, err)
	}
	return w, nil
}

func (p *Pipeline) calculate(req domain.AnalysisRequest, w domain.WeatherReading) (domain.SolarMetrics, error) {
	defer p.observeStage("calculate", time.Now())

	m, err := p.calc.Compute(req.MonthlyBill, req.PanelType, w)
	if err != nil {
		var calcErr *domain.CalculationError
		if errors.As(err, &calcErr) {
			p.metrics.CalculationErrors.WithLabelValues(calcErr.Field).Inc()
		}
		return domain.SolarMetrics{}, err
	}
	return m, nil
}

// enrich calls the enricher, retrying failures with exponential backoff.
func (p *Pipeline) enrich(ctx context.Context, in domain.EnrichmentInput, log *slog.Logger) (domain.Enrichment, error) {
	defer p.observeStage("enrich", time.Now())

	backoff := p.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= p.enrichAttempts; attempt++ {
		e, err := p.enricher.Enrich(ctx, in)
		if err == nil {
			return e, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == p.enrichAttempts {
			break
		}
		log.Warn("enrichment attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", p.enrichAttempts,
			"backoff", backoff,
			"error", err,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}

	if !errors.Is(lastErr, domain.ErrEnrichmentUnavailable) {
		lastErr = fmt.Errorf("%w: %w", domain.ErrEnrichmentUnavailable, lastErr)
	}
	return domain.Enrichment{}, lastErr
}

func (p *Pipeline) save(ctx context.Context, a domain.Analysis) error {
	defer p.observeStage("store", time.Now())
	return p.repo.SaveAnalysis(ctx, a)
}

func (p *Pipeline) publish(ctx context.Context, a domain.Analysis, log *slog.Logger) {
	if p.publisher == nil {
		return
	}
	defer p.observeStage("publish", time.Now())

	if err := p.publisher.PublishAnalysis(ctx, a); err != nil {
		p.metrics.AnalysesPublished.WithLabelValues("error").Inc()
		log.Warn("publish analysis failed", "error", err)
		return
	}
	p.metrics.AnalysesPublished.WithLabelValues("success").Inc()
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
