package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
)

const (
	maxTokens   = 3000
	temperature = 0.9
)

// Config configures the Anthropic Messages client.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the SDK default
	Model   string
	Timeout time.Duration
}

// Enricher implements domain.Enricher with the Anthropic Messages API.
type Enricher struct {
	client  anthropic.Client
	model   anthropic.Model
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEnricher creates an enricher. SDK retries are disabled; the pipeline
// owns the retry policy.
func NewEnricher(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Enricher {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Enricher{
		client:  anthropic.NewClient(opts...),
		model:   anthropic.Model(cfg.Model),
		metrics: metrics,
		logger:  logger,
	}
}

// Enrich asks the model for the narrative sections of an analysis. Any
// failure is reported as domain.ErrEnrichmentUnavailable wrapping the cause.
func (e *Enricher) Enrich(ctx context.Context, in domain.EnrichmentInput) (domain.Enrichment, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("%w: %w", domain.ErrEnrichmentUnavailable, err)
	}

	start := time.Now()
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       e.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt(in.Region)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	e.metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.EnrichmentRequests.WithLabelValues("error").Inc()
		return domain.Enrichment{}, fmt.Errorf("%w: messages request: %w", domain.ErrEnrichmentUnavailable, err)
	}

	enrichment, err := parseEnrichment(responseText(msg))
	if err != nil {
		e.metrics.EnrichmentRequests.WithLabelValues("invalid").Inc()
		e.logger.Warn("unusable enrichment response", "model", string(e.model), "stop_reason", string(msg.StopReason), "error", err)
		return domain.Enrichment{}, fmt.Errorf("%w: %w", domain.ErrEnrichmentUnavailable, err)
	}

	e.metrics.EnrichmentRequests.WithLabelValues("success").Inc()
	e.logger.Debug("enrichment received",
		"vendors", len(enrichment.Vendors),
		"score", enrichment.Suitability.OverallScore,
		"output_tokens", msg.Usage.OutputTokens,
	)
	return enrichment, nil
}

func responseText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// parseEnrichment decodes the model's JSON, tolerating a surrounding markdown
// code fence.
func parseEnrichment(text string) (domain.Enrichment, error) {
	text = stripCodeFence(text)
	if text == "" {
		return domain.Enrichment{}, errors.New("empty response")
	}

	var out domain.Enrichment
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return domain.Enrichment{}, fmt.Errorf("decode enrichment: %w", err)
	}
	if err := out.Validate(); err != nil {
		return domain.Enrichment{}, err
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (which may carry a language tag) and the
	// closing fence.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
