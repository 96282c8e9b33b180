package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnalysisRequest is a customer's property and energy profile.
type AnalysisRequest struct {
	Address        string    `json:"address"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	MonthlyBill    float64   `json:"monthly_bill"`
	RoofSize       string    `json:"roof_size,omitempty"`
	PanelType      PanelType `json:"panel_type"`
	IncludeSubsidy bool      `json:"include_subsidy"`
}

// Validate checks ranges before any upstream call is made.
func (r AnalysisRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidRequest)
	case math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidRequest, r.Latitude)
	case math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidRequest, r.Longitude)
	case !isFinite(r.MonthlyBill) || r.MonthlyBill <= 0:
		return fmt.Errorf("%w: monthly bill must be positive", ErrInvalidRequest)
	}
	return nil
}

// Analysis is a completed, persisted analysis.
type Analysis struct {
	ID              string          `json:"id"`
	Request         AnalysisRequest `json:"request"`
	Region          string          `json:"region"`
	Metrics         SolarMetrics    `json:"solar_metrics"`
	Weather         WeatherReading  `json:"weather_data"`
	Enrichment      Enrichment      `json:"structured_analysis"`
	Charts          ChartData       `json:"chart_data"`
	Recommendations Recommendations `json:"recommendations"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AnalysisSummary is the list view of an analysis.
type AnalysisSummary struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	MonthlyBill float64   `json:"monthly_bill"`
	PanelType   PanelType `json:"panel_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAnalysis starts an analysis record with a fresh id, the detected region
// and the current time.
func NewAnalysis(req AnalysisRequest) Analysis {
	return Analysis{
		ID:        uuid.NewString(),
		Request:   req,
		Region:    DetectRegion(req.Address),
		CreatedAt: Now(),
	}
}

// Summary returns the list view of a.
func (a Analysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:          a.ID,
		Address:     a.Request.Address,
		MonthlyBill: a.Request.MonthlyBill,
		PanelType:   a.Request.PanelType,
		CreatedAt:   a.CreatedAt,
	}
}

const (
	// DefaultListLimit is used when a caller asks for a non-positive limit.
	DefaultListLimit = 50
	// MaxListLimit caps how many summaries one list call returns.
	MaxListLimit = 500
)

// ClampListLimit maps a requested list size into [1, MaxListLimit].
func ClampListLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// AnalysisRepository persists analyses.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, a Analysis) error
	// GetAnalysis returns ErrNotFound when id is unknown.
	GetAnalysis(ctx context.Context, id string) (Analysis, error)
	// ListAnalyses returns up to limit summaries, newest first.
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error)
	Ping(ctx context.Context) error
}

// AnalysisPublisher announces completed analyses to downstream consumers.
type AnalysisPublisher interface {
	PublishAnalysis(ctx context.Context, a Analysis) error
}
