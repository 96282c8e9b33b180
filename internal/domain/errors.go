package domain

import "errors"

var (
	// ErrInvalidRequest marks client input that failed validation.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrNotFound is returned by repositories when no analysis has the given id.
	ErrNotFound = errors.New("analysis not found")

	// ErrUpstream marks a failure of a required upstream provider (weather).
	ErrUpstream = errors.New("upstream provider unavailable")

	// ErrEnrichmentUnavailable marks a failed or unusable enrichment response.
	ErrEnrichmentUnavailable = errors.New("enrichment service unavailable")
)

// CalculationError reports a sizing input that cannot produce finite metrics.
type CalculationError struct {
	Field string // offending input, e.g. "average_sun_hours"
	Cause string
}

func (e *CalculationError) Error() string {
	return "solar calculation: " + e.Cause
}
