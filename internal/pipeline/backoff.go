package pipeline

import "time"

// Enrichment retry backoff: start at 200ms, double each retry, cap at 5s.
const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)
