package pipeline

import (
	"testing"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/stretchr/testify/assert"
)

func TestDefaultEnrichBackoffSchedule(t *testing.T) {
	b := defaultInitialBackoff
	var seen []time.Duration
	for range 7 {
		b = retry.NextBackoff(b, defaultMaxBackoff)
		seen = append(seen, b)
	}

	assert.Equal(t, []time.Duration{
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}, seen)
}
