package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

func TestGetAnalysis_MalformedIDIsNotFound(t *testing.T) {
	// No database is needed: malformed ids never reach the query.
	s := NewStore(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, id := range []string{"", "42", "not-a-uuid", "../../etc/passwd"} {
		_, err := s.GetAnalysis(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "id %q", id)
	}
}
