package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

const uniqueViolation = "23505"

// ErrDuplicateID is returned when an analysis with the same id already exists.
var ErrDuplicateID = errors.New("analysis id already exists")

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Store implements domain.AnalysisRepository on PostgreSQL. The complete
// analysis is kept as JSONB; the request fields are also stored as columns for
// listing and ad hoc queries.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	result, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	r := a.Request
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, address, latitude, longitude, monthly_bill, roof_size,
			panel_type, include_subsidy, region, analysis_result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, r.Address, r.Latitude, r.Longitude, r.MonthlyBill, r.RoofSize,
		r.PanelType.String(), r.IncludeSubsidy, a.Region, string(result), a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("save analysis %s: %w", a.ID, ErrDuplicateID)
		}
		return fmt.Errorf("save analysis %s: %w", a.ID, err)
	}

	s.logger.Debug("analysis saved", "id", a.ID, "bytes", len(result))
	return nil
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (domain.Analysis, error) {
	// Anything that is not a UUID cannot be a key; skip the round trip and
	// the cast error it would produce.
	if _, err := uuid.Parse(id); err != nil {
		return domain.Analysis{}, domain.ErrNotFound
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT analysis_result FROM analyses WHERE id = $1`, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Analysis{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("get analysis %s: %w", id, err)
	}

	var a domain.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return a, nil
}

func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, address, monthly_bill, panel_type, created_at
		FROM analyses
		ORDER BY created_at DESC, id
		LIMIT $1`, domain.ClampListLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AnalysisSummary, 0)
	for rows.Next() {
		var (
			sum   domain.AnalysisSummary
			panel string
		)
		if err := rows.Scan(&sum.ID, &sum.Address, &sum.MonthlyBill, &panel, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis summary: %w", err)
		}
		sum.PanelType, _ = domain.ParsePanelType(panel)
		sum.CreatedAt = sum.CreatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
