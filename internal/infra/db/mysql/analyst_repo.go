package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/0Calories/kotoba-plus/internal/domain/analyst"
)

type AnalystRepository struct {
	db *sql.DB
}

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

const selectColumns = `id, word, template_id, template_version, provider, model, status,
  error_kind, error_detail, result_json, latency_ms, created_at`

// Save inserts an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO lexical_analysis
  (id, word, template_id, template_version, provider, model, status,
   error_kind, error_detail, result_json, latency_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), error_kind=VALUES(error_kind), error_detail=VALUES(error_detail),
  result_json=VALUES(result_json), latency_ms=VALUES(latency_ms);
`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.Word, a.TemplateID, a.TemplateVersion,
		stringOrDash(a.Provider), stringOrDash(a.Model), a.Status,
		a.ErrorKind, a.ErrorDetail, jsonOrEmpty(a.Result), a.LatencyMS, createdAt.UTC(),
	)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalystRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	q := `SELECT ` + selectColumns + `
FROM lexical_analysis
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns one record or domain.ErrNotFound
func (r *AnalystRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + selectColumns + ` FROM lexical_analysis WHERE id=? LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var created time.Time
	if err := s.Scan(&a.ID, &a.Word, &a.TemplateID, &a.TemplateVersion, &a.Provider, &a.Model, &a.Status,
		&a.ErrorKind, &a.ErrorDetail, &a.Result, &a.LatencyMS, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = created
	return &a, nil
}
