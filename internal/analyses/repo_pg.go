package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, document_id, status, result, error_code, error_message,
	provider, model, prompt_version, pipeline_version,
	started_at, completed_at, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`

	var result any
	if len(analysis.Result) > 0 {
		result = []byte(analysis.Result)
	}
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.Status,
		result,
		nullString(analysis.ErrorCode),
		nullString(analysis.ErrorMessage),
		analysis.Provider,
		analysis.Model,
		analysis.PromptVersion,
		analysis.PipelineVersion,
		analysis.StartedAt,
		analysis.CompletedAt,
		analysis.CreatedAt,
	)
	if isUniqueViolation(err) {
		// idx_analyses_active_document: one queued/processing analysis
		// per document.
		return ErrAlreadyRunning
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const selectColumns = `
SELECT id, document_id, status, result, error_code, error_message,
       provider, model, prompt_version, pipeline_version,
       started_at, completed_at, created_at
FROM analyses`

func scanAnalysis(scan func(dest ...any) error) (Analysis, error) {
	var a Analysis
	var result []byte
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var model sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	err := scan(
		&a.ID,
		&a.DocumentID,
		&a.Status,
		&result,
		&errorCode,
		&errorMessage,
		&a.Provider,
		&model,
		&a.PromptVersion,
		&a.PipelineVersion,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	if len(result) > 0 {
		a.Result = json.RawMessage(result)
	}
	if errorCode.Valid {
		a.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = errorMessage.String
	}
	if model.Valid {
		a.Model = model.String
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

// GetByID fetches an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = selectColumns + `
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// GetLatestByDocument fetches the most recent analysis for a document.
func (r *PGRepo) GetLatestByDocument(ctx context.Context, documentID string) (Analysis, error) {
	const query = selectColumns + `
WHERE document_id = $1
ORDER BY created_at DESC
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, documentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// List lists analyses ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = selectColumns + `
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkProcessing transitions a queued analysis to processing.
func (r *PGRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $1, started_at = $2, updated_at = $2
WHERE id = $3 AND status = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, startedAt, analysisID, StatusQueued)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted records the final result.
func (r *PGRepo) MarkCompleted(ctx context.Context, analysisID string, result json.RawMessage, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $1, result = $2, error_code = NULL, error_message = NULL, completed_at = $3, updated_at = $3
WHERE id = $4`
	_, err := r.DB.ExecContext(ctx, query, StatusCompleted, []byte(result), completedAt, analysisID)
	return err
}

// MarkFailed records a terminal failure.
func (r *PGRepo) MarkFailed(ctx context.Context, analysisID, code, message string, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $1, error_code = $2, error_message = $3, completed_at = $4, updated_at = $4
WHERE id = $5`
	_, err := r.DB.ExecContext(ctx, query, StatusFailed, nullString(code), nullString(message), completedAt, analysisID)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
