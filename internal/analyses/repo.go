package analyses

import (
	"context"
	"encoding/json"
	"time"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	GetLatestByDocument(ctx context.Context, documentID string) (Analysis, error)
	List(ctx context.Context, limit, offset int) ([]Analysis, error)
	MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error
	MarkCompleted(ctx context.Context, analysisID string, result json.RawMessage, completedAt time.Time) error
	MarkFailed(ctx context.Context, analysisID, code, message string, completedAt time.Time) error
}
