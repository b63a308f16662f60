package analyses

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Analysis)}
}

// Create stores an analysis record. At most one queued/processing
// analysis may exist per document, matching the partial unique index
// the Postgres repo relies on.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis.Status == StatusQueued || analysis.Status == StatusProcessing {
		for id := range r.data {
			existing := r.data[id]
			if existing.DocumentID == analysis.DocumentID &&
				(existing.Status == StatusQueued || existing.Status == StatusProcessing) {
				return ErrAlreadyRunning
			}
		}
	}
	r.data[analysis.ID] = analysis
	return nil
}

// GetByID returns an analysis by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// GetLatestByDocument returns the most recent analysis for a document.
func (r *MemoryRepo) GetLatestByDocument(ctx context.Context, documentID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *Analysis
	for id := range r.data {
		a := r.data[id]
		if a.DocumentID != documentID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = &a
		}
	}
	if latest == nil {
		return Analysis{}, ErrNotFound
	}
	return *latest, nil
}

// List returns analyses newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	out := make([]Analysis, 0, len(r.data))
	for id := range r.data {
		out = append(out, r.data[id])
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Analysis{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// MarkProcessing transitions a queued analysis to processing.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok || a.Status != StatusQueued {
		return ErrNotFound
	}
	a.Status = StatusProcessing
	a.StartedAt = &startedAt
	r.data[analysisID] = a
	return nil
}

// MarkCompleted records the final result.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, analysisID string, result json.RawMessage, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusCompleted
	a.Result = append(json.RawMessage(nil), result...)
	a.ErrorCode = ""
	a.ErrorMessage = ""
	a.CompletedAt = &completedAt
	r.data[analysisID] = a
	return nil
}

// MarkFailed records a terminal failure.
func (r *MemoryRepo) MarkFailed(ctx context.Context, analysisID, code, message string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusFailed
	a.ErrorCode = code
	a.ErrorMessage = message
	a.CompletedAt = &completedAt
	r.data[analysisID] = a
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
