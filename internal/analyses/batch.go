package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"sof-backend/internal/extract"
	"sof-backend/internal/shared/metrics"
	"sof-backend/internal/shared/telemetry"
)

const transientNamespace = "transient"

// BatchFile is one uploaded file in a synchronous processing request.
type BatchFile struct {
	FileName string
	Reader   io.Reader
}

// BatchItem is the per-file outcome of a synchronous processing request.
type BatchItem struct {
	FileName     string          `json:"fileName"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// ProcessBatch runs the full pipeline synchronously over every file and
// returns per-file outcomes. One bad file never aborts the batch.
// Nothing is persisted: stored objects are transient and removed on
// every exit path, successful or not.
func (s *Service) ProcessBatch(ctx context.Context, files []BatchFile) []BatchItem {
	items := make([]BatchItem, 0, len(files))
	for _, f := range files {
		items = append(items, s.processOne(ctx, f))
	}
	return items
}

func (s *Service) processOne(ctx context.Context, f BatchFile) BatchItem {
	item := BatchItem{FileName: f.FileName, Status: StatusFailed}
	startedAt := time.Now().UTC()

	fail := func(err error) BatchItem {
		item.ErrorCode = classifyFailure(err)
		item.ErrorMessage = sanitizeError(err)
		metrics.IncDocumentFailed()
		telemetry.Info("batch.file", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"file_name":  f.FileName,
			"status":     StatusFailed,
			"error_code": item.ErrorCode,
		})
		return item
	}

	if s.Structurer == nil || s.Extractor == nil {
		return fail(ErrNotConfigured)
	}

	storageKey, _, mimeType, err := s.Store.Save(ctx, transientNamespace, f.FileName, f.Reader)
	if err != nil {
		return fail(fmt.Errorf("storage: %w", err))
	}
	defer s.deleteQuietly(ctx, storageKey)
	defer s.deleteQuietly(ctx, storageKey+".extracted.txt")

	if !extract.Supported(mimeType, f.FileName) {
		return fail(extract.ErrUnsupportedType)
	}

	text, err := s.Extractor.ExtractText(ctx, s.Store, storageKey, mimeType, f.FileName)
	if err != nil {
		metrics.IncExtractionFailed()
		return fail(err)
	}

	_, canonical, err := s.Structurer.Structure(ctx, text)
	if err != nil {
		return fail(fmt.Errorf("structuring: %w", err))
	}

	item.Status = StatusCompleted
	item.Result = canonical
	completedAt := time.Now().UTC()
	metrics.IncDocumentProcessed()
	metrics.ObservePipelineDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("batch.file", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"file_name":   f.FileName,
		"status":      StatusCompleted,
		"duration_ms": durationMs(&startedAt, &completedAt),
	})
	return item
}

func (s *Service) deleteQuietly(ctx context.Context, storageKey string) {
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Error("batch.cleanup", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
	}
}
