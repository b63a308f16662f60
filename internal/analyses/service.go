package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"sof-backend/internal/documents"
	"sof-backend/internal/extract"
	"sof-backend/internal/shared/metrics"
	"sof-backend/internal/shared/storage/object"
	"sof-backend/internal/shared/telemetry"
	"sof-backend/internal/sof"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Extractor turns a stored document into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, error)
}

// Structurer runs the dual-pass structuring pipeline over document text.
type Structurer interface {
	Structure(ctx context.Context, documentText string) (*sof.Report, json.RawMessage, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo            Repo
	DocRepo         documents.DocumentsRepo
	Store           object.ObjectStore
	Extractor       Extractor
	Structurer      Structurer
	Provider        string
	Model           string
	PromptVersion   string
	PipelineVersion string
}

// Create enqueues a new analysis and kicks off asynchronous completion.
func (s *Service) Create(ctx context.Context, documentID string) (Analysis, error) {
	if documentID == "" {
		return Analysis{}, ErrInvalidInput
	}
	if s.Structurer == nil || s.Extractor == nil {
		return Analysis{}, ErrNotConfigured
	}

	if latest, err := s.Repo.GetLatestByDocument(ctx, documentID); err == nil {
		if latest.Status == StatusQueued || latest.Status == StatusProcessing {
			return latest, ErrAlreadyRunning
		}
	} else if !errors.Is(err, ErrNotFound) {
		return Analysis{}, err
	}

	analysis := Analysis{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		Status:          StatusQueued,
		Provider:        normalizeProvider(s.Provider),
		Model:           s.Model,
		PromptVersion:   normalizeVersion(s.PromptVersion),
		PipelineVersion: normalizeVersion(s.PipelineVersion),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			// Lost a race with a concurrent request for the same
			// document; report the run that won.
			if latest, lookupErr := s.Repo.GetLatestByDocument(ctx, documentID); lookupErr == nil {
				return latest, ErrAlreadyRunning
			}
			return Analysis{}, ErrAlreadyRunning
		}
		return Analysis{}, err
	}

	go s.completeAsync(backgroundWithRequestID(ctx), analysis.ID)

	return analysis, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// Latest returns the most recent analysis for a document.
func (s *Service) Latest(ctx context.Context, documentID string) (Analysis, error) {
	if documentID == "" {
		return Analysis{}, ErrInvalidInput
	}
	return s.Repo.GetLatestByDocument(ctx, documentID)
}

// List returns analyses ordered newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	return s.Repo.List(ctx, limit, offset)
}

func normalizeProvider(provider string) string {
	if strings.TrimSpace(provider) == "" {
		return "gemini"
	}
	return provider
}

func normalizeVersion(version string) string {
	if strings.TrimSpace(version) == "" {
		return "unknown"
	}
	return strings.TrimSpace(version)
}

func (s *Service) completeAsync(ctx context.Context, analysisID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failAnalysis(ctx, analysisID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	startedAt := time.Now().UTC()
	if err := s.Repo.MarkProcessing(ctx, analysisID, startedAt); err != nil {
		s.failAnalysis(ctx, analysisID, "", fmt.Errorf("set processing failed: %w", err), &startedAt)
		return
	}

	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		s.failAnalysis(ctx, analysisID, "", fmt.Errorf("analysis lookup: %w", err), &startedAt)
		return
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"document_id":       analysis.DocumentID,
		"analysis_id":       analysis.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	doc, err := s.DocRepo.GetByID(ctx, analysis.DocumentID)
	if err != nil {
		s.failAnalysis(ctx, analysisID, analysis.DocumentID, fmt.Errorf("document lookup id=%s: %w", analysis.DocumentID, err), &startedAt)
		return
	}

	text, err := s.extractedText(ctx, doc)
	if err != nil {
		metrics.IncExtractionFailed()
		s.failAnalysis(ctx, analysisID, analysis.DocumentID, err, &startedAt)
		return
	}

	_, canonical, err := s.Structurer.Structure(ctx, text)
	if err != nil {
		s.failAnalysis(ctx, analysisID, analysis.DocumentID, fmt.Errorf("structuring: %w", err), &startedAt)
		return
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.MarkCompleted(ctx, analysisID, canonical, completedAt); err != nil {
		s.failAnalysis(ctx, analysisID, analysis.DocumentID, fmt.Errorf("set analysis result failed: %w", err), &startedAt)
		return
	}
	metrics.IncDocumentProcessed()
	metrics.ObservePipelineDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"document_id":       analysis.DocumentID,
		"analysis_id":       analysis.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
}

// extractedText returns the document's plain text, extracting it on
// first use and recording the derived key on the document.
func (s *Service) extractedText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.ExtractedTextKey != "" {
		text, err := loadText(ctx, s.Store, doc.ExtractedTextKey)
		if err != nil {
			return "", fmt.Errorf("document %s: load extracted text: %w", doc.ID, err)
		}
		return text, nil
	}

	text, err := s.Extractor.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err)
	}
	extractedKey := doc.StorageKey + ".extracted.txt"
	if err := s.DocRepo.UpdateExtraction(ctx, doc.ID, extractedKey, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("document %s: update extraction: %w", doc.ID, err)
	}
	return text, nil
}

func (s *Service) failAnalysis(ctx context.Context, analysisID, documentID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.MarkFailed(context.Background(), analysisID, code, msg, completedAt); updateErr != nil {
		telemetry.Error("analysis.fail_update", map[string]any{
			"analysis_id": analysisID,
			"error":       updateErr.Error(),
			"cause":       msg,
		})
	}
	metrics.IncDocumentFailed()
	if startedAt != nil {
		metrics.ObservePipelineDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"document_id":       documentID,
		"analysis_id":       analysisID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	var invalid *sof.ErrInvalidReport
	if errors.As(err, &invalid) {
		return ErrorCodeLLMSchemaMismatch
	}
	if errors.Is(err, extract.ErrUnsupportedType) {
		return ErrorCodeValidation
	}
	if errors.Is(err, extract.ErrExtractionFailed) {
		return ErrorCodeExtraction
	}
	if errors.Is(err, sof.ErrEmptyDocument) {
		return ErrorCodeExtraction
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorCodeLLMTimeout
	case strings.Contains(msg, "structuring") || strings.Contains(msg, "adjudication"):
		return ErrorCodeLLMSchemaMismatch
	case strings.Contains(msg, "extract") || strings.Contains(msg, "parse text"):
		return ErrorCodeExtraction
	case strings.Contains(msg, "document") || strings.Contains(msg, "storage") || strings.Contains(msg, "analysis result") || strings.Contains(msg, "set processing"):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
