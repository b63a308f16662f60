package documents

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"sof-backend/internal/extract"
	"sof-backend/internal/shared/storage/object"
	"sof-backend/internal/shared/telemetry"
)

const storageNamespace = "sof"

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

// Upload saves the file to object storage and records the document.
// Files that are not PDF or DOCX are rejected, and the stored object is
// removed so a rejected upload leaves nothing behind.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, storageNamespace, fileName, r)
	if err != nil {
		return Document{}, err
	}

	if !extract.Supported(mimeType, fileName) {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("upload cleanup failed", map[string]any{"storageKey": storageKey, "error": delErr.Error()})
		}
		return Document{}, extract.ErrUnsupportedType
	}

	doc := Document{
		ID:               uuid.NewString(),
		FileName:         fileName,
		OriginalFilename: fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageKey:       storageKey,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("upload cleanup failed", map[string]any{"storageKey": storageKey, "error": delErr.Error()})
		}
		return Document{}, err
	}

	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns uploaded documents, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}
