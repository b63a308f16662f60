package extract

import (
	"context"

	"sof-backend/internal/shared/storage/object"
)

// Extractor adapts Text to the pipeline extractor contract used by the
// analyses service. It is the in-process alternative to the remote
// parser client.
type Extractor struct{}

// ExtractText pulls text from a stored document and persists the
// derived .extracted.txt copy alongside it.
func (Extractor) ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, error) {
	return Text(ctx, store, fileKey, mimeType, fileName)
}
