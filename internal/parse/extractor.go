package parse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sof-backend/internal/extract"
	"sof-backend/internal/shared/storage/object"
)

// StoreExtractor extracts text for stored documents via the parsing service
// and persists the derived .extracted.txt copy, mirroring the local extractor.
type StoreExtractor struct {
	Client *Client
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// ExtractText reads the stored document, sends it to the parsing service and
// saves the extracted text next to the source object.
func (e StoreExtractor) ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, error) {
	if e.Client == nil {
		return "", errors.New("parser client not configured")
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("parse text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	text, err := e.Client.Parse(ctx, fileName, mimeType, body)
	if err != nil {
		return "", fmt.Errorf("parse text key=%s mime=%s: %w: %w", fileKey, mimeType, extract.ErrExtractionFailed, err)
	}

	saver, ok := store.(keySaver)
	if !ok {
		return "", errors.New("object store does not support SaveWithKey")
	}
	extractedKey := fileKey + ".extracted.txt"
	if _, err := saver.SaveWithKey(ctx, extractedKey, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("parse text key=%s: save extracted: %w", fileKey, err)
	}
	return text, nil
}
