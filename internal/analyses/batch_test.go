package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/shared/storage/object/local"
)

const batchPDFStub = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF"

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func newBatchService(t *testing.T, dir string, structurer Structurer) *Service {
	t.Helper()
	return &Service{
		Repo:       NewMemoryRepo(),
		Store:      local.New(dir),
		Extractor:  stubExtractor{text: "NOR tendered 06:00"},
		Structurer: structurer,
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	svc := newBatchService(t, dir, &stubStructurer{result: json.RawMessage(reportJSON)})

	items := svc.ProcessBatch(context.Background(), []BatchFile{
		{FileName: "good.pdf", Reader: strings.NewReader(batchPDFStub)},
		{FileName: "notes.txt", Reader: strings.NewReader("plain text")},
		{FileName: "good2.pdf", Reader: strings.NewReader(batchPDFStub)},
	})

	require.Len(t, items, 3)
	assert.Equal(t, StatusCompleted, items[0].Status)
	assert.JSONEq(t, reportJSON, string(items[0].Result))

	assert.Equal(t, StatusFailed, items[1].Status)
	assert.Equal(t, ErrorCodeValidation, items[1].ErrorCode)
	assert.Empty(t, items[1].Result)

	assert.Equal(t, StatusCompleted, items[2].Status)
}

func TestProcessBatchLeavesNoTransientObjects(t *testing.T) {
	dir := t.TempDir()
	svc := newBatchService(t, dir, &stubStructurer{result: json.RawMessage(reportJSON)})

	svc.ProcessBatch(context.Background(), []BatchFile{
		{FileName: "a.pdf", Reader: strings.NewReader(batchPDFStub)},
		{FileName: "bad.txt", Reader: strings.NewReader("nope")},
	})

	assert.Equal(t, 0, countFiles(t, dir), "transient storage must be empty after the batch")
}

func TestProcessBatchStructuringFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	svc := newBatchService(t, dir, &stubStructurer{err: errors.New("model unavailable")})

	items := svc.ProcessBatch(context.Background(), []BatchFile{
		{FileName: "a.pdf", Reader: strings.NewReader(batchPDFStub)},
	})

	require.Len(t, items, 1)
	assert.Equal(t, StatusFailed, items[0].Status)
	assert.Equal(t, 0, countFiles(t, dir))
}
