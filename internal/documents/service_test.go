package documents

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/extract"
	"sof-backend/internal/shared/storage/object/local"
)

const pdfStub = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF"

func countStoredFiles(t *testing.T, dir string) int {
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

func TestUploadStoresPDF(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{Store: local.New(dir), Repo: NewMemoryRepo()}

	doc, err := svc.Upload(context.Background(), "sof_rotterdam.pdf", strings.NewReader(pdfStub))
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(pdfStub)), doc.SizeBytes)
	assert.Equal(t, 1, countStoredFiles(t, dir))

	got, err := svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.StorageKey, got.StorageKey)
}

func TestUploadRejectsUnsupportedTypeAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{Store: local.New(dir), Repo: NewMemoryRepo()}

	_, err := svc.Upload(context.Background(), "notes.txt", strings.NewReader("plain text"))
	require.ErrorIs(t, err, extract.ErrUnsupportedType)

	assert.Equal(t, 0, countStoredFiles(t, dir), "rejected upload must not leave a stored object")
}

type failingRepo struct{ MemoryRepo }

func (r *failingRepo) Create(context.Context, Document) error {
	return errors.New("db down")
}

func TestUploadRepoFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{Store: local.New(dir), Repo: &failingRepo{}}

	_, err := svc.Upload(context.Background(), "sof.pdf", strings.NewReader(pdfStub))
	require.Error(t, err)
	assert.Equal(t, 0, countStoredFiles(t, dir))
}

func TestListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(context.Background(), Document{ID: "a", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(context.Background(), Document{ID: "b", CreatedAt: now}))

	svc := &Service{Repo: repo}
	docs, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
}
