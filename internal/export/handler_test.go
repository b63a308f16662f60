package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/analyses"
	"sof-backend/internal/documents"
)

const completedResult = `{"document_details":{"vessel_name":"MV TEST","port_name":"Mumbai"},"events":[{"event_id":1,"event_type":"Arrival","start_date":"2024-03-15","start_time":"06:00","end_date":"2024-03-15","end_time":"06:00"}],"laytime_notes":{},"approvals":[]}`

func newExportRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docRepo := documents.NewMemoryRepo()
	repo := analyses.NewMemoryRepo()
	svc := &analyses.Service{Repo: repo, DocRepo: docRepo}

	ctx := context.Background()
	require.NoError(t, docRepo.Create(ctx, documents.Document{ID: "doc-1", FileName: "voyage42.pdf", CreatedAt: time.Now().UTC()}))
	require.NoError(t, repo.Create(ctx, analyses.Analysis{
		ID:         "done",
		DocumentID: "doc-1",
		Status:     analyses.StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}))
	require.NoError(t, repo.MarkProcessing(ctx, "done", time.Now().UTC()))
	require.NoError(t, repo.MarkCompleted(ctx, "done", json.RawMessage(completedResult), time.Now().UTC()))
	require.NoError(t, repo.Create(ctx, analyses.Analysis{
		ID:         "pending",
		DocumentID: "doc-1",
		Status:     analyses.StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}))

	router := gin.New()
	NewHandler(svc, docRepo).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestExportJSONDownloadsStoredResult(t *testing.T) {
	router := newExportRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/done/export/json", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "voyage42.pdf.json")
	assert.JSONEq(t, completedResult, resp.Body.String())
}

func TestExportCSVDownloadsEvents(t *testing.T) {
	router := newExportRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/done/export/csv", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "voyage42.pdf", records[1][0])
	assert.Equal(t, "Arrival", records[1][4])
}

func TestExportRejectsIncompleteAnalysis(t *testing.T) {
	router := newExportRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/pending/export/csv", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestExportUnknownAnalysis(t *testing.T) {
	router := newExportRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/missing/export/json", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
