package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &Service{Store: local.New(t.TempDir()), Repo: NewMemoryRepo()}
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartBody(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadEndpointCreatesDocument(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "sof_mumbai.pdf", pdfStub)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var created DocumentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.DocumentID)
	assert.Equal(t, "sof_mumbai.pdf", created.FileName)
	assert.Equal(t, "application/pdf", created.MimeType)

	// The document should now appear in the list.
	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)

	require.Equal(t, http.StatusOK, respList.Code)
	var docs []DocumentResponse
	require.NoError(t, json.NewDecoder(respList.Body).Decode(&docs))
	require.Len(t, docs, 1)
	assert.Equal(t, created.DocumentID, docs[0].DocumentID)
}

func TestUploadEndpointRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "notes.txt", "not a sof")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "unsupported_type")
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "file is required")
}

func TestGetEndpointNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing-id", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}
