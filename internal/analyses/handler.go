package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sof-backend/internal/documents"
	"sof-backend/internal/shared/server/middleware"
	"sof-backend/internal/shared/server/respond"
)

const (
	maxBatchSize  = 10
	maxBatchBytes = 100 << 20 // 100MB across the whole request
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc     *Service
	DocRepo documents.DocumentsRepo
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docRepo documents.DocumentsRepo) *Handler {
	return &Handler{Svc: svc, DocRepo: docRepo}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyses", h.startAnalysis)
	rg.GET("/documents/:id/analyses/latest", h.latestAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.POST("/process", h.processBatch)
}

func (h *Handler) startAnalysis(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	if _, err := h.DocRepo.GetByID(c.Request.Context(), documentID); err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Create(ctx, documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRunning):
			respond.JSON(c, http.StatusConflict, gin.H{
				"analysisId": analysis.ID,
				"status":     analysis.Status,
			})
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "not_configured", "structuring pipeline is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId": analysis.ID,
		"status":     analysis.Status,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toStatusResponse(analysis))
}

func (h *Handler) latestAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no analysis for document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toStatusResponse(analysis))
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, a := range list {
		resp = append(resp, toStatusResponse(a))
	}
	respond.JSON(c, http.StatusOK, resp)
}

// processBatch runs the synchronous multi-file pipeline. The request
// blocks until every file has been processed.
func (h *Handler) processBatch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBatchBytes)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form with files is required", nil)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}
	if len(headers) > maxBatchSize {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files in one request", []map[string]string{
			{"field": "files", "issue": "max " + strconv.Itoa(maxBatchSize)},
		})
		return
	}

	files := make([]BatchFile, 0, len(headers))
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file "+fh.Filename, nil)
			return
		}
		opened = append(opened, f)
		files = append(files, BatchFile{FileName: fh.Filename, Reader: f})
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	items := h.Svc.ProcessBatch(ctx, files)

	respond.JSON(c, http.StatusOK, gin.H{"files": items})
}

func toStatusResponse(a Analysis) gin.H {
	resp := gin.H{
		"id":         a.ID,
		"documentId": a.DocumentID,
		"status":     a.Status,
		"createdAt":  a.CreatedAt,
	}
	if a.Status == StatusCompleted && a.Result != nil {
		resp["result"] = a.Result
	}
	if a.Status == StatusFailed {
		resp["errorCode"] = a.ErrorCode
		resp["errorMessage"] = a.ErrorMessage
	}
	if a.CompletedAt != nil {
		resp["completedAt"] = a.CompletedAt
	}
	return resp
}
