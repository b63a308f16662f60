package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"sof-backend/internal/analyses"
	"sof-backend/internal/documents"
	"sof-backend/internal/shared/server/respond"
	"sof-backend/internal/sof"
)

// Handler serves export downloads for completed analyses.
type Handler struct {
	Analyses *analyses.Service
	DocRepo  documents.DocumentsRepo
}

// NewHandler constructs a Handler.
func NewHandler(svc *analyses.Service, docRepo documents.DocumentsRepo) *Handler {
	return &Handler{Analyses: svc, DocRepo: docRepo}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analyses/:id/export/json", h.exportJSON)
	rg.GET("/analyses/:id/export/csv", h.exportCSV)
}

func (h *Handler) load(c *gin.Context) (analyses.Analysis, string, bool) {
	analysis, err := h.Analyses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, analyses.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return analyses.Analysis{}, "", false
	}
	if analysis.Status != analyses.StatusCompleted || analysis.Result == nil {
		respond.Error(c, http.StatusConflict, "not_completed", "analysis has no result to export", nil)
		return analyses.Analysis{}, "", false
	}

	fileName := "statement_of_facts"
	if doc, err := h.DocRepo.GetByID(c.Request.Context(), analysis.DocumentID); err == nil {
		fileName = doc.FileName
	}
	return analysis, fileName, true
}

func (h *Handler) exportJSON(c *gin.Context) {
	analysis, fileName, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName+".json"))
	c.Data(http.StatusOK, "application/json; charset=utf-8", analysis.Result)
}

func (h *Handler) exportCSV(c *gin.Context) {
	analysis, fileName, ok := h.load(c)
	if !ok {
		return
	}

	report, err := sof.ParseReport(analysis.Result)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "stored result is not exportable", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName+".csv"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, fileName, report); err != nil {
		// Headers are already out; all we can do is log via gin's error list.
		_ = c.Error(err)
	}
}
