package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/langpatrol/internal/engine"
	"github.com/user/langpatrol/internal/models"
)

// AnalyzeHandler serves POST /api/v1/analyze, the local mirror of the
// hosted cloud endpoint cloudclient.Analyze calls.
type AnalyzeHandler struct {
	analyzer *engine.Analyzer
}

// NewAnalyzeHandler constructs an AnalyzeHandler.
func NewAnalyzeHandler(analyzer *engine.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// Analyze decodes an AnalyzeInput body and returns the Report as JSON.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var input models.AnalyzeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report := h.analyzer.Analyze(c.Request.Context(), input)
	c.JSON(http.StatusOK, report)
}
