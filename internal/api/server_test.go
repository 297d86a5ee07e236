package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/langpatrol/internal/engine"
	"github.com/user/langpatrol/internal/models"
)

func newTestServer() *Server {
	return NewServer(ServerDeps{
		Analyzer: engine.NewAnalyzer(nil),
		Logger:   zap.NewNop(),
	})
}

func TestServerAnalyzeEndpointReturnsReport(t *testing.T) {
	s := newTestServer()
	body, err := json.Marshal(models.AnalyzeInput{
		Prompt:          strPtr("Hello {{name}}"),
		TemplateDialect: models.DialectHandlebars,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.MissingPlaceholder, report.Issues[0].Code)
}

func TestServerAnalyzeEndpointRejectsMalformedJSON(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func strPtr(s string) *string { return &s }
