package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/langpatrol/internal/api/handler"
	"github.com/user/langpatrol/internal/engine"
)

// Server wraps the Gin router that serves the analyze endpoint, plus the
// logger used when it starts.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds the dependencies for the API server.
type ServerDeps struct {
	Analyzer *engine.Analyzer
	Logger   *zap.Logger
}

// NewServer creates a new API server exposing the analyze endpoint, a
// local-dev mirror of the hosted API. Trimmed down from the original
// multi-tenant router: no auth/session/rate-limit middleware, since
// nothing here holds cross-call state to protect.
func NewServer(deps ServerDeps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	analyzeHandler := handler.NewAnalyzeHandler(deps.Analyzer)
	apiGroup := r.Group("/api/v1")
	{
		apiGroup.POST("/analyze", analyzeHandler.Analyze)
	}

	return &Server{router: r, logger: deps.Logger}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.router.Run(addr)
}
