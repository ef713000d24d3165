package ui

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradscope/app"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/datastore"
	"gradscope/internal/filtering"
)

// Explorer is the pipeline the API serves
type Explorer interface {
	Run(ctx context.Context, req app.ExplorerRequest) (*app.ExplorerView, error)
	Filter(ctx context.Context, req app.ExplorerRequest) (*filtering.Result, error)
	Options(ctx context.Context, variant string, c filter.Criteria) (filter.Options, error)
	Variants() []app.Variant
	DefaultVariant() string
}

// Loader reloads the base dataset
type Loader interface {
	Load(ctx context.Context) (*datastore.Snapshot, error)
}

// Row page limits for /api/rows
const (
	DefaultRowLimit = 100
	MaxRowLimit     = 1000
)

// Server is the JSON API consumed by the dashboard front end. It keeps no
// per-user state: the drill-down selection arrives with each request and
// goes back in the response.
type Server struct {
	router   *gin.Engine
	explorer Explorer
	loader   Loader
	logger   *internal.Logger
}

// NewServer creates the API server. loader may be nil, which disables reloads.
func NewServer(explorer Explorer, loader Loader, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   gin.New(),
		explorer: explorer,
		loader:   loader,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/variants", s.handleVariants)
	api.GET("/options", s.handleOptions)
	api.POST("/explore", s.handleExplore)
	api.POST("/rows", s.handleRows)
	api.POST("/export", s.handleExport)
	api.POST("/reload", s.handleReload)
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] Starting gradscope API on http://%s", addr)
	return s.router.Run(addr)
}
