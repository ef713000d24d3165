package ui

import (
	"github.com/gin-gonic/gin"

	"gradscope/ui/middleware"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.AccessLog(s.logger))
}
