// Package server exposes the extraction and generation pipeline over HTTP:
// upload an .als project, inspect its classified tracks, then request a zip
// of Hapax definition files for a selection of them.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mrletourneau/inst-death/config"
	"github.com/mrletourneau/inst-death/internal/project"
)

// Server handles HTTP requests for the definition generator
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	projects *project.Manager
}

// New creates a new HTTP server instance
func New(cfg *config.Config) *Server {
	router := gin.Default()

	server := &Server{
		cfg:      cfg,
		router:   router,
		projects: project.NewManager(),
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", s.health)

	api := router.Group("/api/v1")
	{
		api.POST("/projects", s.uploadProject)
		api.GET("/projects", s.listProjects)
		api.GET("/projects/:id", s.getProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.POST("/projects/:id/definitions", s.generateDefinitions)
	}

	// Swagger docs
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start starts the HTTP server and the project cleanup worker
func (s *Server) Start(port string) error {
	s.projects.StartCleanupWorker(s.cfg.ProjectTTL(), s.cfg.CleanupInterval())
	return s.router.Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
