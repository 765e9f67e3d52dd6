package server

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrletourneau/inst-death/internal/als"
	"github.com/mrletourneau/inst-death/internal/project"
)

// uploadProject godoc
// @Summary Upload and parse an .als project
// @Description Parses the uploaded Ableton Live Set and stores its classified tracks for later generation.
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Ableton .als project file"
// @Success 201 {object} project.Project
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/projects [post]
func (s *Server) uploadProject(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoFile.Error()})
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".als") {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNotAnAlsFile.Error()})
		return
	}

	limit := s.cfg.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	if int64(len(data)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds upload limit of %d MB", s.cfg.Upload.MaxSizeMB),
		})
		return
	}

	tracks, err := als.Parse(data)
	if err != nil {
		slog.Error("Failed to parse project", "filename", header.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("failed to parse file: %v", err)})
		return
	}

	p := s.projects.Add(header.Filename, tracks)
	slog.Info("Project uploaded", "id", p.ID, "filename", p.Filename, "tracks", len(tracks))

	c.JSON(http.StatusCreated, p)
}

// listProjects godoc
// @Summary List stored projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} project.Response
// @Router /api/v1/projects [get]
func (s *Server) listProjects(c *gin.Context) {
	page := 1
	pageSize := project.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= project.MaxPageSize {
			pageSize = parsed
		}
	}

	c.JSON(http.StatusOK, s.projects.List(page, pageSize))
}

// getProject godoc
// @Summary Get a stored project and its tracks
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} project.Project
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (s *Server) getProject(c *gin.Context) {
	p, err := s.projects.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// deleteProject godoc
// @Summary Delete a stored project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [delete]
func (s *Server) deleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// generateDefinitions godoc
// @Summary Generate Hapax definitions for selected tracks
// @Description Renders one definition file per export unit and returns them as a zip archive. Invalid units are skipped; the X-Skipped-Units header carries the count.
// @Tags Definitions
// @Accept json
// @Produce application/zip
// @Param id path string true "Project ID"
// @Param request body GenerateRequest true "Track selections"
// @Success 200 {file} application/zip
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/projects/{id}/definitions [post]
func (s *Server) generateDefinitions(c *gin.Context) {
	p, err := s.projects.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if len(req.Selections) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no tracks selected"})
		return
	}

	units, skipped := buildUnits(p, req.Selections)
	if len(units) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid selections"})
		return
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, unit := range units {
		w, err := zipWriter.Create(unit.Filename)
		if err == nil {
			_, err = w.Write([]byte(unit.Content))
		}
		if err != nil {
			slog.Error("Failed to write zip entry", "projectId", p.ID, "filename", unit.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build archive"})
			return
		}
	}
	if err := zipWriter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build archive"})
		return
	}

	if skipped > 0 {
		slog.Warn("Some selections were skipped", "projectId", p.ID, "skipped", skipped, "generated", len(units))
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", archiveName(p.Filename)))
	c.Header("X-Skipped-Units", strconv.Itoa(skipped))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
