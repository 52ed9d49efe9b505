// api/handlers/project_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/api/models"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/services"
)

// ProjectHandler creates and lists projects.
type ProjectHandler struct {
	projectAccess
	Creator *services.ProjectCreator
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(store domain.ProjectStore, gateway domain.DatabaseGateway, creator *services.ProjectCreator) *ProjectHandler {
	return &ProjectHandler{
		projectAccess: projectAccess{Store: store, Gateway: gateway},
		Creator:       creator,
	}
}

// ListProjects returns the caller's projects, newest first.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.Store.ListProjects(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns one project's metadata.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject builds a project database from a natural-language description.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := c.GetString("userId")
	report, err := h.Creator.Create(c.Request.Context(), userID, req.NaturalLanguageInput)
	if err != nil {
		h.writeCreationError(c, err)
		return
	}

	customLog.Printf("Handler: Project '%s' created for user %s", report.Project.ProjectName, userID)
	c.JSON(http.StatusOK, report)
}

// ApplySchema retries table creation for a project whose database was not ready.
func (h *ProjectHandler) ApplySchema(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	report, err := h.Creator.ApplySchema(c.Request.Context(), project)
	if err != nil {
		h.writeCreationError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ProjectHandler) writeCreationError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		inferErr    *services.SchemaInferenceError
		conflictErr *services.ProjectConflictError
		provErr     *services.ProvisioningError
		readyErr    *services.ReadinessError
	)
	switch {
	case errors.As(err, &inferErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to infer database schema",
			"details": inferErr.Details,
		})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":      conflictErr.Error(),
			"suggestion": conflictErr.Suggestion,
		})
	case errors.As(err, &provErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create database",
			"details": provErr.Details,
		})
	case errors.As(err, &readyErr):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":      "Project database created but not yet ready",
			"project":    readyErr.Project,
			"suggestion": readyErr.Suggestion,
		})
	}
}
