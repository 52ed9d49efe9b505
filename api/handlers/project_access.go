// api/handlers/project_access.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/services"
)

// projectAccess resolves the :project_id path parameter for the current user.
type projectAccess struct {
	Store   domain.ProjectStore
	Gateway domain.DatabaseGateway
}

// loadProject returns the caller's project or attaches the lookup error.
func (a projectAccess) loadProject(c *gin.Context) (*domain.Project, bool) {
	userID := c.GetString("userId")
	project, err := a.Store.FindProjectByID(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return project, true
}

// openProject loads the project and connects to its database. The caller
// closes the connection.
func (a projectAccess) openProject(c *gin.Context) (*domain.Project, domain.ProjectConn, bool) {
	project, ok := a.loadProject(c)
	if !ok {
		return nil, nil, false
	}
	if project.ConnectionString == "" {
		_ = c.Error(services.ErrMissingConnection)
		return nil, nil, false
	}
	conn, err := a.Gateway.Connect(c.Request.Context(), project.ConnectionString)
	if err != nil {
		customLog.Warnf("Handler: Failed to connect to project %s: %v", project.ID, err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Project database is unavailable", "details": err.Error()})
		return nil, nil, false
	}
	return project, conn, true
}

func closeConn(projectID string, conn domain.ProjectConn) {
	if err := conn.Close(); err != nil {
		customLog.Warnf("Handler: Failed to close connection for project %s: %v", projectID, err)
	}
}

// bindJSON binds the body and writes a 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}
