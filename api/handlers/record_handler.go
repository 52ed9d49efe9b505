// api/handlers/record_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/api/models"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/services"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

// RecordHandler inserts single rows into project tables.
type RecordHandler struct {
	projectAccess
	Inserter *services.InsertExecutor
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(store domain.ProjectStore, gateway domain.DatabaseGateway, inserter *services.InsertExecutor) *RecordHandler {
	return &RecordHandler{
		projectAccess: projectAccess{Store: store, Gateway: gateway},
		Inserter:      inserter,
	}
}

// InsertRecord validates, coerces and inserts one row.
func (h *RecordHandler) InsertRecord(c *gin.Context) {
	var req models.InsertRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Table == "" || req.InsertData == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing table or insertData"})
		return
	}
	if len(req.InsertData) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "insertData cannot be empty"})
		return
	}
	if !core.IsValidIdentifier(req.Table) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid table name '%s'", req.Table)})
		return
	}

	project, conn, ok := h.openProject(c)
	if !ok {
		return
	}
	defer closeConn(project.ID, conn)

	tables, err := conn.GetSchema(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	table := findTable(tables, req.Table)
	if table == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Table '%s' not found", req.Table)})
		return
	}

	row, err := h.Inserter.Execute(c.Request.Context(), conn, services.InsertRequest{
		ProjectID: project.ID,
		UserID:    project.UserID,
		Schema:    storage.DefaultSchema,
		Table:     table,
		Payload:   req.InsertData,
	})
	if err != nil {
		h.writeInsertError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InsertResponse{Row: row, Table: req.Table})
}

func (h *RecordHandler) writeInsertError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		missingErr *services.MissingRequiredColumnsError
		dateErr    *services.InvalidDateFormatError
		execErr    *services.InsertExecutionError
	)
	switch {
	case errors.As(err, &missingErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required columns",
			"missing": missingErr.Missing,
		})
	case errors.As(err, &dateErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  dateErr.Error(),
			"column": dateErr.Column,
			"value":  dateErr.Value,
		})
	case errors.As(err, &execErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to insert row",
			"details": execErr.Detail,
		})
	}
}

func findTable(tables []domain.TableSchema, name string) *domain.TableSchema {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}
