// api/handlers/export_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/api/models"
	"github.com/Annany2002/nebula-nlsql/internal/export"
)

// ExportHandler renders a result set as a downloadable file.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// Export writes the posted rows as csv, json or xlsx.
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req models.ExportRequest
	if !bindJSON(c, &req) {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, req.Columns, req.Rows); err != nil {
		customLog.Warnf("Handler: Export to %s failed: %v", format, err)
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename("results")))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
