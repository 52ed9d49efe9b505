// api/handlers/query_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/api/models"
	"github.com/Annany2002/nebula-nlsql/internal/ai"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/services"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

// QueryHandler serves schema introspection, analysis, execution and history.
type QueryHandler struct {
	projectAccess
	LLM    llm.Client
	Batch  *services.BatchExecutor
	MetaDB *sql.DB
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store domain.ProjectStore, gateway domain.DatabaseGateway, client llm.Client, batch *services.BatchExecutor, metaDB *sql.DB) *QueryHandler {
	return &QueryHandler{
		projectAccess: projectAccess{Store: store, Gateway: gateway},
		LLM:           client,
		Batch:         batch,
		MetaDB:        metaDB,
	}
}

// withSchema opens the project, introspects it and calls fn with the tables.
func (h *QueryHandler) withSchema(c *gin.Context, fn func(project *domain.Project, schema []domain.TableSchema)) {
	project, conn, ok := h.openProject(c)
	if !ok {
		return
	}
	defer closeConn(project.ID, conn)

	schema, err := conn.GetSchema(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	fn(project, schema)
}

// GetSchema lists the project's tables and columns.
func (h *QueryHandler) GetSchema(c *gin.Context) {
	h.withSchema(c, func(project *domain.Project, schema []domain.TableSchema) {
		c.JSON(http.StatusOK, models.SchemaResponse{ProjectID: project.ID, Tables: schema})
	})
}

// Suggestions proposes natural-language questions for the project.
func (h *QueryHandler) Suggestions(c *gin.Context) {
	h.withSchema(c, func(_ *domain.Project, schema []domain.TableSchema) {
		c.JSON(http.StatusOK, gin.H{"suggestions": ai.SuggestQueries(c.Request.Context(), h.LLM, schema)})
	})
}

// Analyze turns a natural-language question into proposed statements.
func (h *QueryHandler) Analyze(c *gin.Context) {
	var req models.NaturalLanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSchema(c, func(_ *domain.Project, schema []domain.TableSchema) {
		analysis, err := ai.AnalyzeQuery(c.Request.Context(), h.LLM, req.Request, schema)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	})
}

// AnalyzeUpdate plans a schema change.
func (h *QueryHandler) AnalyzeUpdate(c *gin.Context) {
	var req models.NaturalLanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSchema(c, func(project *domain.Project, schema []domain.TableSchema) {
		analysis, err := ai.AnalyzeProjectUpdateRequest(c.Request.Context(), h.LLM, req.Request, schema, project.DatabaseName)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	})
}

// AnalyzeTable proposes a CREATE TABLE statement.
func (h *QueryHandler) AnalyzeTable(c *gin.Context) {
	var req models.NaturalLanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSchema(c, func(_ *domain.Project, schema []domain.TableSchema) {
		op, err := ai.AnalyzeCreateTableRequest(c.Request.Context(), h.LLM, req.Request, schema)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, op)
	})
}

// Execute runs a batch of statements with per-statement failure isolation.
func (h *QueryHandler) Execute(c *gin.Context) {
	var req models.ExecuteRequest
	if !bindJSON(c, &req) {
		return
	}
	project, conn, ok := h.openProject(c)
	if !ok {
		return
	}
	defer closeConn(project.ID, conn)

	result := h.Batch.Execute(c.Request.Context(), conn, project.ID, c.GetString("userId"), req.Statements)
	c.JSON(http.StatusOK, result)
}

// ExplainError turns a database error into a user-facing explanation. Schema
// context is included when the project database is reachable.
func (h *QueryHandler) ExplainError(c *gin.Context) {
	var req models.ExplainErrorRequest
	if !bindJSON(c, &req) {
		return
	}
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var schema []domain.TableSchema
	if conn, err := h.Gateway.Connect(c.Request.Context(), project.ConnectionString); err == nil {
		schema, err = conn.GetSchema(c.Request.Context())
		if err != nil {
			customLog.Warnf("Handler: Schema unavailable for error explanation on project %s: %v", project.ID, err)
		}
		closeConn(project.ID, conn)
	}

	c.JSON(http.StatusOK, ai.ParseDbError(c.Request.Context(), h.LLM, req.Error, req.SQL, schema))
}

// History lists executed statements for the project.
func (h *QueryHandler) History(c *gin.Context) {
	opts, err := core.ParseHistoryQueryOptions(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	entries, err := storage.ListQueryHistory(c.Request.Context(), h.MetaDB, project.UserID, project.ID, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{Entries: entries, Limit: opts.Limit, Offset: opts.Offset})
}
