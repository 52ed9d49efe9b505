// api/router.go
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/api/handlers"
	"github.com/Annany2002/nebula-nlsql/api/middleware"
	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/services"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

// Dependencies are the collaborators the HTTP layer is built from.
// Store and History default to the SQLite metadata database.
type Dependencies struct {
	MetaDB  *sql.DB
	Cfg     *config.Config
	LLM     llm.Client
	Gateway domain.DatabaseGateway
	Store   domain.ProjectStore
	History domain.HistoryLogger
}

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Cfg
	if deps.Store == nil {
		deps.Store = storage.NewMetadataStore(deps.MetaDB)
	}
	if deps.History == nil {
		deps.History = storage.NewHistoryLogger(deps.MetaDB)
	}

	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)))
	router.Use(middleware.ErrorHandler())

	creator := services.NewProjectCreator(deps.LLM, deps.Gateway, deps.Store, deps.History)
	authHandler := handlers.NewAuthHandler(deps.MetaDB, cfg)
	projectHandler := handlers.NewProjectHandler(deps.Store, deps.Gateway, creator)
	queryHandler := handlers.NewQueryHandler(deps.Store, deps.Gateway, deps.LLM, services.NewBatchExecutor(deps.History), deps.MetaDB)
	recordHandler := handlers.NewRecordHandler(deps.Store, deps.Gateway, services.NewInsertExecutor(deps.History))
	exportHandler := handlers.NewExportHandler()

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		apiRoutes.GET("/me", authHandler.Me)

		apiRoutes.GET("/projects", projectHandler.ListProjects)
		apiRoutes.POST("/projects", projectHandler.CreateProject)
		apiRoutes.GET("/projects/:project_id", projectHandler.GetProject)
		apiRoutes.POST("/projects/:project_id/apply-schema", projectHandler.ApplySchema)

		apiRoutes.GET("/projects/:project_id/schema", queryHandler.GetSchema)
		apiRoutes.GET("/projects/:project_id/suggestions", queryHandler.Suggestions)
		apiRoutes.POST("/projects/:project_id/analyze", queryHandler.Analyze)
		apiRoutes.POST("/projects/:project_id/analyze-update", queryHandler.AnalyzeUpdate)
		apiRoutes.POST("/projects/:project_id/analyze-table", queryHandler.AnalyzeTable)
		apiRoutes.POST("/projects/:project_id/execute", queryHandler.Execute)
		apiRoutes.POST("/projects/:project_id/explain-error", queryHandler.ExplainError)
		apiRoutes.GET("/projects/:project_id/history", queryHandler.History)

		apiRoutes.POST("/projects/:project_id/insert", recordHandler.InsertRecord)

		apiRoutes.POST("/export", exportHandler.Export)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
