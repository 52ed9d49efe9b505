// cmd/server/main.go
package main

import (
	"context"
	"fmt"

	"github.com/Annany2002/nebula-nlsql/api"
	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting nebula-nlsql server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	metaDB, err := storage.ConnectMetadataDB(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize metadata database: %v", err)
	}
	defer func() {
		customLog.Println("Closing metadata database connection...")
		if err := metaDB.Close(); err != nil {
			customLog.Printf("Error closing metadata database: %v", err)
		}
	}()

	gateway, err := storage.NewPostgresGateway(context.Background(), cfg)
	if err != nil {
		customLog.Fatalf("Failed to connect to the project database server: %v", err)
	}
	defer gateway.Close()

	client, err := llm.NewOpenAIClient(cfg.LLM)
	if err != nil {
		customLog.Fatalf("Failed to initialize LLM client: %v", err)
	}

	router := api.SetupRouter(api.Dependencies{
		MetaDB:  metaDB,
		Cfg:     cfg,
		LLM:     client,
		Gateway: gateway,
	})

	customLog.Printf("Server listening on port %s", cfg.ServerPort)
	if err := router.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
