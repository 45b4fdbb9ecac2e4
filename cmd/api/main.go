package main

import (
	"context"
	"log"

	"gosof/adapters/api"
	"gosof/adapters/excel"
	"gosof/adapters/postgres"
	"gosof/adapters/postgres/migrations"
	"gosof/app"
	gosof "gosof/internal"
	"gosof/internal/config"
	"gosof/internal/engine"
	"gosof/internal/nuclide"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)

	if err := migrations.NewMigrator(db.DB).Up(context.Background()); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	logger := gosof.DefaultLogger
	aliases := nuclide.BuildAliasMap(nuclide.CandidatePaths(appConfig.Data.AliasPath, appConfig.Data.DataDir))
	logger.Info("loaded %d nuclide aliases", aliases.Len())

	eng := engine.New(nuclide.NewCanonicalizer(aliases))
	reader := excel.NewDataReader(logger)
	compute := app.NewComputeService(reader, eng, postgres.NewRunRepository(db), logger)

	server := api.NewServer(compute, logger)
	if err := server.Run(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
