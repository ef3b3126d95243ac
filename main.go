package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"autopipe/adapters/crypt"
	"autopipe/adapters/filestore"
	"autopipe/adapters/narrative/heuristic"
	"autopipe/adapters/postgres"
	"autopipe/adapters/postgres/migrations"
	"autopipe/app"
	"autopipe/internal"
	"autopipe/internal/config"
	"autopipe/internal/errors"
	"autopipe/ui"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	logger := internal.DefaultLogger

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	encryptor, err := crypt.NewEncryptor(appConfig.Storage.MasterKey)
	if err != nil {
		log.Fatalf("encryption error: %v", err)
	}
	files, err := filestore.NewLocalStore(appConfig.Storage.UploadDir, encryptor)
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}

	service := app.NewAnalysisService(app.AnalysisServiceDeps{
		Datasets:      postgres.NewDatasetRepository(db),
		Pipelines:     postgres.NewPipelineRepository(db),
		Metrics:       postgres.NewMetricsRepository(db),
		Files:         files,
		Narrative:     heuristic.NewExplainer(),
		MaxConcurrent: appConfig.Analysis.MaxConcurrent,
	})

	webApp := ui.NewApp(service, ui.Config{
		APIKey:      appConfig.Server.APIKey,
		MaxUploadMB: appConfig.Analysis.MaxUploadMB,
	})

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           webApp.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening on :%s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error: %v", err)
	}
}
