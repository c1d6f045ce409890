package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"stratodrive/internal/config"
	"stratodrive/internal/handler"
	"stratodrive/internal/preview"
	"stratodrive/internal/repository"
	"stratodrive/internal/service"
	"stratodrive/internal/service/s3"
)

func connectWithRetry(cfg *config.Config, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	dsn := cfg.Database.GetDSN()

	// Сначала подключаемся к системной базе postgres, которая всегда существует
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Database.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Database.Name)
		if _, err := pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name)); err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectWithRetry(appConfig, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Инициализация репозиториев
	folderRepo := repository.NewFolderRepository(db)
	fileRepo := repository.NewFileRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	trashRepo := repository.NewTrashRepository(db)
	quotaRepo := repository.NewStorageQuotaRepository(db)

	// Инициализация сервисов
	quotaService := service.NewQuotaService(quotaRepo)
	folderService := service.NewFolderService(folderRepo, fileRepo, quotaRepo, s3Client)
	fileService := service.NewFileService(fileRepo, folderRepo, quotaRepo, s3Client)
	mediaService := service.NewMediaService(mediaRepo, quotaRepo, s3Client)
	trashService := service.NewTrashService(trashRepo, folderRepo, fileRepo, mediaRepo, quotaRepo, s3Client, appConfig.Trash.RetentionDays)
	usageService := service.NewUsageService(quotaRepo, mediaRepo, service.ZeroUsageReporter{})
	previewService := preview.NewService(s3Client, fileRepo)

	// Фоновая чистка просроченной корзины
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	trashService.StartAutoCleanup(cleanupCtx, appConfig.Trash.SweepInterval)

	// Инициализация хендлеров
	folderHandler := handler.NewFolderHandler(folderService)
	fileHandler := handler.NewFileHandler(fileService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	trashHandler := handler.NewTrashHandler(trashService)
	quotaHandler := handler.NewQuotaHandler(quotaService, usageService)
	previewHandler := handler.NewPreviewHandler(previewService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Account-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/files", fileHandler.UploadFile)
		r.Route("/files/{uuid}", func(r chi.Router) {
			r.Get("/", fileHandler.DownloadFile)
			r.Put("/rename", fileHandler.RenameFile)
			r.Put("/move", fileHandler.MoveFile)
			r.Delete("/", fileHandler.DeleteFile)
			r.Post("/restore", fileHandler.RestoreFile)
			r.Delete("/permanent", fileHandler.PermanentDeleteFile)
			r.Get("/preview", previewHandler.GetPreview)
			r.Get("/video", previewHandler.GetWebVideo)
		})

		r.Get("/folders", folderHandler.GetFolderContents)
		r.Post("/folders", folderHandler.CreateFolder)
		r.Route("/folders/{id}", func(r chi.Router) {
			r.Get("/", folderHandler.GetFolderContents)
			r.Put("/rename", folderHandler.RenameFolder)
			r.Put("/move", folderHandler.MoveFolder)
			r.Delete("/", folderHandler.DeleteFolder)
			r.Post("/restore", folderHandler.RestoreFolder)
			r.Delete("/permanent", folderHandler.PermanentDeleteFolder)
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/", mediaHandler.UploadMedia)
			r.Get("/trash", mediaHandler.ListTrashed)
			r.Post("/trash/empty", mediaHandler.EmptyTrash)
			r.Get("/analysis", mediaHandler.GetStorageAnalysis)
			r.Get("/category/{category}", mediaHandler.ListByCategory)
			r.Delete("/category/{category}", mediaHandler.DeleteByCategory)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", mediaHandler.GetMedia)
				r.Delete("/", mediaHandler.DeleteMedia)
				r.Post("/restore", mediaHandler.RestoreMedia)
				r.Delete("/permanent", mediaHandler.PermanentDeleteMedia)
			})
		})

		r.Route("/trash", func(r chi.Router) {
			r.Get("/", trashHandler.GetTrashItems)
			r.Post("/cleanup", trashHandler.Cleanup)
		})

		r.Route("/quota", func(r chi.Router) {
			r.Get("/combined", quotaHandler.GetCombinedUsage)
			r.Route("/{domain}", func(r chi.Router) {
				r.Get("/", quotaHandler.GetQuota)
				r.Get("/plan", quotaHandler.GetPlan)
				r.Put("/plan", quotaHandler.SetPlan)
				r.Post("/recalculate", quotaHandler.Recalculate)
			})
		})
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	cancelCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
