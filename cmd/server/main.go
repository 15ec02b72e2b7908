package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sketchbin/internal/cache"
	"sketchbin/internal/config"
	"sketchbin/internal/db"
	"sketchbin/internal/files"
	"sketchbin/internal/handler"
	"sketchbin/internal/mail"
	"sketchbin/internal/model"
	"sketchbin/internal/repository"
	"sketchbin/internal/router"
	"sketchbin/internal/service"
)

// @title sketchbin API
// @version 1.0
// @description Passwordless email-code authentication and project sharing.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Project{},
			&model.Session{},
			&model.OneTimeCode{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.OneTimeCode{},
		&model.Session{},
		&model.Project{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		log.Fatalf("mailer init: %v", err)
	}

	thumbnails, err := files.NewStore(cfg.ThumbnailDir)
	if err != nil {
		log.Fatalf("thumbnail store init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	codeRepo := repository.NewCodeRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, codeRepo, sessionRepo, mailer, cacheClient)
	projectService := service.NewProjectService(projectRepo, authService, thumbnails)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)

	router.Register(e, authHandler, projectHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
