package main

import (
	"log"
	"time"

	"eugenestrat/internal/config"
	"eugenestrat/internal/database"
	"eugenestrat/internal/email"
	"eugenestrat/internal/handlers"
	"eugenestrat/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		logger.Info("Email service enabled with Mailgun")
	} else {
		logger.Info("Email service disabled - Mailgun not configured")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	handlers.SetupRoutes(r, db, cfg, emailService)

	// Expired sessions and tokens accumulate; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := database.CleanupExpiredSessions(db); err != nil {
				logger.Warn("Session cleanup failed", "error", err)
			}
			if err := database.CleanupExpiredCSRFTokens(db); err != nil {
				logger.Warn("CSRF token cleanup failed", "error", err)
			}
			if err := database.CleanupExpiredActivationTokens(db); err != nil {
				logger.Warn("Activation token cleanup failed", "error", err)
			}
		}
	}()

	logger.Info("Server starting", "port", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
