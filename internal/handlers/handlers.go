package handlers

import (
	"database/sql"
	"net/http"

	"eugenestrat/internal/config"
	"eugenestrat/internal/database"
	"eugenestrat/internal/email"
	"eugenestrat/internal/middleware"
	"eugenestrat/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, emailService *email.Service) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))
	r.Use(middleware.AddDBContext(db))
	r.Use(addConfigContext(cfg))
	r.Use(addEmailServiceContext(emailService))

	api := r.Group("/api")

	api.POST("/register", middleware.AuthRateLimit(cfg), handleRegister)
	api.POST("/login", middleware.AuthRateLimit(cfg), handleLogin)
	api.GET("/activate/:token", handleActivate)
	api.POST("/logout", middleware.AuthRequired(db, cfg), handleLogout)

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(db, cfg))
	protected.Use(middleware.CSRF(cfg))
	{
		protected.GET("/me", handleMe)
		protected.GET("/csrf-token", handleCSRFToken)

		protected.GET("/projects", handleListProjects)
		protected.POST("/projects", handleCreateProject)
		protected.PUT("/projects/:id", handleUpdateProject)
		protected.DELETE("/projects/:id", handleDeleteProject)
		protected.POST("/projects/:id/complete", handleCompleteProject)
		protected.POST("/projects/:id/boss-battle", handleToggleBossBattle)
		protected.POST("/reset", handleResetAllData)

		protected.GET("/focus/projects", handleFocusProjects)
		protected.GET("/focus/active", handleActiveSession)
		protected.POST("/focus/sessions", handleStartSession)
		protected.POST("/focus/sessions/:id/complete", handleCompleteSession)
		protected.POST("/focus/sessions/:id/interrupt", handleInterruptSession)
		protected.GET("/focus/today", handleTodayStats)
		protected.PUT("/focus/commitment", handleSetCommitment)
		protected.DELETE("/focus/commitment", handleClearCommitment)

		protected.GET("/analytics", handleAnalytics)
	}
}

func addConfigContext(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func addEmailServiceContext(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email_service", emailService)
		c.Next()
	}
}

func handleMe(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	db := c.MustGet("db").(*sql.DB)

	totalXP, err := database.GetUserXP(db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"total_xp": totalXP,
	})
}

func handleCSRFToken(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	token, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate security token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"csrf_token": token.Token})
}
