package handlers

import (
	"database/sql"
	"net/http"
	"regexp"
	"strings"

	"eugenestrat/internal/config"
	"eugenestrat/internal/database"
	emailService "eugenestrat/internal/email"
	"eugenestrat/internal/logger"

	"github.com/gin-gonic/gin"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleRegister(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	cfg := c.MustGet("config").(*config.Config)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if len(req.Username) < 3 || len(req.Username) > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be between 3 and 30 characters"})
		return
	}
	if !emailRegex.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	user, err := database.CreateUser(db, req.Username, req.Email, req.Password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with those credentials already exists"})
			return
		}
		logger.Error("Failed to create user",
			"email", req.Email,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account. Please try again."})
		return
	}

	activationToken, err := database.CreateActivationToken(db, user.ID)
	if err != nil {
		logger.Error("Failed to create activation token",
			"email", user.Email,
			"user_id", user.ID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete registration. Please try again."})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		go func() {
			if err := service.SendActivationEmail(user, activationToken.Token); err != nil {
				logger.Warn("Failed to send activation email",
					"email", user.Email,
					"user_id", user.ID,
					"error", err)
			}
		}()
	}

	session, err := database.CreateSession(db, user.ID, cfg.SessionDuration)
	if err != nil {
		logger.Error("Failed to create session after registration",
			"user_id", user.ID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account created, please log in"})
		return
	}

	setSessionCookie(c, cfg, session.ID)

	logger.Info("User registered",
		"user_id", user.ID,
		"email", user.Email)

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	cfg := c.MustGet("config").(*config.Config)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := database.AuthenticateUser(db, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	session, err := database.CreateSession(db, user.ID, cfg.SessionDuration)
	if err != nil {
		logger.Error("Failed to create session",
			"user_id", user.ID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in. Please try again."})
		return
	}

	setSessionCookie(c, cfg, session.ID)

	logger.Info("User logged in", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func handleLogout(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	if sessionCookie, err := c.Cookie("session_id"); err == nil {
		if err := database.DeleteSession(db, sessionCookie); err != nil {
			logger.Warn("Failed to delete session", "error", err)
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("session_id", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func handleActivate(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	token := c.Param("token")

	user, err := database.ValidateActivationToken(db, token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activation link is invalid or has expired"})
		return
	}

	if err := database.ActivateUser(db, user.ID, token); err != nil {
		logger.Error("Failed to activate user",
			"user_id", user.ID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate account. Please try again."})
		return
	}

	logger.Info("User activated", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Account activated"})
}

func setSessionCookie(c *gin.Context, cfg *config.Config, sessionID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	secure := !cfg.IsDevelopment()
	c.SetCookie("session_id", sessionID, int(cfg.SessionDuration.Seconds()), "/", "", secure, true)
}
