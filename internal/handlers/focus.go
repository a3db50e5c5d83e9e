package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"eugenestrat/internal/database"
	"eugenestrat/internal/logger"
	"eugenestrat/internal/models"

	"github.com/gin-gonic/gin"
)

// sessionView decorates an in-flight session with the seconds left on
// the wall clock, so a reconnecting client can resume its timer.
type sessionView struct {
	models.FocusSession
	RemainingSeconds int `json:"remaining_seconds"`
}

func toSessionView(s models.FocusSession) sessionView {
	remaining := s.Duration*60 - int(time.Since(s.StartedAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return sessionView{FocusSession: s, RemainingSeconds: remaining}
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not active"})
	case errors.Is(err, database.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or already finished"})
	case errors.Is(err, database.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active focus session"})
	case errors.Is(err, database.ErrSessionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A focus session is already in progress"})
	default:
		logger.Error("Focus operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}

// handleFocusProjects lists the projects a session can be started
// against, most recently touched first.
func handleFocusProjects(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	projects, err := database.GetActiveProjects(db, userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": toProjectViews(projects)})
}

func handleActiveSession(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	session, err := database.GetActiveFocusSession(db, userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": toSessionView(*session)})
}

type startSessionRequest struct {
	ProjectID string `json:"project_id"`
	Duration  int    `json:"duration"`
	Willpower string `json:"willpower"`
	Goal      string `json:"goal"`
}

func handleStartSession(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project is required"})
		return
	}
	if !models.ValidDuration(req.Duration) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be 60, 90 or 120 minutes"})
		return
	}
	if !models.ValidWillpower(req.Willpower) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Willpower must be high, medium or low"})
		return
	}

	session, err := database.StartFocusSession(db, userID, req.ProjectID, req.Duration, req.Willpower, req.Goal)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	logger.Info("Focus session started",
		"user_id", userID,
		"project_id", req.ProjectID,
		"duration", req.Duration)

	c.JSON(http.StatusCreated, gin.H{"session": toSessionView(*session)})
}

type completeSessionRequest struct {
	Mindset     string  `json:"mindset"`
	GoalOutcome *string `json:"goal_outcome"`
	Notes       string  `json:"notes"`
}

func handleCompleteSession(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	sessionID := c.Param("id")

	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !models.ValidMindset(req.Mindset) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mindset must be high, medium or low"})
		return
	}
	if req.GoalOutcome != nil && !models.ValidGoalOutcome(*req.GoalOutcome) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Goal outcome must be yes, partial or no"})
		return
	}

	session, totalXP, err := database.CompleteFocusSession(db, userID, sessionID, req.Mindset, req.GoalOutcome, req.Notes)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	logger.Info("Focus session completed",
		"user_id", userID,
		"session", sessionID,
		"xp_earned", *session.XPEarned)

	c.JSON(http.StatusOK, gin.H{
		"session":   session,
		"xp_earned": session.XPEarned,
		"total_xp":  totalXP,
	})
}

func handleInterruptSession(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	sessionID := c.Param("id")

	session, totalXP, err := database.InterruptFocusSession(db, userID, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	logger.Info("Focus session interrupted",
		"user_id", userID,
		"session", sessionID)

	c.JSON(http.StatusOK, gin.H{
		"session":   session,
		"xp_earned": session.XPEarned,
		"total_xp":  totalXP,
	})
}

func handleTodayStats(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	stats, err := database.GetTodayStats(db, userID, database.Today())
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

type commitmentRequest struct {
	TargetSessions int `json:"target_sessions"`
}

func handleSetCommitment(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	var req commitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.TargetSessions < 1 || req.TargetSessions > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target sessions must be between 1 and 20"})
		return
	}

	if err := database.SetDailyCommitment(db, userID, database.Today(), req.TargetSessions); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commitment_date": database.Today(),
		"target_sessions": req.TargetSessions,
	})
}

func handleClearCommitment(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	if err := database.ClearDailyCommitment(db, userID, database.Today()); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commitment cleared"})
}
