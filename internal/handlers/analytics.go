package handlers

import (
	"database/sql"
	"net/http"

	"eugenestrat/internal/database"
	"eugenestrat/internal/logger"

	"github.com/gin-gonic/gin"
)

// handleAnalytics serves the whole dashboard in one response. Aggregates
// are fetched all-or-nothing so the dashboard never renders half a
// picture.
func handleAnalytics(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	analytics, err := database.GetAnalytics(db, userID)
	if err != nil {
		logger.Error("Failed to load analytics",
			"user_id", userID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, analytics)
}
