package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"eugenestrat/internal/database"
	"eugenestrat/internal/grid"
	"eugenestrat/internal/logger"
	"eugenestrat/internal/models"

	"github.com/gin-gonic/gin"
)

// projectView decorates a project with its pixel position on the matrix.
type projectView struct {
	models.Project
	Position grid.Position `json:"position"`
}

func toProjectView(p models.Project) projectView {
	return projectView{
		Project:  p,
		Position: grid.ToPixels(p.Cost, p.Benefit),
	}
}

func toProjectViews(projects []models.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	return views
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, database.ErrProjectLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 20 projects allowed. Complete or delete existing projects first."})
	case errors.Is(err, database.ErrPositionOccupied):
		c.JSON(http.StatusConflict, gin.H{"error": "A project with this cost/benefit combination already exists."})
	case errors.Is(err, database.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "Project is already completed"})
	case errors.Is(err, database.ErrMatrixFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Every matrix position is occupied"})
	default:
		logger.Error("Project operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}

func handleListProjects(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	projects, err := database.GetProjects(db, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	totalXP, err := database.GetUserXP(db, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": toProjectViews(projects),
		"total_xp": totalXP,
	})
}

type createProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cost        int      `json:"cost"`
	Benefit     int      `json:"benefit"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Confidence  string   `json:"confidence"`
	Tags        []string `json:"tags"`
	DueDate     string   `json:"due_date"`
}

func handleCreateProject(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name == "" || len(req.Name) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name must be between 1 and 100 characters"})
		return
	}
	// Zero coordinates mean automatic placement on the first free cell.
	if (req.Cost != 0 || req.Benefit != 0) &&
		(!models.ValidCoordinate(req.Cost) || !models.ValidCoordinate(req.Benefit)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cost and benefit must be between 1 and 10"})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	if !models.ValidConfidence(req.Confidence) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid confidence level"})
		return
	}
	if req.Status != "" && req.Status != models.StatusActive && req.Status != models.StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be active or inactive"})
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Benefit:     req.Benefit,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		Confidence:  req.Confidence,
		Tags:        req.Tags,
	}

	if req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be in YYYY-MM-DD format"})
			return
		}
		project.DueDate = &dueDate
	}

	created, err := database.CreateProject(db, userID, project)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	logger.Info("Project created",
		"user_id", userID,
		"project_id", created.ID)

	c.JSON(http.StatusCreated, gin.H{"project": toProjectView(*created)})
}

type updateProjectRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Cost         *int      `json:"cost"`
	Benefit      *int      `json:"benefit"`
	Category     *string   `json:"category"`
	Priority     *string   `json:"priority"`
	Status       *string   `json:"status"`
	Confidence   *string   `json:"confidence"`
	Tags         *[]string `json:"tags"`
	DueDate      *string   `json:"due_date"`
	IsBossBattle *bool     `json:"is_boss_battle"`
}

func handleUpdateProject(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	projectID := c.Param("id")

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name != nil && (*req.Name == "" || len(*req.Name) > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name must be between 1 and 100 characters"})
		return
	}
	if req.Cost != nil && !models.ValidCoordinate(*req.Cost) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cost must be between 1 and 10"})
		return
	}
	if req.Benefit != nil && !models.ValidCoordinate(*req.Benefit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Benefit must be between 1 and 10"})
		return
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	if req.Confidence != nil && !models.ValidConfidence(*req.Confidence) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid confidence level"})
		return
	}
	if req.Status != nil && *req.Status != models.StatusActive && *req.Status != models.StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be active or inactive"})
		return
	}

	patch := database.ProjectPatch{
		Name:         req.Name,
		Description:  req.Description,
		Cost:         req.Cost,
		Benefit:      req.Benefit,
		Category:     req.Category,
		Priority:     req.Priority,
		Status:       req.Status,
		Confidence:   req.Confidence,
		Tags:         req.Tags,
		IsBossBattle: req.IsBossBattle,
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			dueDate, err := time.Parse("2006-01-02", *req.DueDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be in YYYY-MM-DD format"})
				return
			}
			patch.DueDate = &dueDate
		}
	}

	updated, err := database.UpdateProject(db, userID, projectID, patch)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": toProjectView(*updated)})
}

func handleDeleteProject(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	projectID := c.Param("id")

	if err := database.DeleteProject(db, userID, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	logger.Info("Project deleted",
		"user_id", userID,
		"project_id", projectID)

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

type completeProjectRequest struct {
	AccuracyRating int `json:"accuracy_rating"`
}

func handleCompleteProject(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	projectID := c.Param("id")

	var req completeProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !models.ValidAccuracyRating(req.AccuracyRating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Accuracy rating must be between 1 and 5"})
		return
	}

	completed, totalXP, err := database.CompleteProject(db, userID, projectID, req.AccuracyRating)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	logger.Info("Project completed",
		"user_id", userID,
		"project_id", projectID,
		"xp_earned", *completed.XPEarned)

	c.JSON(http.StatusOK, gin.H{
		"project":   toProjectView(*completed),
		"xp_earned": completed.XPEarned,
		"total_xp":  totalXP,
	})
}

func handleToggleBossBattle(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	projectID := c.Param("id")

	toggled, err := database.ToggleBossBattle(db, userID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": toProjectView(*toggled)})
}

func handleResetAllData(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	if err := database.ResetAllUserData(db, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	logger.Warn("User data reset", "user_id", userID)

	c.JSON(http.StatusOK, gin.H{
		"message":  "All projects and XP have been reset",
		"total_xp": 0,
	})
}
