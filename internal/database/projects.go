package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"eugenestrat/internal/grid"
	"eugenestrat/internal/models"
	"eugenestrat/internal/xp"

	"github.com/google/uuid"
)

// MaxProjects caps a user's live (non-completed) project count.
const MaxProjects = 20

func GetProjects(db *sql.DB, userID int) ([]models.Project, error) {
	query := `
		SELECT id, user_id, name, description, cost, benefit, category, priority, status,
		       confidence, tags, due_date, is_boss_battle, accuracy_rating, xp_earned,
		       created_at, updated_at, completed_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// GetActiveProjects returns projects eligible for focus sessions.
func GetActiveProjects(db *sql.DB, userID int) ([]models.Project, error) {
	query := `
		SELECT id, user_id, name, description, cost, benefit, category, priority, status,
		       confidence, tags, due_date, is_boss_battle, accuracy_rating, xp_earned,
		       created_at, updated_at, completed_at
		FROM projects
		WHERE user_id = ? AND status = 'active'
		ORDER BY updated_at DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active projects: %w", err)
	}

	return projects, nil
}

func GetProject(db *sql.DB, userID int, projectID string) (*models.Project, error) {
	query := `
		SELECT id, user_id, name, description, cost, benefit, category, priority, status,
		       confidence, tags, due_date, is_boss_battle, accuracy_rating, xp_earned,
		       created_at, updated_at, completed_at
		FROM projects
		WHERE id = ? AND user_id = ?
	`

	project, err := scanProject(db.QueryRow(query, projectID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	return project, nil
}

// CreateProject inserts a new project for the user. The cap check, the
// free-cell scan and the insert run in one transaction, so a racing
// create cannot slip past the live-project limit. A coordinate collision
// with a non-completed project surfaces as ErrPositionOccupied. When the
// input carries zero coordinates the first free matrix cell is assigned.
func CreateProject(db *sql.DB, userID int, project models.Project) (*models.Project, error) {
	if project.Status == "" {
		project.Status = models.StatusActive
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	tags, err := json.Marshal(project.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	project.ID = uuid.New().String()
	project.UserID = userID
	project.IsBossBattle = false

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM projects WHERE user_id = ? AND status != 'completed'`,
		userID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count live projects: %w", err)
	}
	if count >= MaxProjects {
		return nil, ErrProjectLimit
	}

	if project.Cost == 0 && project.Benefit == 0 {
		live, err := liveProjectCoordsTx(tx, userID)
		if err != nil {
			return nil, err
		}
		coords, ok := grid.FirstFreeCell(live)
		if !ok {
			return nil, ErrMatrixFull
		}
		project.Cost = coords.Cost
		project.Benefit = coords.Benefit
	}

	query := `
		INSERT INTO projects (id, user_id, name, description, cost, benefit, category,
		                      priority, status, confidence, tags, due_date, is_boss_battle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query, project.ID, userID, project.Name, project.Description,
		project.Cost, project.Benefit, project.Category, project.Priority,
		project.Status, project.Confidence, string(tags), project.DueDate, false)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPositionOccupied
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit project creation: %w", err)
	}

	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()

	return &project, nil
}

// liveProjectCoordsTx returns the occupied cells of non-completed
// projects, for the free-cell scan inside the creation transaction.
func liveProjectCoordsTx(tx *sql.Tx, userID int) ([]models.Project, error) {
	rows, err := tx.Query(
		`SELECT cost, benefit FROM projects WHERE user_id = ? AND status != 'completed'`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query occupied cells: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.Cost, &p.Benefit); err != nil {
			return nil, fmt.Errorf("failed to scan occupied cell: %w", err)
		}
		projects = append(projects, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occupied cells: %w", err)
	}

	return projects, nil
}

// ProjectPatch carries the optional field updates for UpdateProject.
// Nil fields are left untouched. Status may only move between active and
// inactive; completion goes through CompleteProject exclusively.
type ProjectPatch struct {
	Name         *string
	Description  *string
	Cost         *int
	Benefit      *int
	Category     *string
	Priority     *string
	Status       *string
	Confidence   *string
	Tags         *[]string
	DueDate      *time.Time
	ClearDueDate bool
	IsBossBattle *bool
}

func UpdateProject(db *sql.DB, userID int, projectID string, patch ProjectPatch) (*models.Project, error) {
	project, err := GetProject(db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	if patch.Status != nil && *patch.Status == models.StatusCompleted {
		return nil, fmt.Errorf("completion is not allowed through the edit path")
	}

	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Cost != nil {
		project.Cost = *patch.Cost
	}
	if patch.Benefit != nil {
		project.Benefit = *patch.Benefit
	}
	if patch.Category != nil {
		project.Category = *patch.Category
	}
	if patch.Priority != nil {
		project.Priority = *patch.Priority
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.Confidence != nil {
		project.Confidence = *patch.Confidence
	}
	if patch.Tags != nil {
		project.Tags = *patch.Tags
	}
	if patch.DueDate != nil {
		project.DueDate = patch.DueDate
	}
	if patch.ClearDueDate {
		project.DueDate = nil
	}
	if patch.IsBossBattle != nil {
		project.IsBossBattle = *patch.IsBossBattle
	}

	tags, err := json.Marshal(project.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE projects
		SET name = ?, description = ?, cost = ?, benefit = ?, category = ?, priority = ?,
		    status = ?, confidence = ?, tags = ?, due_date = ?, is_boss_battle = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status != 'completed'
	`

	result, err := db.Exec(query, project.Name, project.Description, project.Cost,
		project.Benefit, project.Category, project.Priority, project.Status,
		project.Confidence, string(tags), project.DueDate, project.IsBossBattle,
		projectID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPositionOccupied
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProjectNotFound
	}

	project.UpdatedAt = time.Now()
	return project, nil
}

func DeleteProject(db *sql.DB, userID int, projectID string) error {
	result, err := db.Exec(`DELETE FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// CompleteProject marks the project completed and credits its XP in one
// transaction. The XP amount uses the project's current boss-battle
// flag. The status guard in the UPDATE makes a concurrent double
// completion report ErrAlreadyCompleted instead of paying twice.
func CompleteProject(db *sql.DB, userID int, projectID string, accuracyRating int) (*models.Project, int, error) {
	project, err := GetProject(db, userID, projectID)
	if err != nil {
		return nil, 0, err
	}
	if project.Status == models.StatusCompleted {
		return nil, 0, ErrAlreadyCompleted
	}

	xpEarned := xp.ProjectXP(project.Cost, project.Benefit, project.IsBossBattle)
	completedAt := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE projects
		SET status = 'completed', accuracy_rating = ?, xp_earned = ?, completed_at = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status != 'completed'
	`, accuracyRating, xpEarned, completedAt, projectID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to complete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, 0, ErrAlreadyCompleted
	}

	if err := incrementUserXPTx(tx, userID, xpEarned); err != nil {
		return nil, 0, err
	}

	var totalXP int
	if err := tx.QueryRow(`SELECT xp_points FROM user_preferences WHERE user_id = ?`, userID).Scan(&totalXP); err != nil {
		return nil, 0, fmt.Errorf("failed to read XP total: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit completion: %w", err)
	}

	project.Status = models.StatusCompleted
	project.AccuracyRating = &accuracyRating
	project.XPEarned = &xpEarned
	project.CompletedAt = &completedAt

	return project, totalXP, nil
}

// ToggleBossBattle flips the boss-battle flag on a non-completed
// project. XP is not recomputed; the flag only matters at completion.
func ToggleBossBattle(db *sql.DB, userID int, projectID string) (*models.Project, error) {
	project, err := GetProject(db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	newFlag := !project.IsBossBattle

	result, err := db.Exec(`
		UPDATE projects
		SET is_boss_battle = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status != 'completed'
	`, newFlag, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle boss battle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProjectNotFound
	}

	project.IsBossBattle = newFlag
	return project, nil
}

// ResetAllUserData deletes every project belonging to the user and
// zeroes the durable XP total, atomically.
func ResetAllUserData(db *sql.DB, userID int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM projects WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete projects: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO user_preferences (user_id, xp_points) VALUES (?, 0)
		ON CONFLICT(user_id) DO UPDATE SET xp_points = 0, updated_at = CURRENT_TIMESTAMP
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset XP: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	return nil
}

// GetUserXP returns the user's durable XP total, 0 when no row exists.
func GetUserXP(db *sql.DB, userID int) (int, error) {
	var total int
	err := db.QueryRow(`SELECT xp_points FROM user_preferences WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read XP total: %w", err)
	}
	return total, nil
}

func incrementUserXPTx(tx *sql.Tx, userID, delta int) error {
	_, err := tx.Exec(`
		INSERT INTO user_preferences (user_id, xp_points) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET xp_points = xp_points + excluded.xp_points,
		                                   updated_at = CURRENT_TIMESTAMP
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to increment XP: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var tags string
	var dueDate, completedAt sql.NullTime
	var accuracyRating, xpEarned sql.NullInt64

	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Cost,
		&project.Benefit,
		&project.Category,
		&project.Priority,
		&project.Status,
		&project.Confidence,
		&tags,
		&dueDate,
		&project.IsBossBattle,
		&accuracyRating,
		&xpEarned,
		&project.CreatedAt,
		&project.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &project.Tags); err != nil {
		project.Tags = []string{}
	}
	if dueDate.Valid {
		project.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		project.CompletedAt = &completedAt.Time
	}
	if accuracyRating.Valid {
		rating := int(accuracyRating.Int64)
		project.AccuracyRating = &rating
	}
	if xpEarned.Valid {
		earned := int(xpEarned.Int64)
		project.XPEarned = &earned
	}

	return project, nil
}
