package database

import (
	"database/sql"
	"fmt"
	"time"

	"eugenestrat/internal/models"
	"eugenestrat/internal/xp"

	"github.com/google/uuid"
)

// StartFocusSession creates a durable session record for the user. The
// project must be in active status, and only one session may be in
// flight at a time. The difficulty quote is stamped at creation so the
// record is self-contained for resume.
func StartFocusSession(db *sql.DB, userID int, projectID string, duration int, willpower, goal string) (*models.FocusSession, error) {
	project, err := GetProject(db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusActive {
		return nil, ErrProjectNotFound
	}

	if _, err := GetActiveFocusSession(db, userID); err == nil {
		return nil, ErrSessionInProgress
	} else if err != ErrNoActiveSession {
		return nil, err
	}

	session := &models.FocusSession{
		ID:              uuid.New().String(),
		UserID:          userID,
		ProjectID:       projectID,
		ProjectName:     project.Name,
		Duration:        duration,
		Willpower:       willpower,
		DifficultyQuote: xp.DifficultyQuote(willpower, duration),
		Goal:            goal,
		StartedAt:       time.Now(),
	}

	query := `
		INSERT INTO focus_sessions (id, user_id, project_id, duration, willpower, difficulty_quote, goal, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, session.ID, userID, projectID, duration, willpower,
		session.DifficultyQuote, goal, session.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create focus session: %w", err)
	}

	return session, nil
}

// GetActiveFocusSession returns the user's in-flight session, if any.
// Callers derive remaining time from started_at and duration against
// the wall clock, so a session past its duration still comes back here
// until it is completed or interrupted.
func GetActiveFocusSession(db *sql.DB, userID int) (*models.FocusSession, error) {
	query := `
		SELECT s.id, s.user_id, s.project_id, s.duration, s.willpower, s.difficulty_quote,
		       s.goal, s.started_at, s.mindset, s.goal_outcome, s.notes, s.xp_earned,
		       s.is_interrupted, s.interrupted_at, s.completed_at, p.name
		FROM focus_sessions s
		JOIN projects p ON s.project_id = p.id
		WHERE s.user_id = ? AND s.completed_at IS NULL AND s.is_interrupted = 0
		ORDER BY s.started_at DESC
		LIMIT 1
	`

	session, err := scanFocusSession(db.QueryRow(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}

	return session, nil
}

// CompleteFocusSession finalizes an in-flight session with the user's
// mindset rating and computed XP, crediting the XP total in the same
// transaction. Returns the finished session and the new XP total.
func CompleteFocusSession(db *sql.DB, userID int, sessionID, mindset string, goalOutcome *string, notes string) (*models.FocusSession, int, error) {
	session, err := getFocusSession(db, userID, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if session.CompletedAt != nil || session.IsInterrupted {
		return nil, 0, ErrSessionNotFound
	}

	xpEarned := xp.SessionXP(session.Duration, session.Willpower)
	completedAt := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE focus_sessions
		SET mindset = ?, goal_outcome = ?, notes = ?, xp_earned = ?, completed_at = ?
		WHERE id = ? AND user_id = ? AND completed_at IS NULL AND is_interrupted = 0
	`, mindset, goalOutcome, notes, xpEarned, completedAt, sessionID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to complete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, 0, ErrSessionNotFound
	}

	if err := incrementUserXPTx(tx, userID, xpEarned); err != nil {
		return nil, 0, err
	}

	var totalXP int
	if err := tx.QueryRow(`SELECT xp_points FROM user_preferences WHERE user_id = ?`, userID).Scan(&totalXP); err != nil {
		return nil, 0, fmt.Errorf("failed to read XP total: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit session completion: %w", err)
	}

	session.Mindset = &mindset
	session.GoalOutcome = goalOutcome
	session.Notes = notes
	session.XPEarned = &xpEarned
	session.CompletedAt = &completedAt

	return session, totalXP, nil
}

// InterruptFocusSession flags an in-flight session as interrupted and
// awards the flat interruption XP, atomically with the session update.
func InterruptFocusSession(db *sql.DB, userID int, sessionID string) (*models.FocusSession, int, error) {
	session, err := getFocusSession(db, userID, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if session.CompletedAt != nil || session.IsInterrupted {
		return nil, 0, ErrSessionNotFound
	}

	interruptedAt := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE focus_sessions
		SET is_interrupted = 1, interrupted_at = ?, xp_earned = ?
		WHERE id = ? AND user_id = ? AND completed_at IS NULL AND is_interrupted = 0
	`, interruptedAt, xp.InterruptedSessionXP, sessionID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to interrupt session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, 0, ErrSessionNotFound
	}

	if err := incrementUserXPTx(tx, userID, xp.InterruptedSessionXP); err != nil {
		return nil, 0, err
	}

	var totalXP int
	if err := tx.QueryRow(`SELECT xp_points FROM user_preferences WHERE user_id = ?`, userID).Scan(&totalXP); err != nil {
		return nil, 0, fmt.Errorf("failed to read XP total: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit interruption: %w", err)
	}

	earned := xp.InterruptedSessionXP
	session.IsInterrupted = true
	session.InterruptedAt = &interruptedAt
	session.XPEarned = &earned

	return session, totalXP, nil
}

func getFocusSession(db *sql.DB, userID int, sessionID string) (*models.FocusSession, error) {
	query := `
		SELECT s.id, s.user_id, s.project_id, s.duration, s.willpower, s.difficulty_quote,
		       s.goal, s.started_at, s.mindset, s.goal_outcome, s.notes, s.xp_earned,
		       s.is_interrupted, s.interrupted_at, s.completed_at, p.name
		FROM focus_sessions s
		JOIN projects p ON s.project_id = p.id
		WHERE s.id = ? AND s.user_id = ?
	`

	session, err := scanFocusSession(db.QueryRow(query, sessionID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

func scanFocusSession(row rowScanner) (*models.FocusSession, error) {
	session := &models.FocusSession{}
	var mindset, goalOutcome sql.NullString
	var xpEarned sql.NullInt64
	var interruptedAt, completedAt sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.ProjectID,
		&session.Duration,
		&session.Willpower,
		&session.DifficultyQuote,
		&session.Goal,
		&session.StartedAt,
		&mindset,
		&goalOutcome,
		&session.Notes,
		&xpEarned,
		&session.IsInterrupted,
		&interruptedAt,
		&completedAt,
		&session.ProjectName,
	)
	if err != nil {
		return nil, err
	}

	if mindset.Valid {
		session.Mindset = &mindset.String
	}
	if goalOutcome.Valid {
		session.GoalOutcome = &goalOutcome.String
	}
	if xpEarned.Valid {
		earned := int(xpEarned.Int64)
		session.XPEarned = &earned
	}
	if interruptedAt.Valid {
		session.InterruptedAt = &interruptedAt.Time
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	return session, nil
}
