package database

import (
	"database/sql"
	"fmt"
	"time"

	"eugenestrat/internal/models"
)

// SetDailyCommitment upserts the target session count for one date.
// At most one intention exists per date per user.
func SetDailyCommitment(db *sql.DB, userID int, date string, targetSessions int) error {
	_, err := db.Exec(`
		INSERT INTO daily_commitments (user_id, commitment_date, target_sessions)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, commitment_date) DO UPDATE SET target_sessions = excluded.target_sessions
	`, userID, date, targetSessions)
	if err != nil {
		return fmt.Errorf("failed to set daily commitment: %w", err)
	}
	return nil
}

func ClearDailyCommitment(db *sql.DB, userID int, date string) error {
	_, err := db.Exec(
		`DELETE FROM daily_commitments WHERE user_id = ? AND commitment_date = ?`,
		userID, date,
	)
	if err != nil {
		return fmt.Errorf("failed to clear daily commitment: %w", err)
	}
	return nil
}

// TodayStats is the focus sidebar aggregate: the day's intention plus
// the sessions already completed today.
type TodayStats struct {
	Commitment        *int                  `json:"commitment"`
	CompletedSessions int                   `json:"completed_sessions"`
	Sessions          []models.FocusSession `json:"sessions"`
}

func GetTodayStats(db *sql.DB, userID int, date string) (*TodayStats, error) {
	stats := &TodayStats{}

	var target int
	err := db.QueryRow(
		`SELECT target_sessions FROM daily_commitments WHERE user_id = ? AND commitment_date = ?`,
		userID, date,
	).Scan(&target)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query daily commitment: %w", err)
	}
	if err == nil {
		stats.Commitment = &target
	}

	query := `
		SELECT s.id, s.user_id, s.project_id, s.duration, s.willpower, s.difficulty_quote,
		       s.goal, s.started_at, s.mindset, s.goal_outcome, s.notes, s.xp_earned,
		       s.is_interrupted, s.interrupted_at, s.completed_at, p.name
		FROM focus_sessions s
		JOIN projects p ON s.project_id = p.id
		WHERE s.user_id = ? AND s.completed_at IS NOT NULL AND date(s.completed_at) = ?
		ORDER BY s.completed_at DESC
	`

	rows, err := db.Query(query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		session, err := scanFocusSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		stats.Sessions = append(stats.Sessions, *session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating today's sessions: %w", err)
	}

	stats.CompletedSessions = len(stats.Sessions)
	return stats, nil
}

// Today returns the current date in the format daily commitments key on.
func Today() string {
	return time.Now().Format("2006-01-02")
}
