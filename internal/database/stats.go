package database

import (
	"database/sql"
	"fmt"
	"time"

	"eugenestrat/internal/models"
)

type WeeklyStats struct {
	SessionsCount int     `json:"sessions_count"`
	TotalHours    float64 `json:"total_hours"`
	TotalXP       int     `json:"total_xp"`
	CurrentStreak int     `json:"current_streak"`
}

type ProjectSegment struct {
	ProjectID      string  `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	SessionCount   int     `json:"session_count"`
	TotalHours     float64 `json:"total_hours"`
	AvgDuration    float64 `json:"avg_duration"`
	HighMindsetPct float64 `json:"high_mindset_pct"`
}

type VolumePoint struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

type QualityPoint struct {
	Date        string `json:"date"`
	HighCount   int    `json:"high_count"`
	MediumCount int    `json:"medium_count"`
	LowCount    int    `json:"low_count"`
}

type PersonalRecords struct {
	BestDayDate        string  `json:"best_day_date"`
	BestDayHours       float64 `json:"best_day_hours"`
	BestWeekStart      string  `json:"best_week_start"`
	BestWeekHours      float64 `json:"best_week_hours"`
	LongestSessionMins int     `json:"longest_session_mins"`
	LongestSessionDate string  `json:"longest_session_date"`
}

// Analytics is the full dashboard batch. It is fetched all-or-nothing:
// a failure in any aggregate aborts the whole fetch.
type Analytics struct {
	WeeklyStats     WeeklyStats           `json:"weekly_stats"`
	RecentSessions  []models.FocusSession `json:"recent_sessions"`
	ProjectSegments []ProjectSegment      `json:"project_segments"`
	DailyVolume     []VolumePoint         `json:"daily_volume"`
	FocusQuality    []QualityPoint        `json:"focus_quality"`
	PersonalRecords PersonalRecords       `json:"personal_records"`
}

func GetAnalytics(db *sql.DB, userID int) (*Analytics, error) {
	analytics := &Analytics{}

	weekly, err := GetWeeklyStats(db, userID)
	if err != nil {
		return nil, err
	}
	analytics.WeeklyStats = *weekly

	analytics.RecentSessions, err = GetRecentSessions(db, userID, 10)
	if err != nil {
		return nil, err
	}

	analytics.ProjectSegments, err = GetProjectSegments(db, userID)
	if err != nil {
		return nil, err
	}

	analytics.DailyVolume, err = GetDailyVolume(db, userID, 14)
	if err != nil {
		return nil, err
	}

	analytics.FocusQuality, err = GetFocusQuality(db, userID, 14)
	if err != nil {
		return nil, err
	}

	records, err := GetPersonalRecords(db, userID)
	if err != nil {
		return nil, err
	}
	analytics.PersonalRecords = *records

	return analytics, nil
}

func GetWeeklyStats(db *sql.DB, userID int) (*WeeklyStats, error) {
	stats := &WeeklyStats{}
	cutoff := time.Now().AddDate(0, 0, -7)

	var minutes float64
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(duration), 0),
		       COALESCE(SUM(xp_earned), 0)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND completed_at >= ?
	`, userID, cutoff).Scan(&stats.SessionsCount, &minutes, &stats.TotalXP)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly stats: %w", err)
	}
	stats.TotalHours = minutes / 60

	streak, err := getCurrentStreak(db, userID)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = streak

	return stats, nil
}

// getCurrentStreak counts consecutive days with at least one completed
// session, ending today or yesterday.
func getCurrentStreak(db *sql.DB, userID int) (int, error) {
	rows, err := db.Query(`
		SELECT DISTINCT date(completed_at)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY date(completed_at) DESC
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to query session dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("failed to scan session date: %w", err)
		}
		dates = append(dates, d)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating session dates: %w", err)
	}

	if len(dates) == 0 {
		return 0, nil
	}

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if dates[0] != today && dates[0] != yesterday {
		return 0, nil
	}

	streak := 1
	prev, _ := time.Parse("2006-01-02", dates[0])
	for _, d := range dates[1:] {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			break
		}
		if prev.Sub(day) != 24*time.Hour {
			break
		}
		streak++
		prev = day
	}

	return streak, nil
}

func GetRecentSessions(db *sql.DB, userID, limit int) ([]models.FocusSession, error) {
	query := `
		SELECT s.id, s.user_id, s.project_id, s.duration, s.willpower, s.difficulty_quote,
		       s.goal, s.started_at, s.mindset, s.goal_outcome, s.notes, s.xp_earned,
		       s.is_interrupted, s.interrupted_at, s.completed_at, p.name
		FROM focus_sessions s
		JOIN projects p ON s.project_id = p.id
		WHERE s.user_id = ? AND s.completed_at IS NOT NULL
		ORDER BY s.completed_at DESC
		LIMIT ?
	`

	rows, err := db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.FocusSession
	for rows.Next() {
		session, err := scanFocusSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent sessions: %w", err)
	}

	return sessions, nil
}

func GetProjectSegments(db *sql.DB, userID int) ([]ProjectSegment, error) {
	query := `
		SELECT p.id, p.name,
		       COUNT(*) AS session_count,
		       SUM(s.duration),
		       AVG(s.duration),
		       100.0 * SUM(CASE WHEN s.mindset = 'high' THEN 1 ELSE 0 END) / COUNT(*)
		FROM focus_sessions s
		JOIN projects p ON s.project_id = p.id
		WHERE s.user_id = ? AND s.completed_at IS NOT NULL
		GROUP BY p.id, p.name
		ORDER BY SUM(s.duration) DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project segments: %w", err)
	}
	defer rows.Close()

	var segments []ProjectSegment
	for rows.Next() {
		var seg ProjectSegment
		var minutes float64
		err := rows.Scan(&seg.ProjectID, &seg.ProjectName, &seg.SessionCount,
			&minutes, &seg.AvgDuration, &seg.HighMindsetPct)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project segment: %w", err)
		}
		seg.TotalHours = minutes / 60
		segments = append(segments, seg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project segments: %w", err)
	}

	return segments, nil
}

// GetDailyVolume returns hours of completed focus per day for the last
// `days` days, zero-filled so charts get a contiguous series.
func GetDailyVolume(db *sql.DB, userID, days int) ([]VolumePoint, error) {
	cutoff := time.Now().AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	rows, err := db.Query(`
		SELECT date(completed_at), SUM(duration)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND date(completed_at) >= ?
		GROUP BY date(completed_at)
	`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily volume: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]float64)
	for rows.Next() {
		var date string
		var minutes float64
		if err := rows.Scan(&date, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan daily volume: %w", err)
		}
		byDate[date] = minutes / 60
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily volume: %w", err)
	}

	points := make([]VolumePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, VolumePoint{Date: date, Hours: byDate[date]})
	}

	return points, nil
}

// GetFocusQuality returns per-day mindset counts for the last `days`
// days, zero-filled like GetDailyVolume.
func GetFocusQuality(db *sql.DB, userID, days int) ([]QualityPoint, error) {
	cutoff := time.Now().AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	rows, err := db.Query(`
		SELECT date(completed_at),
		       SUM(CASE WHEN mindset = 'high' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN mindset = 'medium' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN mindset = 'low' THEN 1 ELSE 0 END)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND date(completed_at) >= ?
		GROUP BY date(completed_at)
	`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus quality: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]QualityPoint)
	for rows.Next() {
		var point QualityPoint
		if err := rows.Scan(&point.Date, &point.HighCount, &point.MediumCount, &point.LowCount); err != nil {
			return nil, fmt.Errorf("failed to scan focus quality: %w", err)
		}
		byDate[point.Date] = point
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating focus quality: %w", err)
	}

	points := make([]QualityPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		point := byDate[date]
		point.Date = date
		points = append(points, point)
	}

	return points, nil
}

func GetPersonalRecords(db *sql.DB, userID int) (*PersonalRecords, error) {
	records := &PersonalRecords{}

	var bestDayMinutes float64
	err := db.QueryRow(`
		SELECT date(completed_at), SUM(duration)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		GROUP BY date(completed_at)
		ORDER BY SUM(duration) DESC
		LIMIT 1
	`, userID).Scan(&records.BestDayDate, &bestDayMinutes)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get best day: %w", err)
	}
	records.BestDayHours = bestDayMinutes / 60

	var bestWeekMinutes float64
	err = db.QueryRow(`
		SELECT date(completed_at, 'weekday 0', '-6 days'), SUM(duration)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		GROUP BY date(completed_at, 'weekday 0', '-6 days')
		ORDER BY SUM(duration) DESC
		LIMIT 1
	`, userID).Scan(&records.BestWeekStart, &bestWeekMinutes)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get best week: %w", err)
	}
	records.BestWeekHours = bestWeekMinutes / 60

	err = db.QueryRow(`
		SELECT duration, date(completed_at)
		FROM focus_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY duration DESC, completed_at DESC
		LIMIT 1
	`, userID).Scan(&records.LongestSessionMins, &records.LongestSessionDate)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get longest session: %w", err)
	}

	return records, nil
}
