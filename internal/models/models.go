package models

import (
	"time"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActivated  bool      `json:"is_activated" db:"is_activated"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Project is one entry on the cost/benefit matrix. Cost and Benefit are
// 1-10 integers; together they double as the project's spatial key while
// it is not completed.
type Project struct {
	ID             string     `json:"id" db:"id"`
	UserID         int        `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Cost           int        `json:"cost" db:"cost"`
	Benefit        int        `json:"benefit" db:"benefit"`
	Category       string     `json:"category" db:"category"`
	Priority       string     `json:"priority" db:"priority"`
	Status         string     `json:"status" db:"status"`
	Confidence     string     `json:"confidence" db:"confidence"`
	Tags           []string   `json:"tags" db:"tags"`
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	IsBossBattle   bool       `json:"is_boss_battle" db:"is_boss_battle"`
	AccuracyRating *int       `json:"accuracy_rating,omitempty" db:"accuracy_rating"`
	XPEarned       *int       `json:"xp_earned,omitempty" db:"xp_earned"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// FocusSession is one timed deep-focus block against a project.
type FocusSession struct {
	ID              string     `json:"id" db:"id"`
	UserID          int        `json:"user_id" db:"user_id"`
	ProjectID       string     `json:"project_id" db:"project_id"`
	ProjectName     string     `json:"project_name,omitempty" db:"-"`
	Duration        int        `json:"duration" db:"duration"`
	Willpower       string     `json:"willpower" db:"willpower"`
	DifficultyQuote string     `json:"difficulty_quote" db:"difficulty_quote"`
	Goal            string     `json:"goal" db:"goal"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	Mindset         *string    `json:"mindset,omitempty" db:"mindset"`
	GoalOutcome     *string    `json:"goal_outcome,omitempty" db:"goal_outcome"`
	Notes           string     `json:"notes" db:"notes"`
	XPEarned        *int       `json:"xp_earned,omitempty" db:"xp_earned"`
	IsInterrupted   bool       `json:"is_interrupted" db:"is_interrupted"`
	InterruptedAt   *time.Time `json:"interrupted_at,omitempty" db:"interrupted_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// DailyCommitment holds the target session count for one date.
type DailyCommitment struct {
	UserID         int       `json:"user_id" db:"user_id"`
	CommitmentDate string    `json:"commitment_date" db:"commitment_date"`
	TargetSessions int       `json:"target_sessions" db:"target_sessions"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type AuthSession struct {
	ID        string    `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CSRFToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ActivationToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
)

const (
	WillpowerHigh   = "high"
	WillpowerMedium = "medium"
	WillpowerLow    = "low"
)

func ValidCategory(c string) bool {
	switch c {
	case "work", "learn", "build", "manage":
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case "must", "should", "nice":
		return true
	}
	return false
}

func ValidConfidence(c string) bool {
	switch c {
	case "very_low", "low", "medium", "high", "very_high":
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

func ValidWillpower(w string) bool {
	switch w {
	case WillpowerHigh, WillpowerMedium, WillpowerLow:
		return true
	}
	return false
}

// ValidMindset reports whether m is a valid post-session focus rating.
// Mindset reuses the willpower level names but is a separate axis.
func ValidMindset(m string) bool {
	return ValidWillpower(m)
}

func ValidDuration(minutes int) bool {
	switch minutes {
	case 60, 90, 120:
		return true
	}
	return false
}

func ValidGoalOutcome(o string) bool {
	switch o {
	case "yes", "partial", "no":
		return true
	}
	return false
}

func ValidCoordinate(v int) bool {
	return v >= 1 && v <= 10
}

func ValidAccuracyRating(r int) bool {
	return r >= 1 && r <= 5
}
