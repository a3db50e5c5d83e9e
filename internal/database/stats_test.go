package database

import (
	"database/sql"
	"testing"

	"eugenestrat/internal/models"
)

func completeSessionForTest(t *testing.T, db *sql.DB, userID int, projectID string, duration int, willpower, mindset string) {
	started, err := StartFocusSession(db, userID, projectID, duration, willpower, "")
	if err != nil {
		t.Fatal("Failed to start session:", err)
	}
	if _, _, err := CompleteFocusSession(db, userID, started.ID, mindset, nil, ""); err != nil {
		t.Fatal("Failed to complete session:", err)
	}
}

func TestGetAnalytics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)
	alpha := createTestProject(t, db, userID, "Alpha", 3, 7)
	beta := createTestProject(t, db, userID, "Beta", 6, 4)

	completeSessionForTest(t, db, userID, alpha.ID, 60, models.WillpowerHigh, models.WillpowerHigh)
	completeSessionForTest(t, db, userID, alpha.ID, 90, models.WillpowerMedium, models.WillpowerLow)
	completeSessionForTest(t, db, userID, beta.ID, 120, models.WillpowerLow, models.WillpowerHigh)

	analytics, err := GetAnalytics(db, userID)
	if err != nil {
		t.Fatal("Failed to get analytics:", err)
	}

	weekly := analytics.WeeklyStats
	if weekly.SessionsCount != 3 {
		t.Errorf("Expected 3 sessions this week, got %d", weekly.SessionsCount)
	}
	// 60 + 90 + 120 minutes.
	if weekly.TotalHours != 4.5 {
		t.Errorf("Expected 4.5 hours this week, got %v", weekly.TotalHours)
	}
	// 40 + 82 + 140 session XP.
	if weekly.TotalXP != 262 {
		t.Errorf("Expected 262 XP this week, got %d", weekly.TotalXP)
	}
	if weekly.CurrentStreak != 1 {
		t.Errorf("Expected streak of 1, got %d", weekly.CurrentStreak)
	}

	if len(analytics.RecentSessions) != 3 {
		t.Errorf("Expected 3 recent sessions, got %d", len(analytics.RecentSessions))
	}

	if len(analytics.ProjectSegments) != 2 {
		t.Fatalf("Expected 2 project segments, got %d", len(analytics.ProjectSegments))
	}
	// Segments come back ordered by total minutes, Alpha has 150 to Beta's 120.
	top := analytics.ProjectSegments[0]
	if top.ProjectName != "Alpha" {
		t.Errorf("Expected Alpha first, got %s", top.ProjectName)
	}
	if top.SessionCount != 2 {
		t.Errorf("Expected 2 sessions for Alpha, got %d", top.SessionCount)
	}
	if top.TotalHours != 2.5 {
		t.Errorf("Expected 2.5 hours for Alpha, got %v", top.TotalHours)
	}
	if top.HighMindsetPct != 50 {
		t.Errorf("Expected 50%% high mindset for Alpha, got %v", top.HighMindsetPct)
	}

	if len(analytics.DailyVolume) != 14 {
		t.Errorf("Expected 14 daily volume points, got %d", len(analytics.DailyVolume))
	}
	today := analytics.DailyVolume[len(analytics.DailyVolume)-1]
	if today.Hours != 4.5 {
		t.Errorf("Expected 4.5 hours today, got %v", today.Hours)
	}

	if len(analytics.FocusQuality) != 14 {
		t.Errorf("Expected 14 focus quality points, got %d", len(analytics.FocusQuality))
	}
	quality := analytics.FocusQuality[len(analytics.FocusQuality)-1]
	if quality.HighCount != 2 || quality.MediumCount != 0 || quality.LowCount != 1 {
		t.Errorf("Expected 2 high / 0 medium / 1 low today, got %d/%d/%d",
			quality.HighCount, quality.MediumCount, quality.LowCount)
	}

	records := analytics.PersonalRecords
	if records.LongestSessionMins != 120 {
		t.Errorf("Expected longest session of 120 minutes, got %d", records.LongestSessionMins)
	}
	if records.BestDayHours != 4.5 {
		t.Errorf("Expected best day of 4.5 hours, got %v", records.BestDayHours)
	}
	if records.BestWeekHours != 4.5 {
		t.Errorf("Expected best week of 4.5 hours, got %v", records.BestWeekHours)
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	analytics, err := GetAnalytics(db, userID)
	if err != nil {
		t.Fatal("Failed to get analytics for fresh user:", err)
	}

	if analytics.WeeklyStats.SessionsCount != 0 {
		t.Errorf("Expected 0 sessions, got %d", analytics.WeeklyStats.SessionsCount)
	}
	if analytics.WeeklyStats.CurrentStreak != 0 {
		t.Errorf("Expected streak 0, got %d", analytics.WeeklyStats.CurrentStreak)
	}
	if len(analytics.RecentSessions) != 0 {
		t.Errorf("Expected no recent sessions, got %d", len(analytics.RecentSessions))
	}
	if len(analytics.DailyVolume) != 14 {
		t.Errorf("Expected 14 zero-filled volume points, got %d", len(analytics.DailyVolume))
	}
	if analytics.PersonalRecords.LongestSessionMins != 0 {
		t.Errorf("Expected no longest session, got %d", analytics.PersonalRecords.LongestSessionMins)
	}
}

func TestInterruptedSessionsExcludedFromAnalytics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)
	project := createTestProject(t, db, userID, "Alpha", 3, 7)

	started, err := StartFocusSession(db, userID, project.ID, 90, models.WillpowerHigh, "")
	if err != nil {
		t.Fatal("Failed to start session:", err)
	}
	if _, _, err := InterruptFocusSession(db, userID, started.ID); err != nil {
		t.Fatal("Failed to interrupt session:", err)
	}

	analytics, err := GetAnalytics(db, userID)
	if err != nil {
		t.Fatal("Failed to get analytics:", err)
	}

	if analytics.WeeklyStats.SessionsCount != 0 {
		t.Errorf("Expected interrupted session excluded from weekly count, got %d",
			analytics.WeeklyStats.SessionsCount)
	}
	if len(analytics.RecentSessions) != 0 {
		t.Errorf("Expected interrupted session excluded from recent list, got %d",
			len(analytics.RecentSessions))
	}
}
