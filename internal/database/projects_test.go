package database

import (
	"database/sql"
	"errors"
	"testing"

	"eugenestrat/internal/models"
)

func newTestProject(name string, cost, benefit int) models.Project {
	return models.Project{
		Name:       name,
		Cost:       cost,
		Benefit:    benefit,
		Category:   "work",
		Priority:   "must",
		Confidence: "medium",
	}
}

func createTestProject(t *testing.T, db *sql.DB, userID int, name string, cost, benefit int) *models.Project {
	project, err := CreateProject(db, userID, newTestProject(name, cost, benefit))
	if err != nil {
		t.Fatal("Failed to create project:", err)
	}
	return project
}

func TestProjectOperations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "Ship the thing", 3, 7)

	if project.ID == "" {
		t.Error("Project ID should not be empty")
	}
	if project.Status != models.StatusActive {
		t.Errorf("Expected default status 'active', got %s", project.Status)
	}
	if project.IsBossBattle {
		t.Error("New project should not be a boss battle")
	}

	projects, err := GetProjects(db, userID)
	if err != nil {
		t.Fatal("Failed to get projects:", err)
	}
	if len(projects) != 1 {
		t.Errorf("Expected 1 project, got %d", len(projects))
	}

	newName := "Ship the bigger thing"
	newStatus := models.StatusInactive
	updated, err := UpdateProject(db, userID, project.ID, ProjectPatch{
		Name:   &newName,
		Status: &newStatus,
	})
	if err != nil {
		t.Fatal("Failed to update project:", err)
	}
	if updated.Name != newName {
		t.Errorf("Expected name %q, got %q", newName, updated.Name)
	}
	if updated.Status != models.StatusInactive {
		t.Errorf("Expected status 'inactive', got %s", updated.Status)
	}

	if err := DeleteProject(db, userID, project.ID); err != nil {
		t.Fatal("Failed to delete project:", err)
	}

	_, err = GetProject(db, userID, project.ID)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Error("Expected project retrieval to fail after deletion")
	}
}

func TestGetActiveProjects(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	active := createTestProject(t, db, userID, "Active", 1, 1)
	paused := createTestProject(t, db, userID, "Paused", 2, 2)
	done := createTestProject(t, db, userID, "Done", 3, 3)

	status := models.StatusInactive
	if _, err := UpdateProject(db, userID, paused.ID, ProjectPatch{Status: &status}); err != nil {
		t.Fatal("Failed to deactivate project:", err)
	}
	if _, _, err := CompleteProject(db, userID, done.ID, 3); err != nil {
		t.Fatal("Failed to complete project:", err)
	}

	projects, err := GetActiveProjects(db, userID)
	if err != nil {
		t.Fatal("Failed to get active projects:", err)
	}

	if len(projects) != 1 {
		t.Fatalf("Expected 1 active project, got %d", len(projects))
	}
	if projects[0].ID != active.ID {
		t.Errorf("Expected project %s, got %s", active.ID, projects[0].ID)
	}
}

func TestProjectLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	for i := 0; i < MaxProjects; i++ {
		cost := i%10 + 1
		benefit := i/10 + 1
		createTestProject(t, db, userID, "Project", cost, benefit)
	}

	_, err := CreateProject(db, userID, newTestProject("One too many", 1, 5))
	if !errors.Is(err, ErrProjectLimit) {
		t.Errorf("Expected ErrProjectLimit, got %v", err)
	}

	projects, err := GetProjects(db, userID)
	if err != nil {
		t.Fatal("Failed to get projects:", err)
	}
	if len(projects) != MaxProjects {
		t.Errorf("Expected %d projects after rejected create, got %d", MaxProjects, len(projects))
	}
}

func TestPositionConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	createTestProject(t, db, userID, "First", 4, 6)

	_, err := CreateProject(db, userID, newTestProject("Second", 4, 6))
	if !errors.Is(err, ErrPositionOccupied) {
		t.Errorf("Expected ErrPositionOccupied, got %v", err)
	}

	// Moving another project onto the occupied cell must fail too.
	other := createTestProject(t, db, userID, "Third", 5, 5)
	cost, benefit := 4, 6
	_, err = UpdateProject(db, userID, other.ID, ProjectPatch{Cost: &cost, Benefit: &benefit})
	if !errors.Is(err, ErrPositionOccupied) {
		t.Errorf("Expected ErrPositionOccupied on move, got %v", err)
	}

	// The rejected move must leave the row untouched.
	unchanged, err := GetProject(db, userID, other.ID)
	if err != nil {
		t.Fatal("Failed to get project:", err)
	}
	if unchanged.Cost != 5 || unchanged.Benefit != 5 {
		t.Errorf("Expected project to stay at (5,5), got (%d,%d)", unchanged.Cost, unchanged.Benefit)
	}
}

func TestCompletedProjectFreesCell(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "First", 4, 6)
	if _, _, err := CompleteProject(db, userID, project.ID, 3); err != nil {
		t.Fatal("Failed to complete project:", err)
	}

	if _, err := CreateProject(db, userID, newTestProject("Second", 4, 6)); err != nil {
		t.Errorf("Expected completed project to free its cell, got %v", err)
	}
}

func TestDefaultPlacement(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	// First free cell scans cost 1..10 outer, benefit 1..10 inner.
	createTestProject(t, db, userID, "Occupies 1,1", 1, 1)
	createTestProject(t, db, userID, "Occupies 1,2", 1, 2)

	project, err := CreateProject(db, userID, newTestProject("Placed", 0, 0))
	if err != nil {
		t.Fatal("Failed to create project without coordinates:", err)
	}
	if project.Cost != 1 || project.Benefit != 3 {
		t.Errorf("Expected placement at (1,3), got (%d,%d)", project.Cost, project.Benefit)
	}
}

func TestCompleteProjectXP(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "Boss fight", 8, 9)
	if _, err := ToggleBossBattle(db, userID, project.ID); err != nil {
		t.Fatal("Failed to toggle boss battle:", err)
	}

	completed, totalXP, err := CompleteProject(db, userID, project.ID, 4)
	if err != nil {
		t.Fatal("Failed to complete project:", err)
	}

	// 8 * 9 * 10, doubled for the boss battle.
	if completed.XPEarned == nil || *completed.XPEarned != 1440 {
		t.Errorf("Expected 1440 XP earned, got %v", completed.XPEarned)
	}
	if totalXP != 1440 {
		t.Errorf("Expected total XP 1440, got %d", totalXP)
	}
	if completed.AccuracyRating == nil || *completed.AccuracyRating != 4 {
		t.Errorf("Expected accuracy rating 4, got %v", completed.AccuracyRating)
	}

	_, _, err = CompleteProject(db, userID, project.ID, 4)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted on second completion, got %v", err)
	}

	total, err := GetUserXP(db, userID)
	if err != nil {
		t.Fatal("Failed to get XP:", err)
	}
	if total != 1440 {
		t.Errorf("Expected XP unchanged at 1440 after rejected completion, got %d", total)
	}
}

func TestCompletedProjectIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "Done", 2, 2)
	if _, _, err := CompleteProject(db, userID, project.ID, 5); err != nil {
		t.Fatal("Failed to complete project:", err)
	}

	name := "Renamed"
	_, err := UpdateProject(db, userID, project.ID, ProjectPatch{Name: &name})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted on edit, got %v", err)
	}

	_, err = ToggleBossBattle(db, userID, project.ID)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted on toggle, got %v", err)
	}
}

func TestToggleBossBattle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "Maybe a boss", 5, 5)

	toggled, err := ToggleBossBattle(db, userID, project.ID)
	if err != nil {
		t.Fatal("Failed to toggle:", err)
	}
	if !toggled.IsBossBattle {
		t.Error("Expected boss battle flag set after first toggle")
	}

	toggled, err = ToggleBossBattle(db, userID, project.ID)
	if err != nil {
		t.Fatal("Failed to toggle back:", err)
	}
	if toggled.IsBossBattle {
		t.Error("Expected boss battle flag cleared after second toggle")
	}
}

func TestResetAllUserData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	project := createTestProject(t, db, userID, "Gone soon", 3, 3)
	if _, _, err := CompleteProject(db, userID, project.ID, 3); err != nil {
		t.Fatal("Failed to complete project:", err)
	}
	createTestProject(t, db, userID, "Also gone", 6, 6)

	if err := ResetAllUserData(db, userID); err != nil {
		t.Fatal("Failed to reset:", err)
	}

	projects, err := GetProjects(db, userID)
	if err != nil {
		t.Fatal("Failed to get projects:", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected 0 projects after reset, got %d", len(projects))
	}

	total, err := GetUserXP(db, userID)
	if err != nil {
		t.Fatal("Failed to get XP:", err)
	}
	if total != 0 {
		t.Errorf("Expected XP 0 after reset, got %d", total)
	}
}
