package database

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

func createTestUser(t *testing.T, db *sql.DB) int {
	user, err := CreateUser(db, "testuser", "test@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}
	return user.ID
}

func TestUserCreationAndAuthentication(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user, err := CreateUser(db, "testuser", "test@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	if user.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got %s", user.Username)
	}

	if user.IsActivated {
		t.Error("New user should not be activated")
	}

	authUser, err := AuthenticateUser(db, "test@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to authenticate user:", err)
	}

	if authUser.ID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, authUser.ID)
	}

	_, err = AuthenticateUser(db, "test@example.com", "wrongpassword")
	if err == nil {
		t.Error("Expected authentication to fail with wrong password")
	}
}

func TestSessionManagement(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	session, err := CreateSession(db, userID, time.Hour)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	if len(session.ID) == 0 {
		t.Error("Session ID should not be empty")
	}

	validatedUser, err := ValidateSession(db, session.ID, time.Hour)
	if err != nil {
		t.Fatal("Failed to validate session:", err)
	}

	if validatedUser.ID != userID {
		t.Errorf("Expected user ID %d, got %d", userID, validatedUser.ID)
	}

	err = DeleteSession(db, session.ID)
	if err != nil {
		t.Fatal("Failed to delete session:", err)
	}

	_, err = ValidateSession(db, session.ID, time.Hour)
	if err == nil {
		t.Error("Expected session validation to fail after deletion")
	}
}

func TestExpiredSessionCleanup(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	session, err := CreateSession(db, userID, -time.Hour)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	_, err = ValidateSession(db, session.ID, time.Hour)
	if err == nil {
		t.Error("Expected validation to fail for expired session")
	}

	if err := CleanupExpiredSessions(db); err != nil {
		t.Fatal("Failed to cleanup sessions:", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM auth_sessions`).Scan(&count); err != nil {
		t.Fatal("Failed to count sessions:", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 sessions after cleanup, got %d", count)
	}
}

func TestCSRFTokenSingleUse(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	token, err := CreateCSRFToken(db, userID)
	if err != nil {
		t.Fatal("Failed to create CSRF token:", err)
	}

	if err := ValidateCSRFToken(db, token.Token, userID); err != nil {
		t.Fatal("Failed to validate CSRF token:", err)
	}

	err = ValidateCSRFToken(db, token.Token, userID)
	if err == nil {
		t.Error("Expected second validation of the same token to fail")
	}
}

func TestActivationFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userID := createTestUser(t, db)

	token, err := CreateActivationToken(db, userID)
	if err != nil {
		t.Fatal("Failed to create activation token:", err)
	}

	user, err := ValidateActivationToken(db, token.Token)
	if err != nil {
		t.Fatal("Failed to validate activation token:", err)
	}

	if user.ID != userID {
		t.Errorf("Expected user ID %d, got %d", userID, user.ID)
	}

	if err := ActivateUser(db, userID, token.Token); err != nil {
		t.Fatal("Failed to activate user:", err)
	}

	activated, err := GetUserByID(db, userID)
	if err != nil {
		t.Fatal("Failed to get user:", err)
	}
	if !activated.IsActivated {
		t.Error("Expected user to be activated")
	}

	_, err = ValidateActivationToken(db, token.Token)
	if err == nil {
		t.Error("Expected activation token to be consumed")
	}
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
