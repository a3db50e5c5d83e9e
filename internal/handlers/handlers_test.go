package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eugenestrat/internal/config"
	"eugenestrat/internal/database"
	"eugenestrat/internal/email"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestServer(t *testing.T) (*gin.Engine, *sql.DB) {
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	// Development mode skips CSRF and rate limiting, which are covered
	// by their own middleware behavior.
	cfg := &config.Config{
		Environment:     "development",
		AllowedOrigins:  "http://localhost:8080",
		SessionDuration: time.Hour,
	}

	r := gin.New()
	SetupRoutes(r, db, cfg, email.NewService(cfg))

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal("Failed to encode request body:", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerTestUser(t *testing.T, r *gin.Engine) []*http.Cookie {
	w := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from register, got %d: %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected session cookie from register")
	}
	return cookies
}

func TestRegisterAndMe(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	cookies := registerTestUser(t, r)

	w := doJSON(t, r, "GET", "/api/me", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /api/me, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		TotalXP int `json:"total_xp"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if resp.User.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got %s", resp.User.Username)
	}
	if resp.TotalXP != 0 {
		t.Errorf("Expected 0 XP for a fresh user, got %d", resp.TotalXP)
	}
}

func TestAuthRequired(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	w := doJSON(t, r, "GET", "/api/projects", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	w := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "ab",
		"email":    "test@example.com",
		"password": "password123",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short username, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "testuser",
		"email":    "not-an-email",
		"password": "password123",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid email, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "short",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short password, got %d", w.Code)
	}
}

func TestProjectLifecycle(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	cookies := registerTestUser(t, r)

	w := doJSON(t, r, "POST", "/api/projects", map[string]interface{}{
		"name":       "Ship the thing",
		"cost":       4,
		"benefit":    9,
		"category":   "build",
		"priority":   "must",
		"confidence": "high",
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from create, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Project struct {
			ID       string `json:"id"`
			Position struct {
				X int `json:"x"`
				Y int `json:"y"`
			} `json:"position"`
		} `json:"project"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	// cost 4 -> x 280, benefit 9 -> y 120.
	if created.Project.Position.X != 280 || created.Project.Position.Y != 120 {
		t.Errorf("Expected position (280,120), got (%d,%d)",
			created.Project.Position.X, created.Project.Position.Y)
	}

	// Same cell again conflicts.
	w = doJSON(t, r, "POST", "/api/projects", map[string]interface{}{
		"name":       "Duplicate cell",
		"cost":       4,
		"benefit":    9,
		"category":   "work",
		"priority":   "should",
		"confidence": "medium",
	}, cookies)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for occupied cell, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/projects/"+created.Project.ID+"/complete", map[string]int{
		"accuracy_rating": 5,
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from complete, got %d: %s", w.Code, w.Body.String())
	}

	var completed struct {
		XPEarned int `json:"xp_earned"`
		TotalXP  int `json:"total_xp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &completed); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if completed.XPEarned != 360 {
		t.Errorf("Expected 360 XP for 4x9 project, got %d", completed.XPEarned)
	}
	if completed.TotalXP != 360 {
		t.Errorf("Expected total XP 360, got %d", completed.TotalXP)
	}

	w = doJSON(t, r, "POST", "/api/projects/"+created.Project.ID+"/complete", map[string]int{
		"accuracy_rating": 5,
	}, cookies)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for double completion, got %d", w.Code)
	}
}

func TestFocusProjectList(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	cookies := registerTestUser(t, r)

	w := doJSON(t, r, "POST", "/api/projects", map[string]interface{}{
		"name":       "Active one",
		"cost":       2,
		"benefit":    6,
		"category":   "work",
		"priority":   "must",
		"confidence": "medium",
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from create, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/projects", map[string]interface{}{
		"name":       "Paused one",
		"cost":       3,
		"benefit":    6,
		"category":   "work",
		"priority":   "should",
		"confidence": "medium",
		"status":     "inactive",
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from create, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "GET", "/api/focus/projects", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from focus projects, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Projects []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"projects"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if len(resp.Projects) != 1 {
		t.Fatalf("Expected 1 focus-eligible project, got %d", len(resp.Projects))
	}
	if resp.Projects[0].Name != "Active one" {
		t.Errorf("Expected the active project, got %s", resp.Projects[0].Name)
	}
}

func TestFocusSessionFlow(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	cookies := registerTestUser(t, r)

	w := doJSON(t, r, "POST", "/api/projects", map[string]interface{}{
		"name":       "Deep work",
		"cost":       5,
		"benefit":    8,
		"category":   "learn",
		"priority":   "must",
		"confidence": "medium",
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from create, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal("Failed to decode response:", err)
	}

	w = doJSON(t, r, "GET", "/api/focus/active", nil, cookies)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with no active session, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/focus/sessions", map[string]interface{}{
		"project_id": created.Project.ID,
		"duration":   90,
		"willpower":  "medium",
		"goal":       "Finish the draft",
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from start, got %d: %s", w.Code, w.Body.String())
	}

	var started struct {
		Session struct {
			ID               string `json:"id"`
			DifficultyQuote  string `json:"difficulty_quote"`
			RemainingSeconds int    `json:"remaining_seconds"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if started.Session.DifficultyQuote != "Come Get Some" {
		t.Errorf("Expected 'Come Get Some' quote, got %q", started.Session.DifficultyQuote)
	}
	if started.Session.RemainingSeconds <= 0 || started.Session.RemainingSeconds > 90*60 {
		t.Errorf("Expected remaining seconds within the session window, got %d", started.Session.RemainingSeconds)
	}

	// Only one session at a time.
	w = doJSON(t, r, "POST", "/api/focus/sessions", map[string]interface{}{
		"project_id": created.Project.ID,
		"duration":   60,
		"willpower":  "high",
	}, cookies)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for second session, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/focus/sessions/"+started.Session.ID+"/complete", map[string]interface{}{
		"mindset": "high",
		"notes":   "went well",
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from complete, got %d: %s", w.Code, w.Body.String())
	}

	var completed struct {
		XPEarned int `json:"xp_earned"`
		TotalXP  int `json:"total_xp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &completed); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if completed.XPEarned != 82 {
		t.Errorf("Expected 82 XP for 90/medium session, got %d", completed.XPEarned)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	r, db := setupTestServer(t)
	defer db.Close()

	cookies := registerTestUser(t, r)

	w := doJSON(t, r, "GET", "/api/analytics", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from analytics, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		DailyVolume []struct {
			Date  string  `json:"date"`
			Hours float64 `json:"hours"`
		} `json:"daily_volume"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal("Failed to decode response:", err)
	}
	if len(resp.DailyVolume) != 14 {
		t.Errorf("Expected 14 daily volume points, got %d", len(resp.DailyVolume))
	}
}
