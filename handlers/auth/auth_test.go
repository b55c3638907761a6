package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VennelaDablikar/StudyBuddy/database"
	authutil "github.com/VennelaDablikar/StudyBuddy/utils/auth"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "studybuddy-test",
	})
	handler := NewAuthHandler(db, jwtManager)
	authMw := middleware.NewAuthMiddleware(jwtManager, db)

	app := fiber.New()
	app.Post("/auth/signup", handler.Signup)
	app.Post("/auth/login", handler.Login)
	app.Get("/auth/me", authMw.Required(), handler.Me)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, env
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	resp, env := postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Test Student",
		"email":    "Student@Example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}

	var signupData AuthResponse
	if err := json.Unmarshal(env.Data, &signupData); err != nil {
		t.Fatalf("failed to decode signup data: %v", err)
	}
	if signupData.Token == "" {
		t.Error("signup should return a session token")
	}
	if signupData.User.Email != "student@example.com" {
		t.Errorf("email should be lowercased, got %q", signupData.User.Email)
	}

	// Login with the original (mixed-case) email
	resp, env = postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "STUDENT@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var loginData AuthResponse
	if err := json.Unmarshal(env.Data, &loginData); err != nil {
		t.Fatalf("failed to decode login data: %v", err)
	}

	// Token must work against the protected profile endpoint
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginData.Token)
	meResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("me request failed: %v", err)
	}
	if meResp.StatusCode != http.StatusOK {
		t.Errorf("me status = %d, want 200", meResp.StatusCode)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	body := fiber.Map{"name": "Test Student", "email": "dup@example.com", "password": "secret123"}
	if resp, _ := postJSON(t, app, "/auth/signup", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first signup status = %d", resp.StatusCode)
	}

	resp, env := postJSON(t, app, "/auth/signup", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Message != "Email already registered" {
		t.Errorf("unexpected error payload: %+v", env.Error)
	}
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"bad email", fiber.Map{"name": "Test", "email": "not-an-email", "password": "secret123"}},
		{"short password", fiber.Map{"name": "Test", "email": "a@b.com", "password": "123"}},
		{"missing name", fiber.Map{"email": "a@b.com", "password": "secret123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := postJSON(t, app, "/auth/signup", tc.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	postJSON(t, app, "/auth/signup", fiber.Map{
		"name": "Test Student", "email": "login@example.com", "password": "secret123",
	})

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"wrong password", fiber.Map{"email": "login@example.com", "password": "wrongpass"}},
		{"unknown email", fiber.Map{"email": "ghost@example.com", "password": "secret123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := postJSON(t, app, "/auth/login", tc.body)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			// Identical message either way so emails can't be probed
			if env.Error == nil || env.Error.Message != "Invalid email or password" {
				t.Errorf("unexpected error payload: %+v", env.Error)
			}
		})
	}
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
