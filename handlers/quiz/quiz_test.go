package quiz

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
	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services"
	"github.com/VennelaDablikar/StudyBuddy/services/groq"
	authutil "github.com/VennelaDablikar/StudyBuddy/utils/auth"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
)

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	token  string
	user   *model.User
	course *model.Course
}

// newTestEnv stands up a fiber app with the quiz routes, one user with a
// course full of notes, and an AI client pointed at a server replying with
// aiReply. aiStatus lets a test simulate an upstream outage; an empty
// aiReply with aiStatus 0 wires no client at all.
func newTestEnv(t *testing.T, aiReply string, aiStatus int) *testEnv {
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

	user := model.User{Name: "Test Student", Email: "student@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	course := model.Course{UserID: user.ID, Name: "Operating Systems"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	var aiClient *groq.Client
	if aiStatus != 0 {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if aiStatus != http.StatusOK {
				http.Error(w, `{"error":"over capacity"}`, aiStatus)
				return
			}
			resp := map[string]interface{}{
				"id":    "chatcmpl-test",
				"model": "llama-3.1-8b-instant",
				"choices": []map[string]interface{}{
					{"index": 0, "message": map[string]string{"role": "assistant", "content": aiReply}},
				},
				"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		t.Cleanup(srv.Close)
		aiClient = groq.NewClient(groq.Config{APIKey: "test-key", BaseURL: srv.URL})
	}

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "studybuddy-test",
	})
	token, err := jwtManager.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	handler := NewQuizHandler(services.NewQuizService(db, aiClient))
	authMw := middleware.NewAuthMiddleware(jwtManager, db)

	app := fiber.New()
	courses := app.Group("/courses", authMw.Required())
	courses.Post("/:id/quiz/generate", handler.Generate)
	courses.Post("/:id/quiz/:quizId/submit", handler.Submit)
	courses.Get("/:id/quiz/history", handler.History)

	return &testEnv{app: app, db: db, token: token, user: &user, course: &course}
}

func (e *testEnv) seedNote(t *testing.T, body string) {
	t.Helper()
	note := model.Note{CourseID: e.course.ID, Title: "Scheduling", Body: body}
	if err := e.db.Create(&note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
}

const studyNoteBody = "A process is a program in execution. The operating system schedules processes on the CPU using scheduling algorithms such as round robin and priority scheduling."

func validReply() string {
	questions := make([]model.QuizQuestion, 5)
	for i := range questions {
		questions[i] = model.QuizQuestion{
			Question:     "What does the scheduler do?",
			Options:      []string{"Runs processes", "Formats disks", "Renders pixels", "Sends email"},
			CorrectIndex: 0,
		}
	}
	data, _ := json.Marshal(questions)
	return string(data)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, env
}

func TestGenerateEndpointCreatesQuiz(t *testing.T) {
	env := newTestEnv(t, validReply(), http.StatusOK)
	env.seedNote(t, studyNoteBody)

	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var quiz model.Quiz
	if err := json.Unmarshal(body.Data, &quiz); err != nil {
		t.Fatalf("failed to decode quiz: %v", err)
	}
	if quiz.Total != 5 || len(quiz.Questions) != 5 {
		t.Errorf("expected 5 questions, got total=%d len=%d", quiz.Total, len(quiz.Questions))
	}
}

func TestGenerateEndpointCourseNotFound(t *testing.T) {
	env := newTestEnv(t, validReply(), http.StatusOK)

	resp, body := env.request(t, http.MethodPost, "/courses/9999/quiz/generate", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "Course not found" {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}
}

func TestGenerateEndpointInsufficientMaterial(t *testing.T) {
	env := newTestEnv(t, validReply(), http.StatusOK)
	env.seedNote(t, "tiny")

	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "Not enough study material to generate a quiz. Add more notes or summarize your PDFs first." {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}
}

func TestGenerateEndpointBadAIFormat(t *testing.T) {
	env := newTestEnv(t, "I could not generate a quiz, sorry.", http.StatusOK)
	env.seedNote(t, studyNoteBody)

	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "AI returned invalid quiz format. Please try again." {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}
}

func TestGenerateEndpointUpstreamDown(t *testing.T) {
	env := newTestEnv(t, "", http.StatusServiceUnavailable)
	env.seedNote(t, studyNoteBody)

	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "AI service unavailable" {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}
}

func TestGenerateEndpointNoAPIKey(t *testing.T) {
	env := newTestEnv(t, "", 0)
	env.seedNote(t, studyNoteBody)

	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "AI API key not configured" {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}
}

func TestSubmitEndpointStatusMapping(t *testing.T) {
	env := newTestEnv(t, validReply(), http.StatusOK)
	env.seedNote(t, studyNoteBody)

	if resp, _ := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate failed with status %d", resp.StatusCode)
	}

	// Wrong answer count
	resp, body := env.request(t, http.MethodPost, "/courses/1/quiz/1/submit", fiber.Map{"answers": []int{0, 1}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Message != "Expected 5 answers" {
		t.Errorf("unexpected error payload: %+v", body.Error)
	}

	// Unknown quiz
	resp, _ = env.request(t, http.MethodPost, "/courses/1/quiz/9999/submit", fiber.Map{"answers": []int{0, 0, 0, 0, 0}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	// Valid submission
	resp, body = env.request(t, http.MethodPost, "/courses/1/quiz/1/submit", fiber.Map{"answers": []int{0, 0, 0, 0, 1}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result services.SubmitResult
	if err := json.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Score != 4 || result.Percentage != 80 {
		t.Errorf("expected 4/5 at 80%%, got %d at %d%%", result.Score, result.Percentage)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t, validReply(), http.StatusOK)
	env.seedNote(t, studyNoteBody)

	resp, body := env.request(t, http.MethodGet, "/courses/1/quiz/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var history []model.QuizSummary
	if err := json.Unmarshal(body.Data, &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}

	if resp, _ := env.request(t, http.MethodPost, "/courses/1/quiz/generate", nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate failed with status %d", resp.StatusCode)
	}

	resp, body = env.request(t, http.MethodGet, "/courses/1/quiz/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if err := json.Unmarshal(body.Data, &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("expected 1 entry, got %d", len(history))
	}
}
