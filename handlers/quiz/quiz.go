package quiz

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/VennelaDablikar/StudyBuddy/services"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
)

// QuizHandler handles quiz generation, submission and history
type QuizHandler struct {
	quizzes *services.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizzes *services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// SubmitRequest carries the selected option index per question
type SubmitRequest struct {
	Answers []int `json:"answers"`
}

// Generate handles POST /courses/:id/quiz/generate
func (h *QuizHandler) Generate(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	quiz, err := h.quizzes.Generate(c.Context(), userID, uint(courseID))
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Created(c, quiz)
}

// Submit handles POST /courses/:id/quiz/:quizId/submit
func (h *QuizHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	quizID, err := c.ParamsInt("quizId")
	if err != nil || quizID < 1 {
		return response.BadRequest(c, "Invalid quiz id")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.quizzes.Submit(c.Context(), userID, uint(courseID), uint(quizID), req.Answers)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, result)
}

// History handles GET /courses/:id/quiz/history
func (h *QuizHandler) History(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	history, err := h.quizzes.History(userID, uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch quiz history")
	}

	return response.Success(c, history)
}

// mapError translates service errors into HTTP responses
func (h *QuizHandler) mapError(c *fiber.Ctx, err error) error {
	var countErr *services.AnswerCountError
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrQuizNotFound):
		return response.NotFound(c, "Quiz not found")
	case errors.Is(err, services.ErrInsufficientMaterial):
		return response.BadRequest(c, "Not enough study material to generate a quiz. Add more notes or summarize your PDFs first.")
	case errors.As(err, &countErr):
		return response.BadRequest(c, fmt.Sprintf("Expected %d answers", countErr.Expected))
	case errors.Is(err, services.ErrAPIKeyMissing):
		return response.InternalServerError(c, "AI API key not configured")
	case errors.Is(err, services.ErrUpstreamFormat):
		return response.BadGateway(c, "AI returned invalid quiz format. Please try again.")
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return response.BadGateway(c, "AI service unavailable")
	default:
		return response.InternalServerError(c, "Quiz operation failed")
	}
}
