package planner

import (
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
	"github.com/VennelaDablikar/StudyBuddy/utils/validation"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

// PlannerHandler handles study session planner requests
type PlannerHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(db *gorm.DB) *PlannerHandler {
	return &PlannerHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// SessionRequest represents the request body for creating/updating a session
type SessionRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty"`
	CourseID    *uint  `json:"course_id" validate:"omitempty"`
	SessionDate string `json:"session_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"omitempty"`
	EndTime     string `json:"end_time" validate:"omitempty"`
	Completed   *bool  `json:"completed" validate:"omitempty"`
}

// SessionWithCourse joins a session with the name of its linked course
type SessionWithCourse struct {
	model.StudySession
	CourseName *string `json:"course_name"`
}

// ListSessions handles GET /planner. Accepts optional month (1-12) and
// year query parameters to restrict results to one calendar month.
func (h *PlannerHandler) ListSessions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	query := h.db.Table("study_sessions").
		Select("study_sessions.*, courses.name AS course_name").
		Joins("LEFT JOIN courses ON courses.id = study_sessions.course_id").
		Where("study_sessions.user_id = ?", userID)

	month := c.QueryInt("month")
	year := c.QueryInt("year")
	if month >= 1 && month <= 12 && year > 0 {
		prefix := fmt.Sprintf("%04d-%02d-", year, month)
		query = query.Where("study_sessions.session_date LIKE ?", prefix+"%")
	}

	sessions := []SessionWithCourse{}
	if err := query.Order("study_sessions.session_date ASC, study_sessions.start_time ASC").
		Scan(&sessions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch sessions")
	}

	return response.Success(c, sessions)
}

// CreateSession handles POST /planner
func (h *PlannerHandler) CreateSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if msg := h.checkFields(&req, userID); msg != "" {
		return response.BadRequest(c, msg)
	}

	session := model.StudySession{
		UserID:      userID,
		Title:       validation.SanitizeString(req.Title),
		Description: validation.SanitizeString(req.Description),
		CourseID:    req.CourseID,
		SessionDate: req.SessionDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.Completed != nil {
		session.Completed = *req.Completed
	}

	if err := h.db.Create(&session).Error; err != nil {
		return response.InternalServerError(c, "Failed to create session")
	}

	return response.Created(c, session)
}

// UpdateSession handles PUT /planner/:id
func (h *PlannerHandler) UpdateSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if msg := h.checkFields(&req, userID); msg != "" {
		return response.BadRequest(c, msg)
	}

	var session model.StudySession
	if err := h.db.Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	updates := map[string]interface{}{
		"title":        validation.SanitizeString(req.Title),
		"description":  validation.SanitizeString(req.Description),
		"course_id":    req.CourseID,
		"session_date": req.SessionDate,
		"start_time":   req.StartTime,
		"end_time":     req.EndTime,
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}

	if err := h.db.Model(&session).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update session")
	}

	if err := h.db.First(&session, session.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to reload session")
	}

	return response.Success(c, session)
}

// ToggleSession handles PATCH /planner/:id/toggle
func (h *PlannerHandler) ToggleSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var session model.StudySession
	if err := h.db.Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	newValue := !session.Completed
	if err := h.db.Model(&session).Update("completed", newValue).Error; err != nil {
		return response.InternalServerError(c, "Failed to update session")
	}

	return response.Success(c, fiber.Map{"completed": newValue})
}

// DeleteSession handles DELETE /planner/:id
func (h *PlannerHandler) DeleteSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var session model.StudySession
	if err := h.db.Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	if err := h.db.Delete(&session).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete session")
	}

	return response.SuccessWithMessage(c, "Session deleted successfully", nil)
}

// checkFields validates date/time formats and course ownership. Returns an
// error message, or "" when the request is acceptable.
func (h *PlannerHandler) checkFields(req *SessionRequest, userID uint) string {
	if !dateRe.MatchString(req.SessionDate) {
		return "session_date must be in YYYY-MM-DD format"
	}
	if req.StartTime != "" && !timeRe.MatchString(req.StartTime) {
		return "start_time must be in HH:MM format"
	}
	if req.EndTime != "" && !timeRe.MatchString(req.EndTime) {
		return "end_time must be in HH:MM format"
	}

	if req.CourseID != nil {
		var count int64
		h.db.Model(&model.Course{}).
			Where("id = ? AND user_id = ?", *req.CourseID, userID).
			Count(&count)
		if count == 0 {
			return "Course not found"
		}
	}

	return ""
}
