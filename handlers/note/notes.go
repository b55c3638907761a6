package note

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
	"github.com/VennelaDablikar/StudyBuddy/utils/validation"
)

// NoteHandler handles note-related requests under a course
type NoteHandler struct {
	db        *gorm.DB
	summaries *services.SummaryService
	validator *validation.Validator
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(db *gorm.DB, summaries *services.SummaryService) *NoteHandler {
	return &NoteHandler{
		db:        db,
		summaries: summaries,
		validator: validation.NewValidator(),
	}
}

// NoteRequest represents the request body for creating/updating a note
type NoteRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Body  string `json:"body" validate:"omitempty"`
}

// ListNotes handles GET /courses/:id/notes
func (h *NoteHandler) ListNotes(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	notes := []model.Note{}
	if err := h.db.Where("course_id = ?", course.ID).
		Order("created_at DESC").Find(&notes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch notes")
	}

	return response.Success(c, notes)
}

// CreateNote handles POST /courses/:id/notes
func (h *NoteHandler) CreateNote(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	note := model.Note{
		CourseID: course.ID,
		Title:    validation.SanitizeString(req.Title),
		Body:     validation.SanitizeString(req.Body),
	}

	if err := h.db.Create(&note).Error; err != nil {
		return response.InternalServerError(c, "Failed to create note")
	}

	return response.Created(c, note)
}

// UpdateNote handles PUT /courses/:id/notes/:noteId. A body change clears
// the cached summary so the user can regenerate it.
func (h *NoteHandler) UpdateNote(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var note model.Note
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("noteId"), course.ID).
		First(&note).Error; err != nil {
		return response.NotFound(c, "Note not found")
	}

	newBody := validation.SanitizeString(req.Body)
	updates := map[string]interface{}{
		"title": validation.SanitizeString(req.Title),
		"body":  newBody,
	}
	if newBody != note.Body {
		updates["summary"] = nil
	}

	if err := h.db.Model(&note).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update note")
	}

	if err := h.db.First(&note, note.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to reload note")
	}

	return response.Success(c, note)
}

// DeleteNote handles DELETE /courses/:id/notes/:noteId
func (h *NoteHandler) DeleteNote(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var note model.Note
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("noteId"), course.ID).
		First(&note).Error; err != nil {
		return response.NotFound(c, "Note not found")
	}

	if err := h.db.Delete(&note).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete note")
	}

	return response.SuccessWithMessage(c, "Note deleted successfully", nil)
}

// SummarizeResponse carries a summary plus whether it came from cache
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Cached  bool   `json:"cached"`
}

// Summarize handles POST /courses/:id/notes/:noteId/summarize
func (h *NoteHandler) Summarize(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	noteID, err := c.ParamsInt("noteId")
	if err != nil || noteID < 1 {
		return response.BadRequest(c, "Invalid note id")
	}

	summary, cached, err := h.summaries.SummarizeNote(c.Context(), course.ID, uint(noteID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoteNotFound):
			return response.NotFound(c, "Note not found")
		case errors.Is(err, services.ErrContentTooShort):
			return response.BadRequest(c, "Note is too short to summarize")
		case errors.Is(err, services.ErrAPIKeyMissing):
			return response.InternalServerError(c, "API key not configured")
		case errors.Is(err, services.ErrUpstreamUnavailable), errors.Is(err, services.ErrUpstreamFormat):
			return response.BadGateway(c, "AI service unavailable")
		default:
			return response.InternalServerError(c, "Failed to summarize note")
		}
	}

	return response.Success(c, SummarizeResponse{Summary: summary, Cached: cached})
}

// ToggleReviewed handles PATCH /courses/:id/notes/:noteId/toggle-reviewed
func (h *NoteHandler) ToggleReviewed(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var note model.Note
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("noteId"), course.ID).
		First(&note).Error; err != nil {
		return response.NotFound(c, "Note not found")
	}

	newValue := !note.IsReviewed
	if err := h.db.Model(&note).Update("is_reviewed", newValue).Error; err != nil {
		return response.InternalServerError(c, "Failed to update note")
	}

	return response.Success(c, fiber.Map{"is_reviewed": newValue})
}

// ownedCourse loads the :id course and verifies it belongs to the caller
func (h *NoteHandler) ownedCourse(c *fiber.Ctx) (*model.Course, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var course model.Course
	if err := h.db.Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}
