package course

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
	"github.com/VennelaDablikar/StudyBuddy/utils/validation"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CourseRequest represents the request body for creating/updating a course
type CourseRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ListCourses handles GET /courses. Returns the user's courses with note
// and pdf counts for the dashboard, newest first.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courses := []model.CourseWithCounts{}
	err := h.db.Model(&model.Course{}).
		Select("courses.*, "+
			"(SELECT COUNT(*) FROM notes WHERE notes.course_id = courses.id) AS note_count, "+
			"(SELECT COUNT(*) FROM pdfs WHERE pdfs.course_id = courses.id) AS pdf_count").
		Where("courses.user_id = ?", userID).
		Order("courses.created_at DESC").
		Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// StatsResponse carries the dashboard stat bar aggregates
type StatsResponse struct {
	TotalCourses      int64 `json:"totalCourses"`
	TotalNotes        int64 `json:"totalNotes"`
	TotalSummaries    int64 `json:"totalSummaries"`
	TotalPDFs         int64 `json:"totalPdfs"`
	TotalPDFSummaries int64 `json:"totalPdfSummaries"`
}

// GetStats handles GET /courses/stats
func (h *CourseHandler) GetStats(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var stats StatsResponse

	h.db.Model(&model.Course{}).Where("user_id = ?", userID).Count(&stats.TotalCourses)
	h.db.Model(&model.Note{}).
		Joins("JOIN courses ON notes.course_id = courses.id").
		Where("courses.user_id = ?", userID).Count(&stats.TotalNotes)
	h.db.Model(&model.Note{}).
		Joins("JOIN courses ON notes.course_id = courses.id").
		Where("courses.user_id = ? AND notes.summary IS NOT NULL AND notes.summary != ''", userID).
		Count(&stats.TotalSummaries)
	h.db.Model(&model.PDF{}).
		Joins("JOIN courses ON pdfs.course_id = courses.id").
		Where("courses.user_id = ?", userID).Count(&stats.TotalPDFs)
	h.db.Model(&model.PDF{}).
		Joins("JOIN courses ON pdfs.course_id = courses.id").
		Where("courses.user_id = ? AND pdfs.summary IS NOT NULL AND pdfs.summary != ''", userID).
		Count(&stats.TotalPDFSummaries)

	return response.Success(c, stats)
}

// SearchResponse groups global search hits by resource type
type SearchResponse struct {
	Courses []model.Course `json:"courses"`
	Notes   []SearchNote   `json:"notes"`
	PDFs    []SearchPDF    `json:"pdfs"`
}

// SearchNote is a note hit annotated with its course name
type SearchNote struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CourseID   uint   `json:"course_id"`
	CourseName string `json:"course_name"`
}

// SearchPDF is a pdf hit annotated with its course name
type SearchPDF struct {
	ID           uint   `json:"id"`
	OriginalName string `json:"original_name"`
	Filename     string `json:"filename"`
	CourseID     uint   `json:"course_id"`
	CourseName   string `json:"course_name"`
}

// Search handles GET /courses/search?q=term across courses, notes and PDFs
func (h *CourseHandler) Search(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	q := validation.SanitizeString(c.Query("q"))
	result := SearchResponse{
		Courses: []model.Course{},
		Notes:   []SearchNote{},
		PDFs:    []SearchPDF{},
	}
	if q == "" {
		return response.Success(c, result)
	}

	term := "%" + q + "%"

	if err := h.db.Where("user_id = ? AND (name LIKE ? OR description LIKE ?)", userID, term, term).
		Find(&result.Courses).Error; err != nil {
		return response.InternalServerError(c, "Search failed")
	}

	if err := h.db.Model(&model.Note{}).
		Select("notes.id, notes.title, notes.body, notes.course_id, courses.name AS course_name").
		Joins("JOIN courses ON notes.course_id = courses.id").
		Where("courses.user_id = ? AND (notes.title LIKE ? OR notes.body LIKE ?)", userID, term, term).
		Scan(&result.Notes).Error; err != nil {
		return response.InternalServerError(c, "Search failed")
	}

	if err := h.db.Model(&model.PDF{}).
		Select("pdfs.id, pdfs.original_name, pdfs.filename, pdfs.course_id, courses.name AS course_name").
		Joins("JOIN courses ON pdfs.course_id = courses.id").
		Where("courses.user_id = ? AND pdfs.original_name LIKE ?", userID, term).
		Scan(&result.PDFs).Error; err != nil {
		return response.InternalServerError(c, "Search failed")
	}

	return response.Success(c, result)
}

// ProgressResponse reports the reviewed-notes progress of a course
type ProgressResponse struct {
	Total      int64 `json:"total"`
	Reviewed   int64 `json:"reviewed"`
	Percentage int   `json:"percentage"`
}

// GetProgress handles GET /courses/:id/progress
func (h *CourseHandler) GetProgress(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.findOwnedCourse(c.Params("id"), userID)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var progress ProgressResponse
	h.db.Model(&model.Note{}).Where("course_id = ?", course.ID).Count(&progress.Total)
	h.db.Model(&model.Note{}).Where("course_id = ? AND is_reviewed = ?", course.ID, true).Count(&progress.Reviewed)

	if progress.Total > 0 {
		progress.Percentage = int(math.Round(float64(progress.Reviewed) / float64(progress.Total) * 100))
	}

	return response.Success(c, progress)
}

// CreateCourse handles POST /courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		UserID:      userID,
		Name:        validation.SanitizeString(req.Name),
		Description: validation.SanitizeString(req.Description),
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.findOwnedCourse(c.Params("id"), userID)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	course.Name = validation.SanitizeString(req.Name)
	course.Description = validation.SanitizeString(req.Description)

	if err := h.db.Save(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse handles DELETE /courses/:id. Notes, PDFs and quizzes go
// with it via FK cascade; study sessions keep their row with course set
// to null.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.findOwnedCourse(c.Params("id"), userID)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	if err := h.db.Delete(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

func (h *CourseHandler) findOwnedCourse(id string, userID uint) (*model.Course, error) {
	var course model.Course
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}
