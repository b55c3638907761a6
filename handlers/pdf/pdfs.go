package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
)

// MaxUploadSize is the largest accepted PDF upload in bytes (20MB)
const MaxUploadSize = 20 * 1024 * 1024

// PDFHandler handles PDF uploads and summaries under a course
type PDFHandler struct {
	db        *gorm.DB
	summaries *services.SummaryService
	uploadDir string
}

// NewPDFHandler creates a new PDF handler storing files under uploadDir
func NewPDFHandler(db *gorm.DB, summaries *services.SummaryService, uploadDir string) *PDFHandler {
	return &PDFHandler{
		db:        db,
		summaries: summaries,
		uploadDir: uploadDir,
	}
}

// ListPDFs handles GET /courses/:courseId/pdfs
func (h *PDFHandler) ListPDFs(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	pdfs := []model.PDF{}
	if err := h.db.Where("course_id = ?", course.ID).
		Order("uploaded_at DESC").Find(&pdfs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch PDFs")
	}

	return response.Success(c, pdfs)
}

// Upload handles POST /courses/:courseId/pdfs. Accepts a multipart form
// with a single "pdf" file field.
func (h *PDFHandler) Upload(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	file, err := c.FormFile("pdf")
	if err != nil {
		return response.BadRequest(c, "No PDF file provided")
	}

	if file.Size > MaxUploadSize {
		return response.BadRequest(c, "File exceeds the 20MB upload limit")
	}

	contentType := file.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" || (contentType != "" && contentType != "application/pdf") {
		return response.BadRequest(c, "Only PDF files are allowed")
	}

	storedName := uuid.New().String() + ".pdf"
	storedPath := filepath.Join(h.uploadDir, storedName)

	if err := c.SaveFile(file, storedPath); err != nil {
		return response.InternalServerError(c, "Failed to store uploaded file")
	}

	record := model.PDF{
		CourseID:     course.ID,
		OriginalName: filepath.Base(file.Filename),
		Filename:     storedName,
		FilePath:     storedPath,
		Size:         file.Size,
	}

	if err := h.db.Create(&record).Error; err != nil {
		os.Remove(storedPath)
		return response.InternalServerError(c, "Failed to save PDF record")
	}

	return response.Created(c, record)
}

// DeletePDF handles DELETE /courses/:courseId/pdfs/:pdfId. Removes the
// database row first, then the file on disk; an orphaned file is swept
// up later by the cleanup job.
func (h *PDFHandler) DeletePDF(c *fiber.Ctx) error {
	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var record model.PDF
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("pdfId"), course.ID).
		First(&record).Error; err != nil {
		return response.NotFound(c, "PDF not found")
	}

	if err := h.db.Delete(&record).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete PDF")
	}

	if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: failed to remove file %s: %v\n", record.FilePath, err)
	}

	return response.SuccessWithMessage(c, "PDF deleted successfully", nil)
}

// SummarizeResponse carries a summary plus whether it came from cache
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Cached  bool   `json:"cached"`
}

// Summarize handles POST /courses/:courseId/pdfs/:pdfId/summarize
func (h *PDFHandler) Summarize(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	pdfID, err := c.ParamsInt("pdfId")
	if err != nil || pdfID < 1 {
		return response.BadRequest(c, "Invalid PDF id")
	}

	summary, cached, err := h.summaries.SummarizePDF(c.Context(), course.ID, uint(pdfID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPDFNotFound):
			return response.NotFound(c, "PDF not found")
		case errors.Is(err, services.ErrContentTooShort):
			return response.BadRequest(c, "Could not extract enough text from this PDF to summarize")
		case errors.Is(err, services.ErrAPIKeyMissing):
			return response.InternalServerError(c, "API key not configured")
		case errors.Is(err, services.ErrUpstreamUnavailable), errors.Is(err, services.ErrUpstreamFormat):
			return response.BadGateway(c, "AI service unavailable")
		default:
			return response.InternalServerError(c, "Failed to summarize PDF")
		}
	}

	return response.Success(c, SummarizeResponse{Summary: summary, Cached: cached})
}

func (h *PDFHandler) ownedCourse(c *fiber.Ctx) (*model.Course, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var course model.Course
	if err := h.db.Where("id = ? AND user_id = ?", c.Params("courseId"), userID).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}
