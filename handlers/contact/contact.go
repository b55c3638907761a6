package contact

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
	"github.com/VennelaDablikar/StudyBuddy/utils/validation"
)

// ContactHandler handles the public contact form
type ContactHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewContactHandler creates a new contact handler
func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// ContactRequest represents the contact form payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// Submit handles POST /contact. No authentication required.
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	msg := model.ContactMessage{
		Name:    validation.SanitizeString(req.Name),
		Email:   validation.SanitizeString(req.Email),
		Subject: validation.SanitizeString(req.Subject),
		Message: validation.SanitizeString(req.Message),
	}

	if err := h.db.Create(&msg).Error; err != nil {
		return response.InternalServerError(c, "Failed to save message")
	}

	return response.Created(c, fiber.Map{"message": "Thanks for reaching out! We'll get back to you soon."})
}
