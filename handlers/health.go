package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/VennelaDablikar/StudyBuddy/database"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
)

// HealthHandler reports API liveness and database reachability
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles GET /
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.store.HealthCheck(); err != nil {
		dbStatus = "unreachable"
	}

	return response.Success(c, fiber.Map{
		"status":   "StudyBuddy API is running",
		"database": dbStatus,
	})
}
