package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	service string
	version string
}

func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}
