package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/pkg/response"
)

// Health handles GET /api/health
func Health(storage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.OK(c, model.HealthResponse{Status: "ok", Storage: storage})
	}
}
