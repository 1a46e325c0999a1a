package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mchic/setlist/internal/middleware"
	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/pkg/response"
)

type AuthHandler struct {
	auth      *middleware.BasicAuth
	validator *validator.Validate
}

func NewAuthHandler(auth *middleware.BasicAuth, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: v,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, response.MessageInvalidBody)
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.Unauthorized(c, response.MessageWrongCredentials)
	}

	if !h.auth.Valid(req.User, req.Pass) {
		return response.Unauthorized(c, response.MessageWrongCredentials)
	}

	return response.OK(c, model.LoginResponse{OK: true})
}
