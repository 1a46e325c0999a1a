package response

import "github.com/gofiber/fiber/v2"

// Error codes
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeServiceError    = "SERVICE_ERROR"
)

// Client-facing messages
const (
	MessageUnauthorized     = "Accesso non autorizzato."
	MessageWrongCredentials = "Credenziali errate."
	MessageNotFound         = "Brano non trovato."
	MessageRouteNotFound    = "Risorsa non trovata."
	MessageInvalidBody      = "Richiesta non valida."
	MessageRateLimited      = "Troppi tentativi, riprova più tardi."
	MessageInternal         = "Errore interno al server."
)

// ErrorResponse is the JSON body of every failed API call. The browser
// client only reads message.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// BadRequest answers client errors that are not about the song payload
func BadRequest(c *fiber.Ctx, status int) error {
	return Error(c, status, CodeBadRequest, MessageInvalidBody)
}

func ValidationError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, CodeValidationError, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, CodeUnauthorized, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message)
}

func RateLimited(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, CodeRateLimited, MessageRateLimited)
}

// ServiceError hides the cause; callers log it before responding.
func ServiceError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, CodeServiceError, MessageInternal)
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
