package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/paulhankin/pathgen/internal/metrics"
	"github.com/paulhankin/pathgen/paths"
)

// APIError is the body of every error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func newError(c *fiber.Ctx, status int, code, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errGeneralize maps errors from the paths package: bad parameters are
// the caller's fault, anything else is ours.
func errGeneralize(c *fiber.Ctx, err error) error {
	if errors.Is(err, paths.ErrInvalidParameter) {
		metrics.InvalidParameters.Inc()
		return newError(c, fiber.StatusBadRequest, "invalid_parameter", err.Error())
	}
	return newError(c, fiber.StatusInternalServerError, "internal_error", err.Error())
}

// errorHandler renders errors returned by handlers and by fiber itself,
// such as unknown routes, as APIErrors.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		switch status {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestEntityTooLarge:
			code = "too_large"
		default:
			if status < 500 {
				code = "bad_request"
			}
		}
	}
	return newError(c, status, code, err.Error())
}
