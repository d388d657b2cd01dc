package memeserver

import (
	"errors"

	"memefeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorResponse is the JSON error envelope returned by the server.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError writes an application error as a JSON response with the
// matching HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return c.Status(statusForCode(appErr.Code)).JSON(errorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Error: "internal server error",
		Code:  models.CodeInternal,
	})
}

func statusForCode(code string) int {
	switch code {
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
