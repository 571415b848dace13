package api

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func jsonOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func jsonCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var ferr *fiber.Error
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.As(err, &verrs),
		errors.Is(err, custody.ErrInvalidParameters),
		errors.Is(err, models.ErrInvalidEvent),
		errors.Is(err, models.ErrInvalidChild):
		return fiber.StatusBadRequest
	case errors.Is(err, custody.ErrMissingParent):
		return fiber.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, planner.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.OriginalURL(), err)
		if status == fiber.StatusInternalServerError {
			msg = fiber.ErrInternalServerError.Message
		}
	}
	return c.Status(status).JSON(errorResponse{Success: false, Message: msg})
}
