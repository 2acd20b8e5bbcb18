package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	log "github.com/sirupsen/logrus"
)

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSet),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidMetric),
		errors.Is(err, domain.ErrInvalidSession),
		errors.Is(err, domain.ErrInvalidExercise),
		errors.Is(err, domain.ErrOrderingViolation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownExercise):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSetNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateExercise),
		errors.Is(err, domain.ErrDuplicateSetID),
		errors.Is(err, domain.ErrRecordConflict):
		return fiber.StatusConflict
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// parseFrom reads the optional "from" query parameter. Plain dates are midnight
// in loc; full RFC 3339 timestamps are taken as given.
func parseFrom(c *fiber.Ctx, loc *time.Location) (*time.Time, error) {
	raw := c.Query("from")
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}
