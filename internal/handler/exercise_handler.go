package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ExerciseHandler struct {
	exerciseService ExerciseService
}

func NewExerciseHandler(exerciseService ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ListExercises GET /v1/exercises?name=&muscle_group=
func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	exs, err := h.exerciseService.List(c.UserContext(), c.Query("name"), c.Query("muscle_group"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, exs)
}

// GetExercise GET /v1/exercises/:id
func (h *ExerciseHandler) GetExercise(c *fiber.Ctx) error {
	ex, err := h.exerciseService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, ex)
}

// CreateExercise POST /v1/exercises
func (h *ExerciseHandler) CreateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.ID = ""
	if err := h.exerciseService.Create(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, req)
}

// UpdateExercise PATCH /v1/exercises/:id
// Only the fields present in the body change.
func (h *ExerciseHandler) UpdateExercise(c *fiber.Ctx) error {
	var patch domain.ExercisePatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	ex, err := h.exerciseService.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, ex)
}

// DeleteExercise DELETE /v1/exercises/:id
// Every user's records of the exercise go with it; logged sets stay.
func (h *ExerciseHandler) DeleteExercise(c *fiber.Ctx) error {
	removed, err := h.exerciseService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	telemetry.AddSpanEvent(c, "records_deleted", attribute.Int64("count", removed))
	return respondData(c, fiber.StatusOK, fiber.Map{"records_deleted": removed})
}
