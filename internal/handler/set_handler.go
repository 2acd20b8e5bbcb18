package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/middleware"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// SetHandler handles logging and deleting sets
type SetHandler struct {
	recordService RecordService
}

func NewSetHandler(recordService RecordService) *SetHandler {
	return &SetHandler{recordService: recordService}
}

// LogSet POST /v1/me/sets
// Responds 201 with the stored set and any records it established, or 200
// when the client id was already logged.
func (h *SetHandler) LogSet(c *fiber.Ctx) error {
	var req domain.LoggedSet
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.ID = ""
	req.UserID = middleware.GetUserID(c)

	result, err := h.recordService.LogSet(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	telemetry.AddSpanEvent(c, "personal_records",
		attribute.Int("count", len(result.Records)),
		attribute.Bool("replay", result.Replay),
	)

	status := fiber.StatusCreated
	if result.Replay {
		status = fiber.StatusOK
	}
	return respondData(c, status, result)
}

// DeleteSet DELETE /v1/me/sets/:id
func (h *SetHandler) DeleteSet(c *fiber.Ctx) error {
	if err := h.recordService.DeleteSet(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "deleted"})
}
