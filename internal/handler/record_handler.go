package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/middleware"
)

type RecordHandler struct {
	recordService RecordService
}

func NewRecordHandler(recordService RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// ListRecords GET /v1/me/records?exercise_id=
func (h *RecordHandler) ListRecords(c *fiber.Ctx) error {
	records, err := h.recordService.ListRecords(c.UserContext(), middleware.GetUserID(c), c.Query("exercise_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, records)
}

// Rebuild POST /v1/me/records/rebuild?exercise_id=
// Without exercise_id every exercise of the user is recomputed.
func (h *RecordHandler) Rebuild(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if exerciseID := c.Query("exercise_id"); exerciseID != "" {
		records, err := h.recordService.RebuildRecords(c.UserContext(), userID, exerciseID)
		if err != nil {
			return respondError(c, err)
		}
		return respondData(c, fiber.StatusOK, records)
	}

	rebuilt, err := h.recordService.RebuildAll(c.UserContext(), userID, c.QueryBool("dry_run"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, rebuilt)
}
