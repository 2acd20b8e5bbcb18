package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/middleware"
)

// ProgressHandler serves the progression charts of the calling user
type ProgressHandler struct {
	progressionService ProgressionService
}

func NewProgressHandler(progressionService ProgressionService) *ProgressHandler {
	return &ProgressHandler{progressionService: progressionService}
}

// GetSeries GET /v1/me/progress/series?exercise_id=&metric=&from=
func (h *ProgressHandler) GetSeries(c *fiber.Ctx) error {
	exerciseID := c.Query("exercise_id")
	if exerciseID == "" {
		return badRequest(c, "exercise_id is required")
	}
	metric := domain.Metric(c.Query("metric", string(domain.MetricMaxWeight)))

	from, err := parseFrom(c, h.progressionService.Location())
	if err != nil {
		return respondError(c, err)
	}

	series, err := h.progressionService.MetricSeries(c.UserContext(), middleware.GetUserID(c), exerciseID, metric, from)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{
		"exercise_id": exerciseID,
		"metric":      metric,
		"points":      series,
	})
}

// GetWeeklyVolume GET /v1/me/progress/weekly-volume?weeks=
func (h *ProgressHandler) GetWeeklyVolume(c *fiber.Ctx) error {
	buckets, err := h.progressionService.WeeklyVolume(c.UserContext(), middleware.GetUserID(c), c.QueryInt("weeks", 0))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, buckets)
}

// GetMuscleGroups GET /v1/me/progress/muscle-groups?from=
func (h *ProgressHandler) GetMuscleGroups(c *fiber.Ctx) error {
	from, err := parseFrom(c, h.progressionService.Location())
	if err != nil {
		return respondError(c, err)
	}

	shares, err := h.progressionService.MuscleGroups(c.UserContext(), middleware.GetUserID(c), from)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, shares)
}

// GetRpe GET /v1/me/progress/rpe?from=
func (h *ProgressHandler) GetRpe(c *fiber.Ctx) error {
	from, err := parseFrom(c, h.progressionService.Location())
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.progressionService.Rpe(c.UserContext(), middleware.GetUserID(c), from)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, summary)
}

// GetOverview GET /v1/me/progress/overview?from=&weeks=
func (h *ProgressHandler) GetOverview(c *fiber.Ctx) error {
	from, err := parseFrom(c, h.progressionService.Location())
	if err != nil {
		return respondError(c, err)
	}

	overview, err := h.progressionService.Overview(c.UserContext(), middleware.GetUserID(c), from, c.QueryInt("weeks", 0))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, overview)
}
