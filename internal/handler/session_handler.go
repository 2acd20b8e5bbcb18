package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/middleware"
)

type SessionHandler struct {
	sessionService SessionService
}

func NewSessionHandler(sessionService SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartSession POST /v1/me/sessions
func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	var req domain.WorkoutSession
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.ID = ""
	req.UserID = middleware.GetUserID(c)

	if err := h.sessionService.StartSession(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, req)
}

// FinishSession PATCH /v1/me/sessions/:id/finish
func (h *SessionHandler) FinishSession(c *fiber.Ctx) error {
	var req struct {
		Mood *int `json:"mood"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}

	session, err := h.sessionService.FinishSession(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req.Mood)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, session)
}
