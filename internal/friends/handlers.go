package friends

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"backend-tripmate/internal/directory"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/requests", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			SenderID   string `json:"sender_id"`
			ReceiverID string `json:"receiver_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.SenderID == "" || body.ReceiverID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sender_id and receiver_id required")
		}
		req, err := svc.SendRequest(c.Context(), body.SenderID, body.ReceiverID)
		if err != nil {
			return friendError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	r.Post("/requests/:id/accept", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		req, err := svc.AcceptRequest(c.Context(), body.UserID, c.Params("id"))
		if err != nil {
			return friendError(err)
		}
		return c.JSON(req)
	})

	r.Post("/requests/:id/decline", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		req, err := svc.DeclineRequest(c.Context(), body.UserID, c.Params("id"))
		if err != nil {
			return friendError(err)
		}
		return c.JSON(req)
	})

	r.Post("/requests/:id/cancel", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		req, err := svc.CancelRequest(c.Context(), body.UserID, c.Params("id"))
		if err != nil {
			return friendError(err)
		}
		return c.JSON(req)
	})

	r.Delete("/:friendId", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		if err := svc.RemoveFriend(c.Context(), userID, c.Params("friendId")); err != nil {
			return friendError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		list, err := svc.ListFriends(c.Context(), userID)
		if err != nil {
			return friendError(err)
		}
		return c.JSON(list)
	})

	r.Get("/requests/incoming", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		list, err := svc.ListIncomingRequests(c.Context(), userID)
		if err != nil {
			return friendError(err)
		}
		return c.JSON(list)
	})

	r.Get("/requests/outgoing", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		list, err := svc.ListOutgoingRequests(c.Context(), userID)
		if err != nil {
			return friendError(err)
		}
		return c.JSON(list)
	})
}

func friendError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidTarget):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyFriends), errors.Is(err, ErrDuplicateRequest):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, directory.ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
