package collab

import (
	"errors"

	"backend-tripmate/internal/directory"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/itineraries/:id/invites", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			InviterID    string `json:"inviter_id"`
			InviteeEmail string `json:"invitee_email"`
		}
		if err := c.BodyParser(&body); err != nil || body.InviterID == "" || body.InviteeEmail == "" {
			return fiber.NewError(fiber.StatusBadRequest, "inviter_id and invitee_email required")
		}
		invite, err := svc.Invite(c.Context(), c.Params("id"), body.InviterID, body.InviteeEmail)
		if err != nil {
			return collabError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(invite)
	})

	r.Post("/invites/:id/accept", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		invite, err := svc.Accept(c.Context(), body.UserID, c.Params("id"))
		if err != nil {
			return collabError(err)
		}
		return c.JSON(invite)
	})

	r.Post("/invites/:id/decline", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		invite, err := svc.Decline(c.Context(), body.UserID, c.Params("id"))
		if err != nil {
			return collabError(err)
		}
		return c.JSON(invite)
	})

	r.Get("/invites", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		list, err := svc.ListInvitations(c.Context(), userID)
		if err != nil {
			return collabError(err)
		}
		return c.JSON(list)
	})

	r.Get("/itineraries/:id", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.ItineraryView(c.Context(), c.Params("id"))
		if err != nil {
			return collabError(err)
		}
		return c.JSON(view)
	})

	r.Put("/itineraries/:id/notes", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
			Notes  string `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		if err := svc.MutateNotes(c.Context(), c.Params("id"), body.UserID, body.Notes); err != nil {
			return collabError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/itineraries/:id/places", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
			Place  string `json:"place"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.Place == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and place required")
		}
		places, err := svc.AddPlace(c.Context(), c.Params("id"), body.UserID, body.Place)
		if err != nil {
			return collabError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(places)
	})

	r.Delete("/itineraries/:id/places", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		place := c.Query("place")
		if userID == "" || place == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and place required")
		}
		places, err := svc.RemovePlace(c.Context(), c.Params("id"), userID, place)
		if err != nil {
			return collabError(err)
		}
		return c.JSON(places)
	})

	r.Post("/itineraries/:id/costs", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID string    `json:"user_id"`
			Entry  CostEntry `json:"entry"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and entry required")
		}
		entry, err := svc.AddCost(c.Context(), c.Params("id"), body.UserID, body.Entry)
		if err != nil {
			return collabError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	r.Delete("/itineraries/:id/costs/:costId", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		if err := svc.RemoveCost(c.Context(), c.Params("id"), userID, c.Params("costId")); err != nil {
			return collabError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func collabError(err error) error {
	switch {
	case errors.Is(err, ErrSelfInvite):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyCollaborator), errors.Is(err, ErrDuplicateInvite), errors.Is(err, ErrDuplicatePlace):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotCollaborator):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvitationNotFound), errors.Is(err, ErrPlaceNotFound), errors.Is(err, ErrCostNotFound), errors.Is(err, directory.ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
