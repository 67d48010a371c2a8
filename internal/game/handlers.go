package game

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/checkins", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID          string      `json:"user_id"`
			PlaceID         string      `json:"place_id"`
			Category        Category    `json:"category"`
			Coordinates     Coordinates `json:"coordinates"`
			UserCoordinates Coordinates `json:"user_coordinates"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.PlaceID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and place_id required")
		}
		checkIn, err := svc.RecordCheckIn(c.Context(), body.UserID, body.PlaceID, body.Category, body.Coordinates, body.UserCoordinates)
		if err != nil {
			return gameError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(checkIn)
	})

	r.Get("/checkins", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		category := Category(c.Query("category"))
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		list, err := svc.ListCheckIns(c.Context(), userID, category)
		if err != nil {
			return gameError(err)
		}
		return c.JSON(list)
	})

	r.Get("/achievements", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		tallies, err := svc.ComputeTally(c.Context(), userID)
		if err != nil {
			return gameError(err)
		}
		return c.JSON(tallies)
	})

	r.Get("/achievements/:userId", authMiddleware, func(c *fiber.Ctx) error {
		tallies, err := svc.ComputeAchievementsFor(c.Context(), c.Params("userId"))
		if err != nil {
			return gameError(err)
		}
		return c.JSON(tallies)
	})
}

func gameError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTooFar):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrAlreadyCheckedIn):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
