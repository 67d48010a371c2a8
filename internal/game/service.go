package game

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"backend-tripmate/internal/docstore"
	"backend-tripmate/internal/shared/geo"
	"backend-tripmate/internal/stream"

	"github.com/google/uuid"
)

// Check-in radius in meters.
const checkInRadiusM = 200

var (
	ErrInvalidCategory  = errors.New("category must be park, bar or museum")
	ErrTooFar           = errors.New("too far from the place to check in")
	ErrAlreadyCheckedIn = errors.New("already checked in at this place")
)

type Service struct {
	store docstore.Store
	hub   *stream.Hub
}

func NewService(store docstore.Store, hub *stream.Hub) *Service {
	return &Service{store: store, hub: hub}
}

func checkInPath(userID string, category Category, checkInID string) string {
	return "game/" + userID + "/" + string(category) + "/" + checkInID
}

// RecordCheckIn validates the geofence and per-place idempotency, then
// appends the event to the user's per-category log. A place can be checked
// in once per user regardless of the category argument.
func (s *Service) RecordCheckIn(ctx context.Context, userID, placeID string, category Category, place, user Coordinates) (CheckIn, error) {
	if !validCategory(category) {
		return CheckIn{}, ErrInvalidCategory
	}

	distance := geo.DistanceM(place.Latitude, place.Longitude, user.Latitude, user.Longitude)
	if distance > checkInRadiusM {
		return CheckIn{}, ErrTooFar
	}

	checkedIn, err := s.hasCheckedIn(ctx, userID, placeID)
	if err != nil {
		return CheckIn{}, err
	}
	if checkedIn {
		return CheckIn{}, ErrAlreadyCheckedIn
	}

	checkIn := CheckIn{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    category,
		PlaceID:     placeID,
		Coordinates: place,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Put(ctx, checkInPath(userID, category, checkIn.ID), checkIn); err != nil {
		return CheckIn{}, err
	}

	s.notify(ctx, userID)
	return checkIn, nil
}

// ComputeTally reads every check-in for the user and derives per-category
// counts and badge tiers. Pure function of the event log.
func (s *Service) ComputeTally(ctx context.Context, userID string) (map[Category]Tally, error) {
	tallies := map[Category]Tally{}
	for _, category := range Categories {
		events, err := s.store.List(ctx, "game/"+userID+"/"+string(category))
		if err != nil {
			return nil, err
		}
		count := len(events)
		tallies[category] = Tally{Count: count, Badge: badgeFor(count)}
	}
	return tallies, nil
}

// ComputeAchievementsFor is the public-badge view of another user; identical
// computation, no privacy filtering in this core.
func (s *Service) ComputeAchievementsFor(ctx context.Context, otherUserID string) (map[Category]Tally, error) {
	return s.ComputeTally(ctx, otherUserID)
}

// ListCheckIns returns the user's check-ins for one category, oldest first.
func (s *Service) ListCheckIns(ctx context.Context, userID string, category Category) ([]CheckIn, error) {
	if !validCategory(category) {
		return nil, ErrInvalidCategory
	}
	events, err := s.store.List(ctx, "game/"+userID+"/"+string(category))
	if err != nil {
		return nil, err
	}
	list := make([]CheckIn, 0, len(events))
	for _, raw := range events {
		var c CheckIn
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		list = append(list, c)
	}
	sortCheckIns(list)
	return list, nil
}

func (s *Service) hasCheckedIn(ctx context.Context, userID, placeID string) (bool, error) {
	for _, category := range Categories {
		events, err := s.store.List(ctx, "game/"+userID+"/"+string(category))
		if err != nil {
			return false, err
		}
		for _, raw := range events {
			var c CheckIn
			if err := json.Unmarshal(raw, &c); err != nil {
				continue
			}
			if c.PlaceID == placeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Service) notify(ctx context.Context, userID string) {
	if s.hub == nil {
		return
	}
	tallies, err := s.ComputeTally(ctx, userID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(tallies)
	if err != nil {
		return
	}
	s.hub.Broadcast("game:"+userID, payload)
}

func sortCheckIns(list []CheckIn) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func badgeFor(count int) Badge {
	switch {
	case count >= 20:
		return BadgeGold
	case count >= 10:
		return BadgeSilver
	case count >= 5:
		return BadgeBronze
	default:
		return BadgeNone
	}
}

func validCategory(category Category) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
