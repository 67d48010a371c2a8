package game

import "time"

type Category string

const (
	CategoryPark   Category = "park"
	CategoryBar    Category = "bar"
	CategoryMuseum Category = "museum"
)

// Categories lists every category the achievement system tracks, in the
// order tallies are reported.
var Categories = []Category{CategoryPark, CategoryBar, CategoryMuseum}

type Badge string

const (
	BadgeNone   Badge = "None"
	BadgeBronze Badge = "Bronze"
	BadgeSilver Badge = "Silver"
	BadgeGold   Badge = "Gold"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckIn is an append-only event in the user's per-category log.
type CheckIn struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Category    Category    `json:"category"`
	PlaceID     string      `json:"place_id"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Tally is derived from the event log on demand and never cached.
type Tally struct {
	Count int   `json:"count"`
	Badge Badge `json:"badge"`
}
