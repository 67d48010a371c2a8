package itinerary

import "time"

// Itinerary is the authoritative record owned by the relational store. The
// collaboration core augments it with membership and shared-document data
// keyed by the same id.
type Itinerary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Budget      float64   `json:"budget"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
