package collab

import "time"

type InvitationStatus string

const (
	InviteStatusPending  InvitationStatus = "pending"
	InviteStatusAccepted InvitationStatus = "accepted"
	InviteStatusDeclined InvitationStatus = "declined"
)

// Invitation is stored under the invitee's path while pending; accept and
// decline remove it, so the stored status never leaves pending.
type Invitation struct {
	ID          string           `json:"id"`
	ItineraryID string           `json:"itinerary_id"`
	InviterID   string           `json:"inviter_id"`
	InviterName string           `json:"inviter_name"`
	InviteeID   string           `json:"invitee_id"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Collaborator is a member of an itinerary's shared document.
type Collaborator struct {
	UserID  string    `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	AddedAt time.Time `json:"added_at"`
}

// PendingInvite is the mirror marker kept under the itinerary so its view
// can show outstanding invites without scanning every invitee path.
type PendingInvite struct {
	UserID    string    `json:"user_id"`
	InviteID  string    `json:"invite_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CostEntry is one incidental cost in the shared ledger. Entries carry a
// generated id so deletion is targeted rather than positional.
type CostEntry struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Subtypes    []string `json:"subtypes"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
}

// View aggregates collaborator set and shared document for rendering.
type View struct {
	ItineraryID    string          `json:"itinerary_id"`
	Collaborators  []Collaborator  `json:"collaborators"`
	PendingInvites []PendingInvite `json:"pending_invites"`
	Notes          string          `json:"notes"`
	Places         []string        `json:"places"`
	OtherCosts     []CostEntry     `json:"other_costs"`
}
