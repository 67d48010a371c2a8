package friends

import "time"

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusDeclined  RequestStatus = "declined"
	StatusCancelled RequestStatus = "cancelled"
)

// Request is a pending friend request. The stored record is always pending;
// accept/decline/cancel remove it and the returned copy carries the terminal
// status.
type Request struct {
	ID            string        `json:"id"`
	SenderID      string        `json:"sender_id"`
	SenderName    string        `json:"sender_name"`
	SenderEmail   string        `json:"sender_email"`
	ReceiverID    string        `json:"receiver_id"`
	ReceiverName  string        `json:"receiver_name"`
	ReceiverEmail string        `json:"receiver_email"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Friend is one half of a symmetric friend edge, stored under the owning
// user's list with the counterpart's identity denormalized.
type Friend struct {
	FriendID    string    `json:"friend_id"`
	FriendName  string    `json:"friend_name"`
	FriendEmail string    `json:"friend_email"`
	AddedAt     time.Time `json:"added_at"`
}

// View is the live snapshot pushed to a user's stream topic.
type View struct {
	Friends  []Friend  `json:"friends"`
	Incoming []Request `json:"incoming_requests"`
	Outgoing []Request `json:"outgoing_requests"`
}
