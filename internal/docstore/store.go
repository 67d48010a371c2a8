package docstore

import (
	"context"
	"encoding/json"
)

// Event is a single change delivered to a subscriber. Deleted marks a
// removal; Value is nil in that case.
type Event struct {
	Path    string          `json:"path"`
	Value   json.RawMessage `json:"value,omitempty"`
	Deleted bool            `json:"deleted,omitempty"`
}

// Store is a path-addressed document store: point reads, last-write-wins
// point writes, and push subscriptions per path. Paths are slash-separated,
// e.g. "friends/user-1/user-2". There are no cross-path transactions;
// callers that touch multiple paths must write the authoritative record
// first and tolerate dangling mirrors.
type Store interface {
	Put(ctx context.Context, path string, value any) error
	Get(ctx context.Context, path string, dest any) (bool, error)
	Remove(ctx context.Context, path string) error
	List(ctx context.Context, path string) (map[string]json.RawMessage, error)
	Subscribe(ctx context.Context, path string) (*Subscription, error)
}

// Subscription streams the current value(s) under a path followed by every
// later change at the path or a descendant. Events are ordered per path.
type Subscription struct {
	C      <-chan Event
	cancel context.CancelFunc
}

// Close stops delivery and releases the underlying pubsub connection.
func (s *Subscription) Close() {
	s.cancel()
}
