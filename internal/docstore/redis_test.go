package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestPutGetRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "friends/user-1/user-2", map[string]string{"friend_id": "user-2"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var doc map[string]string
	ok, err := store.Get(ctx, "friends/user-1/user-2", &doc)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if doc["friend_id"] != "user-2" {
		t.Fatalf("unexpected document")
	}

	if err := store.Remove(ctx, "friends/user-1/user-2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err = store.Get(ctx, "friends/user-1/user-2", nil)
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if ok {
		t.Fatalf("expected absent after remove")
	}
}

func TestGetAbsent(t *testing.T) {
	store := newTestStore(t)
	ok, err := store.Get(context.Background(), "nothing/here", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected absent")
	}
}

func TestListDirectChildrenOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "live_itineraries/trip-1/notes", "hello"); err != nil {
		t.Fatalf("put notes: %v", err)
	}
	if err := store.Put(ctx, "live_itineraries/trip-1/collaborators/user-1", map[string]string{"user_id": "user-1"}); err != nil {
		t.Fatalf("put collaborator: %v", err)
	}

	children, err := store.List(ctx, "live_itineraries/trip-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := children["notes"]; !ok {
		t.Fatalf("expected notes child")
	}
	if _, ok := children["collaborators/user-1"]; ok {
		t.Fatalf("expected grandchildren excluded")
	}

	collaborators, err := store.List(ctx, "live_itineraries/trip-1/collaborators")
	if err != nil {
		t.Fatalf("list collaborators: %v", err)
	}
	if len(collaborators) != 1 {
		t.Fatalf("expected one collaborator, got %d", len(collaborators))
	}
}

func TestSubscribeSnapshotThenUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "game/user-1/park/checkin-1", map[string]string{"place_id": "p1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	sub, err := store.Subscribe(ctx, "game/user-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	ev := waitEvent(t, sub)
	if ev.Path != "game/user-1/park/checkin-1" {
		t.Fatalf("unexpected snapshot path %q", ev.Path)
	}

	if err := store.Put(ctx, "game/user-1/bar/checkin-2", map[string]string{"place_id": "p2"}); err != nil {
		t.Fatalf("put update: %v", err)
	}

	ev = waitEvent(t, sub)
	if ev.Path != "game/user-1/bar/checkin-2" {
		t.Fatalf("unexpected update path %q", ev.Path)
	}

	if err := store.Remove(ctx, "game/user-1/park/checkin-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ev = waitEvent(t, sub)
	if !ev.Deleted || ev.Path != "game/user-1/park/checkin-1" {
		t.Fatalf("expected deletion event, got %+v", ev)
	}
}

func TestSubscribeExactPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "live_itineraries/trip-1/notes", "first"); err != nil {
		t.Fatalf("put: %v", err)
	}

	sub, err := store.Subscribe(ctx, "live_itineraries/trip-1/notes")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	ev := waitEvent(t, sub)
	if string(ev.Value) != `"first"` {
		t.Fatalf("unexpected snapshot value %s", ev.Value)
	}

	if err := store.Put(ctx, "live_itineraries/trip-1/notes", "second"); err != nil {
		t.Fatalf("put: %v", err)
	}
	ev = waitEvent(t, sub)
	if string(ev.Value) != `"second"` {
		t.Fatalf("unexpected update value %s", ev.Value)
	}
}

func TestSubscribeCloseStopsDelivery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub, err := store.Subscribe(ctx, "friends/user-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Close()

	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after Close")
		}
	}
}

func waitEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		if !ok {
			t.Fatalf("subscription closed")
		}
		return ev
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
	}
	return Event{}
}
