package friends

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"backend-tripmate/internal/directory"
	"backend-tripmate/internal/docstore"
	"backend-tripmate/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrInvalidTarget    = errors.New("cannot befriend yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrRequestNotFound  = errors.New("friend request not found")
)

type Service struct {
	store docstore.Store
	users *directory.Service
	hub   *stream.Hub
}

func NewService(store docstore.Store, users *directory.Service, hub *stream.Hub) *Service {
	return &Service{store: store, users: users, hub: hub}
}

func friendPath(userID, friendID string) string {
	return "friends/" + userID + "/" + friendID
}

func inboxPath(receiverID, requestID string) string {
	return "friend_requests/" + receiverID + "/" + requestID
}

func outboxPath(senderID, requestID string) string {
	return "outgoing_friend_requests/" + senderID + "/" + requestID
}

// SendRequest writes a pending request under the receiver's inbox and
// mirrors it under the sender's outbox for cancellation lookup. The inbox
// copy is authoritative; the mirror may dangle after a partial failure.
func (s *Service) SendRequest(ctx context.Context, senderID, receiverID string) (Request, error) {
	if senderID == receiverID {
		return Request{}, ErrInvalidTarget
	}
	if ok, err := s.store.Get(ctx, friendPath(senderID, receiverID), nil); err != nil {
		return Request{}, err
	} else if ok {
		return Request{}, ErrAlreadyFriends
	}

	pending, err := s.ListIncomingRequests(ctx, receiverID)
	if err != nil {
		return Request{}, err
	}
	for _, r := range pending {
		if r.SenderID == senderID {
			return Request{}, ErrDuplicateRequest
		}
	}

	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return Request{}, err
	}
	receiver, err := s.users.GetUser(ctx, receiverID)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		ID:            uuid.NewString(),
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		SenderEmail:   sender.Email,
		ReceiverID:    receiver.ID,
		ReceiverName:  receiver.Name,
		ReceiverEmail: receiver.Email,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Put(ctx, inboxPath(receiverID, req.ID), req); err != nil {
		return Request{}, err
	}
	if err := s.store.Put(ctx, outboxPath(senderID, req.ID), req); err != nil {
		log.Printf("friends: outbox mirror write failed for request %s: %v", req.ID, err)
	}

	s.notify(ctx, senderID, receiverID)
	return req, nil
}

// AcceptRequest writes both halves of the friend edge, then removes the
// request from inbox and outbox. A race with decline/cancel resolves to
// ErrRequestNotFound for the loser, which callers treat as benign.
func (s *Service) AcceptRequest(ctx context.Context, receiverID, requestID string) (Request, error) {
	var req Request
	ok, err := s.store.Get(ctx, inboxPath(receiverID, requestID), &req)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, ErrRequestNotFound
	}

	addedAt := time.Now().UTC()
	receiverEdge := Friend{FriendID: req.SenderID, FriendName: req.SenderName, FriendEmail: req.SenderEmail, AddedAt: addedAt}
	senderEdge := Friend{FriendID: req.ReceiverID, FriendName: req.ReceiverName, FriendEmail: req.ReceiverEmail, AddedAt: addedAt}

	if err := s.store.Put(ctx, friendPath(receiverID, req.SenderID), receiverEdge); err != nil {
		return Request{}, err
	}
	if err := s.store.Put(ctx, friendPath(req.SenderID, receiverID), senderEdge); err != nil {
		return Request{}, err
	}

	if err := s.store.Remove(ctx, inboxPath(receiverID, requestID)); err != nil {
		log.Printf("friends: inbox cleanup failed for request %s: %v", requestID, err)
	}
	if err := s.store.Remove(ctx, outboxPath(req.SenderID, requestID)); err != nil {
		log.Printf("friends: outbox cleanup failed for request %s: %v", requestID, err)
	}

	s.notify(ctx, req.SenderID, receiverID)
	req.Status = StatusAccepted
	return req, nil
}

// DeclineRequest removes the request from the receiver's inbox only. The
// sender's outbox mirror is left for the reconciling read in
// ListOutgoingRequests.
func (s *Service) DeclineRequest(ctx context.Context, receiverID, requestID string) (Request, error) {
	var req Request
	ok, err := s.store.Get(ctx, inboxPath(receiverID, requestID), &req)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, ErrRequestNotFound
	}

	if err := s.store.Remove(ctx, inboxPath(receiverID, requestID)); err != nil {
		return Request{}, err
	}

	s.notify(ctx, req.SenderID, receiverID)
	req.Status = StatusDeclined
	return req, nil
}

// CancelRequest is sender-initiated and removes both inbox and outbox
// copies.
func (s *Service) CancelRequest(ctx context.Context, senderID, requestID string) (Request, error) {
	var req Request
	ok, err := s.store.Get(ctx, outboxPath(senderID, requestID), &req)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, ErrRequestNotFound
	}

	if err := s.store.Remove(ctx, inboxPath(req.ReceiverID, requestID)); err != nil {
		return Request{}, err
	}
	if err := s.store.Remove(ctx, outboxPath(senderID, requestID)); err != nil {
		log.Printf("friends: outbox cleanup failed for request %s: %v", requestID, err)
	}

	s.notify(ctx, senderID, req.ReceiverID)
	req.Status = StatusCancelled
	return req, nil
}

// RemoveFriend removes both halves of the edge. If the second removal fails
// the graph stays asymmetric until a later repair; that is surfaced in the
// log, not to the caller.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.store.Remove(ctx, friendPath(userID, friendID)); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, friendPath(friendID, userID)); err != nil {
		log.Printf("friends: reciprocal edge removal failed for %s/%s: %v", friendID, userID, err)
	}

	s.notify(ctx, userID, friendID)
	return nil
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	children, err := s.store.List(ctx, "friends/"+userID)
	if err != nil {
		return nil, err
	}
	list := make([]Friend, 0, len(children))
	for _, raw := range children {
		var f Friend
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AddedAt.Equal(list[j].AddedAt) {
			return list[i].AddedAt.Before(list[j].AddedAt)
		}
		return list[i].FriendID < list[j].FriendID
	})
	return list, nil
}

func (s *Service) ListIncomingRequests(ctx context.Context, userID string) ([]Request, error) {
	children, err := s.store.List(ctx, "friend_requests/"+userID)
	if err != nil {
		return nil, err
	}
	return sortRequests(children), nil
}

// ListOutgoingRequests reconciles the outbox against the receivers'
// inboxes: a mirror whose inbox counterpart is gone was resolved elsewhere
// and is dropped (and opportunistically cleaned up).
func (s *Service) ListOutgoingRequests(ctx context.Context, userID string) ([]Request, error) {
	children, err := s.store.List(ctx, "outgoing_friend_requests/"+userID)
	if err != nil {
		return nil, err
	}

	live := map[string]json.RawMessage{}
	for id, raw := range children {
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		ok, err := s.store.Get(ctx, inboxPath(req.ReceiverID, req.ID), nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := s.store.Remove(ctx, outboxPath(userID, req.ID)); err != nil {
				log.Printf("friends: orphan mirror cleanup failed for request %s: %v", req.ID, err)
			}
			continue
		}
		live[id] = raw
	}
	return sortRequests(live), nil
}

// WatchFriends emits a fresh friend list whenever the user's list changes,
// starting with the current one. Close the subscription via the returned
// cancel func.
func (s *Service) WatchFriends(ctx context.Context, userID string) (<-chan []Friend, func(), error) {
	sub, err := s.store.Subscribe(ctx, "friends/"+userID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []Friend, 8)
	go func() {
		defer close(out)
		for range sub.C {
			list, err := s.ListFriends(ctx, userID)
			if err != nil {
				continue
			}
			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}

func (s *Service) Snapshot(ctx context.Context, userID string) (View, error) {
	friendsList, err := s.ListFriends(ctx, userID)
	if err != nil {
		return View{}, err
	}
	incoming, err := s.ListIncomingRequests(ctx, userID)
	if err != nil {
		return View{}, err
	}
	outgoing, err := s.ListOutgoingRequests(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return View{Friends: friendsList, Incoming: incoming, Outgoing: outgoing}, nil
}

func (s *Service) notify(ctx context.Context, userIDs ...string) {
	if s.hub == nil {
		return
	}
	for _, id := range userIDs {
		view, err := s.Snapshot(ctx, id)
		if err != nil {
			continue
		}
		payload, err := json.Marshal(view)
		if err != nil {
			continue
		}
		s.hub.Broadcast("friends:"+id, payload)
	}
}

func sortRequests(children map[string]json.RawMessage) []Request {
	list := make([]Request, 0, len(children))
	for _, raw := range children {
		var r Request
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}
