package collab

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
	ErrSelfInvite          = errors.New("cannot invite yourself")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")
	ErrDuplicateInvite     = errors.New("invite already pending")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrNotCollaborator     = errors.New("caller is not a collaborator")
	ErrDuplicatePlace      = errors.New("place already in list")
	ErrPlaceNotFound       = errors.New("place not in list")
	ErrCostNotFound        = errors.New("cost entry not found")
)

type Service struct {
	store docstore.Store
	users *directory.Service
	hub   *stream.Hub
}

func NewService(store docstore.Store, users *directory.Service, hub *stream.Hub) *Service {
	return &Service{store: store, users: users, hub: hub}
}

func collaboratorPath(itineraryID, userID string) string {
	return "live_itineraries/" + itineraryID + "/collaborators/" + userID
}

func pendingInvitePath(itineraryID, userID string) string {
	return "live_itineraries/" + itineraryID + "/pendingInvites/" + userID
}

func invitationPath(inviteeID, inviteID string) string {
	return "invitations/invitee/" + inviteeID + "/" + inviteID
}

func notesPath(itineraryID string) string {
	return "live_itineraries/" + itineraryID + "/notes"
}

func placesPath(itineraryID string) string {
	return "live_itineraries/" + itineraryID + "/places"
}

func otherCostsPath(itineraryID string) string {
	return "live_itineraries/" + itineraryID + "/other_costs"
}

// SeedDocument creates the empty shared document for a freshly created
// itinerary and adds the owner to the collaborator set so they can edit it.
func SeedDocument(ctx context.Context, store docstore.Store, itineraryID string, owner directory.User) error {
	collab := Collaborator{UserID: owner.ID, Name: owner.Name, Email: owner.Email, AddedAt: time.Now().UTC()}
	if err := store.Put(ctx, collaboratorPath(itineraryID, owner.ID), collab); err != nil {
		return err
	}
	if err := store.Put(ctx, notesPath(itineraryID), ""); err != nil {
		return err
	}
	if err := store.Put(ctx, placesPath(itineraryID), []string{}); err != nil {
		return err
	}
	return store.Put(ctx, otherCostsPath(itineraryID), []CostEntry{})
}

// RemoveDocument deletes the shared document tree when the itinerary is
// deleted. Invitations still sitting under invitee paths are left as
// reconcilable garbage.
func RemoveDocument(ctx context.Context, store docstore.Store, itineraryID string) error {
	base := "live_itineraries/" + itineraryID
	for _, container := range []string{base + "/collaborators", base + "/pendingInvites"} {
		children, err := store.List(ctx, container)
		if err != nil {
			return err
		}
		for name := range children {
			if err := store.Remove(ctx, container+"/"+name); err != nil {
				return err
			}
		}
	}
	for _, path := range []string{notesPath(itineraryID), placesPath(itineraryID), otherCostsPath(itineraryID)} {
		if err := store.Remove(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// Invite resolves the invitee by email and writes a pending invitation plus
// the itinerary's pending-invite marker. The invitation record is
// authoritative; the marker may dangle after a partial failure.
func (s *Service) Invite(ctx context.Context, itineraryID, inviterID, inviteeEmail string) (Invitation, error) {
	invitee, err := s.users.LookupByEmail(ctx, inviteeEmail)
	if err != nil {
		return Invitation{}, err
	}
	if invitee.ID == inviterID {
		return Invitation{}, ErrSelfInvite
	}
	if ok, err := s.store.Get(ctx, collaboratorPath(itineraryID, invitee.ID), nil); err != nil {
		return Invitation{}, err
	} else if ok {
		return Invitation{}, ErrAlreadyCollaborator
	}
	if ok, err := s.store.Get(ctx, pendingInvitePath(itineraryID, invitee.ID), nil); err != nil {
		return Invitation{}, err
	} else if ok {
		return Invitation{}, ErrDuplicateInvite
	}

	inviter, err := s.users.GetUser(ctx, inviterID)
	if err != nil {
		return Invitation{}, err
	}

	invite := Invitation{
		ID:          uuid.NewString(),
		ItineraryID: itineraryID,
		InviterID:   inviter.ID,
		InviterName: inviter.Name,
		InviteeID:   invitee.ID,
		Status:      InviteStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Put(ctx, invitationPath(invitee.ID, invite.ID), invite); err != nil {
		return Invitation{}, err
	}
	marker := PendingInvite{UserID: invitee.ID, InviteID: invite.ID, CreatedAt: invite.CreatedAt}
	if err := s.store.Put(ctx, pendingInvitePath(itineraryID, invitee.ID), marker); err != nil {
		log.Printf("collab: pending-invite marker write failed for invite %s: %v", invite.ID, err)
	}

	s.notifyItinerary(ctx, itineraryID)
	return invite, nil
}

// Accept adds the invitee to the collaborator set, then removes the
// invitation and its marker. Membership is never rolled back to pending.
func (s *Service) Accept(ctx context.Context, inviteeID, inviteID string) (Invitation, error) {
	var invite Invitation
	ok, err := s.store.Get(ctx, invitationPath(inviteeID, inviteID), &invite)
	if err != nil {
		return Invitation{}, err
	}
	if !ok {
		return Invitation{}, ErrInvitationNotFound
	}

	user, err := s.users.GetUser(ctx, inviteeID)
	if err != nil {
		return Invitation{}, err
	}
	collab := Collaborator{UserID: user.ID, Name: user.Name, Email: user.Email, AddedAt: time.Now().UTC()}
	if err := s.store.Put(ctx, collaboratorPath(invite.ItineraryID, inviteeID), collab); err != nil {
		return Invitation{}, err
	}

	if err := s.store.Remove(ctx, invitationPath(inviteeID, inviteID)); err != nil {
		log.Printf("collab: invitation cleanup failed for %s: %v", inviteID, err)
	}
	if err := s.store.Remove(ctx, pendingInvitePath(invite.ItineraryID, inviteeID)); err != nil {
		log.Printf("collab: marker cleanup failed for invite %s: %v", inviteID, err)
	}

	s.notifyItinerary(ctx, invite.ItineraryID)
	invite.Status = InviteStatusAccepted
	return invite, nil
}

// Decline removes the invitation and its marker without touching the
// collaborator set.
func (s *Service) Decline(ctx context.Context, inviteeID, inviteID string) (Invitation, error) {
	var invite Invitation
	ok, err := s.store.Get(ctx, invitationPath(inviteeID, inviteID), &invite)
	if err != nil {
		return Invitation{}, err
	}
	if !ok {
		return Invitation{}, ErrInvitationNotFound
	}

	if err := s.store.Remove(ctx, invitationPath(inviteeID, inviteID)); err != nil {
		return Invitation{}, err
	}
	if err := s.store.Remove(ctx, pendingInvitePath(invite.ItineraryID, inviteeID)); err != nil {
		log.Printf("collab: marker cleanup failed for invite %s: %v", inviteID, err)
	}

	s.notifyItinerary(ctx, invite.ItineraryID)
	invite.Status = InviteStatusDeclined
	return invite, nil
}

func (s *Service) ListInvitations(ctx context.Context, inviteeID string) ([]Invitation, error) {
	children, err := s.store.List(ctx, "invitations/invitee/"+inviteeID)
	if err != nil {
		return nil, err
	}
	list := make([]Invitation, 0, len(children))
	for _, raw := range children {
		var inv Invitation
		if err := json.Unmarshal(raw, &inv); err != nil {
			continue
		}
		list = append(list, inv)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *Service) Collaborators(ctx context.Context, itineraryID string) ([]Collaborator, error) {
	children, err := s.store.List(ctx, "live_itineraries/"+itineraryID+"/collaborators")
	if err != nil {
		return nil, err
	}
	list := make([]Collaborator, 0, len(children))
	for _, raw := range children {
		var c Collaborator
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AddedAt.Equal(list[j].AddedAt) {
			return list[i].AddedAt.Before(list[j].AddedAt)
		}
		return list[i].UserID < list[j].UserID
	})
	return list, nil
}

// MutateNotes overwrites the notes field, last write wins. Concurrent edits
// by two collaborators can drop one author's change.
func (s *Service) MutateNotes(ctx context.Context, itineraryID, callerID, newText string) error {
	if err := s.requireCollaborator(ctx, itineraryID, callerID); err != nil {
		return err
	}
	if err := s.store.Put(ctx, notesPath(itineraryID), newText); err != nil {
		return err
	}
	s.notifyItinerary(ctx, itineraryID)
	return nil
}

// AddPlace appends to the place list via read-modify-write, rejecting
// duplicates. Same lost-update exposure as notes.
func (s *Service) AddPlace(ctx context.Context, itineraryID, callerID, placeName string) ([]string, error) {
	if err := s.requireCollaborator(ctx, itineraryID, callerID); err != nil {
		return nil, err
	}

	var places []string
	if _, err := s.store.Get(ctx, placesPath(itineraryID), &places); err != nil {
		return nil, err
	}
	for _, p := range places {
		if p == placeName {
			return nil, ErrDuplicatePlace
		}
	}
	places = append(places, placeName)

	if err := s.store.Put(ctx, placesPath(itineraryID), places); err != nil {
		return nil, err
	}
	s.notifyItinerary(ctx, itineraryID)
	return places, nil
}

func (s *Service) RemovePlace(ctx context.Context, itineraryID, callerID, placeName string) ([]string, error) {
	if err := s.requireCollaborator(ctx, itineraryID, callerID); err != nil {
		return nil, err
	}

	var places []string
	if _, err := s.store.Get(ctx, placesPath(itineraryID), &places); err != nil {
		return nil, err
	}
	kept := places[:0]
	found := false
	for _, p := range places {
		if p == placeName {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return nil, ErrPlaceNotFound
	}

	if err := s.store.Put(ctx, placesPath(itineraryID), kept); err != nil {
		return nil, err
	}
	s.notifyItinerary(ctx, itineraryID)
	return kept, nil
}

func (s *Service) AddCost(ctx context.Context, itineraryID, callerID string, entry CostEntry) (CostEntry, error) {
	if err := s.requireCollaborator(ctx, itineraryID, callerID); err != nil {
		return CostEntry{}, err
	}

	entry.ID = uuid.NewString()
	var costs []CostEntry
	if _, err := s.store.Get(ctx, otherCostsPath(itineraryID), &costs); err != nil {
		return CostEntry{}, err
	}
	costs = append(costs, entry)

	if err := s.store.Put(ctx, otherCostsPath(itineraryID), costs); err != nil {
		return CostEntry{}, err
	}
	s.notifyItinerary(ctx, itineraryID)
	return entry, nil
}

func (s *Service) RemoveCost(ctx context.Context, itineraryID, callerID, costID string) error {
	if err := s.requireCollaborator(ctx, itineraryID, callerID); err != nil {
		return err
	}

	var costs []CostEntry
	if _, err := s.store.Get(ctx, otherCostsPath(itineraryID), &costs); err != nil {
		return err
	}
	kept := costs[:0]
	found := false
	for _, c := range costs {
		if c.ID == costID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrCostNotFound
	}

	if err := s.store.Put(ctx, otherCostsPath(itineraryID), kept); err != nil {
		return err
	}
	s.notifyItinerary(ctx, itineraryID)
	return nil
}

// ItineraryView aggregates the collaborator set and shared document. A
// partially written document (dangling markers, missing fields) renders as
// empty values rather than failing.
func (s *Service) ItineraryView(ctx context.Context, itineraryID string) (View, error) {
	view := View{ItineraryID: itineraryID, Places: []string{}, OtherCosts: []CostEntry{}}

	collaborators, err := s.Collaborators(ctx, itineraryID)
	if err != nil {
		return View{}, err
	}
	view.Collaborators = collaborators

	markers, err := s.store.List(ctx, "live_itineraries/"+itineraryID+"/pendingInvites")
	if err != nil {
		return View{}, err
	}
	for _, raw := range markers {
		var m PendingInvite
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		view.PendingInvites = append(view.PendingInvites, m)
	}
	sort.Slice(view.PendingInvites, func(i, j int) bool {
		return view.PendingInvites[i].UserID < view.PendingInvites[j].UserID
	})

	if _, err := s.store.Get(ctx, notesPath(itineraryID), &view.Notes); err != nil {
		return View{}, err
	}
	if _, err := s.store.Get(ctx, placesPath(itineraryID), &view.Places); err != nil {
		return View{}, err
	}
	if _, err := s.store.Get(ctx, otherCostsPath(itineraryID), &view.OtherCosts); err != nil {
		return View{}, err
	}
	return view, nil
}

// WatchItinerary emits a fresh aggregated view on every change under the
// itinerary's live tree, starting with the current one.
func (s *Service) WatchItinerary(ctx context.Context, itineraryID string) (<-chan View, func(), error) {
	sub, err := s.store.Subscribe(ctx, "live_itineraries/"+itineraryID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan View, 8)
	go func() {
		defer close(out)
		for range sub.C {
			view, err := s.ItineraryView(ctx, itineraryID)
			if err != nil {
				continue
			}
			select {
			case out <- view:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}

func (s *Service) requireCollaborator(ctx context.Context, itineraryID, callerID string) error {
	ok, err := s.store.Get(ctx, collaboratorPath(itineraryID, callerID), nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCollaborator
	}
	return nil
}

func (s *Service) notifyItinerary(ctx context.Context, itineraryID string) {
	if s.hub == nil {
		return
	}
	view, err := s.ItineraryView(ctx, itineraryID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	s.hub.Broadcast("itinerary:"+itineraryID, payload)
}
