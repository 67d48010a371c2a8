package itinerary

import (
	"context"
	"log"
	"time"

	"backend-tripmate/internal/collab"
	"backend-tripmate/internal/db"
	"backend-tripmate/internal/directory"
	"backend-tripmate/internal/docstore"

	"github.com/google/uuid"
)

type Service struct {
	db    db.Querier
	users *directory.Service
	store docstore.Store
}

func NewService(db db.Querier, users *directory.Service, store docstore.Store) *Service {
	return &Service{db: db, users: users, store: store}
}

// Create inserts the itinerary and seeds its empty shared document with the
// owner as first collaborator. The relational row is authoritative; a
// failed seed leaves the live document to be recreated on first edit rather
// than rolling back the row.
func (s *Service) Create(ctx context.Context, input Itinerary) (Itinerary, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO itineraries (id, name, destination, start_date, end_date, budget, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Name, input.Destination, timePtr(input.StartDate), timePtr(input.EndDate), input.Budget, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Itinerary{}, err
	}

	if s.store != nil {
		owner, err := s.users.GetUser(ctx, input.CreatedBy)
		if err != nil {
			log.Printf("itinerary: owner lookup failed for %s: %v", input.ID, err)
			return input, nil
		}
		if err := collab.SeedDocument(ctx, s.store, input.ID, owner); err != nil {
			log.Printf("itinerary: shared document seed failed for %s: %v", input.ID, err)
		}
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Itinerary, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, destination, start_date, end_date, budget, created_by, created_at
		FROM itineraries WHERE id=$1
	`, id)
	var it Itinerary
	var start, end *time.Time
	if err := row.Scan(&it.ID, &it.Name, &it.Destination, &start, &end, &it.Budget, &it.CreatedBy, &it.CreatedAt); err != nil {
		return Itinerary{}, err
	}
	setDates(&it, start, end)
	return it, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Itinerary) (Itinerary, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return Itinerary{}, err
	}
	if patch.Name != "" {
		it.Name = patch.Name
	}
	if patch.Destination != "" {
		it.Destination = patch.Destination
	}
	if !patch.StartDate.IsZero() {
		it.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		it.EndDate = patch.EndDate
	}
	if patch.Budget != 0 {
		it.Budget = patch.Budget
	}

	_, err = s.db.Exec(ctx, `
		UPDATE itineraries
		SET name=$2, destination=$3, start_date=$4, end_date=$5, budget=$6
		WHERE id=$1
	`, it.ID, it.Name, it.Destination, timePtr(it.StartDate), timePtr(it.EndDate), it.Budget)
	if err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

// Delete removes the itinerary row and its shared document tree.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM itineraries WHERE id=$1`, id); err != nil {
		return err
	}
	if s.store != nil {
		if err := collab.RemoveDocument(ctx, s.store, id); err != nil {
			log.Printf("itinerary: shared document removal failed for %s: %v", id, err)
		}
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Itinerary, error) {
	return s.list(ctx, `
		SELECT id, name, destination, start_date, end_date, budget, created_by, created_at
		FROM itineraries WHERE created_by=$1
		ORDER BY created_at DESC
	`, userID)
}

func (s *Service) Recent(ctx context.Context, userID string) ([]Itinerary, error) {
	return s.list(ctx, `
		SELECT id, name, destination, start_date, end_date, budget, created_by, created_at
		FROM itineraries WHERE created_by=$1
		ORDER BY created_at DESC
		LIMIT 5
	`, userID)
}

func (s *Service) list(ctx context.Context, query, userID string) ([]Itinerary, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Itinerary
	for rows.Next() {
		var it Itinerary
		var start, end *time.Time
		if err := rows.Scan(&it.ID, &it.Name, &it.Destination, &start, &end, &it.Budget, &it.CreatedBy, &it.CreatedAt); err != nil {
			return nil, err
		}
		setDates(&it, start, end)
		list = append(list, it)
	}
	return list, nil
}

func setDates(it *Itinerary, start, end *time.Time) {
	if start != nil {
		it.StartDate = *start
	}
	if end != nil {
		it.EndDate = *end
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
