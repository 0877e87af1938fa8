// Package repo contains all database access logic for the trip planner API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mcardoso/planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. (pgx.Tx implements Begin as a
// savepoint, so Create's inner transaction still works inside a test tx.)
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo defines the persistence operations for Trips and their participants.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip together with its owner participant (already
	// confirmed) and one unconfirmed participant per invitee email, in a single
	// transaction. A trip must never be observable without its participants.
	// Returns the persisted trip with all participants in insertion order.
	Create(ctx context.Context, trip domain.Trip, owner domain.Participant, inviteeEmails []string) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key, including all
	// participants in insertion order (owner first).
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Confirm atomically flips is_confirmed from false to true.
	// The returned bool reports whether this call was the one that transitioned
	// the trip — a concurrent or repeated call observes true and gets false back.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Confirm(ctx context.Context, id uuid.UUID) (bool, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts the trip row and every participant row in one transaction.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip, owner domain.Participant, inviteeEmails []string) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: begin: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback(ctx)

	const insertTrip = `
		INSERT INTO trips (destination, starts_at, ends_at)
		VALUES (@destination, @starts_at, @ends_at)
		RETURNING id, destination, starts_at, ends_at, is_confirmed, created_at, updated_at`

	row := tx.QueryRow(ctx, insertTrip, pgx.NamedArgs{
		"destination": trip.Destination,
		"starts_at":   trip.StartsAt,
		"ends_at":     trip.EndsAt,
	})
	created, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: insert trip: %w", err)
	}

	const insertParticipant = `
		INSERT INTO participants (trip_id, name, email, is_owner, is_confirmed, position)
		VALUES (@trip_id, @name, @email, @is_owner, @is_confirmed, @position)
		RETURNING id, trip_id, name, email, is_owner, is_confirmed, created_at, updated_at`

	// The owner is position 0 and is created already confirmed.
	ownerRow := tx.QueryRow(ctx, insertParticipant, pgx.NamedArgs{
		"trip_id":      created.ID,
		"name":         owner.Name,
		"email":        owner.Email,
		"is_owner":     true,
		"is_confirmed": true,
		"position":     0,
	})
	persistedOwner, err := scanParticipant(ownerRow)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: insert owner: %w", err)
	}
	created.Participants = append(created.Participants, persistedOwner)

	for i, email := range inviteeEmails {
		inviteeRow := tx.QueryRow(ctx, insertParticipant, pgx.NamedArgs{
			"trip_id":      created.ID,
			"name":         "",
			"email":        email,
			"is_owner":     false,
			"is_confirmed": false,
			"position":     i + 1,
		})
		invitee, err := scanParticipant(inviteeRow)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: insert invitee: %w", err)
		}
		created.Participants = append(created.Participants, invitee)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves a trip and its participants by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT id, destination, starts_at, ends_at, is_confirmed, created_at, updated_at
		FROM trips
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	trip, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}

	const participantsQ = `
		SELECT id, trip_id, name, email, is_owner, is_confirmed, created_at, updated_at
		FROM participants
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := r.db.Query(ctx, participantsQ, pgx.NamedArgs{"trip_id": id})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: scan participant: %w", err)
		}
		trip.Participants = append(trip.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: rows: %w", err)
	}

	return trip, nil
}

// Confirm is the compare-and-set on trips.is_confirmed.
// The WHERE clause makes the read-modify-write atomic: under concurrent calls
// only one UPDATE matches a row, so only one caller gets transitioned=true.
func (r *pgTripRepo) Confirm(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `
		UPDATE trips
		SET is_confirmed = true, updated_at = now()
		WHERE id = @id AND NOT is_confirmed`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Confirm: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Zero rows updated: either the trip is already confirmed (idempotent
	// path) or it does not exist at all. Disambiguate with an existence read.
	exists, err := r.exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Confirm: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("repo.TripRepo.Confirm: %w", domain.ErrNotFound)
	}
	return false, nil
}

func (r *pgTripRepo) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`
	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip (without participants).
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID
	)

	err := s.Scan(&id, &t.Destination, &t.StartsAt, &t.EndsAt, &t.IsConfirmed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}

// scanParticipant maps a single database row into a domain.Participant.
func scanParticipant(s scanner) (domain.Participant, error) {
	var (
		p      domain.Participant
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &p.Name, &p.Email, &p.IsOwner, &p.IsConfirmed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, domain.ErrNotFound
		}
		return domain.Participant{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	return p, nil
}
