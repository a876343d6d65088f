package registration

import (
	"context"

	"hampuff/pkg/domainerrors"
)

// ErrNotFound keeps store-level misses consistent across the in-memory and
// Postgres implementations.
var ErrNotFound = domainerrors.New(domainerrors.CodeNotRegistered, "phone number is not registered")

// Store is interface-driven so the service stays testable and the in-memory
// and Postgres implementations are interchangeable. Implementations must
// serialize mutations per canonical phone number; operations on distinct
// numbers may proceed fully in parallel.
type Store interface {
	// Upsert creates the record or, when the canonical number already
	// exists, overwrites its mutable fields while preserving ID and
	// CreatedAt. The returned flag is true when a new record was created.
	Upsert(ctx context.Context, rec Record) (Record, bool, error)

	// FindByCanonical looks a record up by its canonical phone number.
	FindByCanonical(ctx context.Context, canonical string) (Record, error)

	// SetOptIn flips the opt-in flag and bumps UpdatedAt. Returns
	// ErrNotFound when no record exists for the canonical number.
	SetOptIn(ctx context.Context, canonical string, optedIn bool) (Record, error)

	// List returns all records, newest registration first.
	List(ctx context.Context) ([]Record, error)
}
