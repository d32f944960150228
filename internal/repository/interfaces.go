package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
)

// Sentinel errors surfaced by the assignment and lookup paths. Services map
// them onto the API error taxonomy.
var (
	ErrBedNotFound    = errors.New("bed not found")
	ErrBedUnavailable = errors.New("bed unavailable")
	ErrMemberNotFound = errors.New("member not found")
	ErrUserNotFound   = errors.New("user not found")
)

type BedRepository interface {
	Create(ctx context.Context, bed *model.Bed) error
	Get(ctx context.Context, id uuid.UUID) (*model.Bed, error)
	Update(ctx context.Context, bed *model.Bed) error
	// Delete removes the bed and, in the same transaction, severs the
	// occupant's bed reference if one exists.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.BedFilters, page *model.Pagination) ([]*model.BedRow, int, error)
	Statistics(ctx context.Context) (*model.BedStatistics, error)

	// Assign links member and bed in one transaction, releasing any bed the
	// member currently holds. Row locks are taken beds-first, in ascending
	// bed id order, then the member row; concurrent assigns to the same bed
	// serialize and the loser sees ErrBedUnavailable.
	Assign(ctx context.Context, memberID, bedID uuid.UUID) error
	// Unassign clears both sides of the link. A bed without an occupant is
	// a no-op success.
	Unassign(ctx context.Context, bedID uuid.UUID) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	Get(ctx context.Context, id uuid.UUID) (*model.MemberRow, error)
	Update(ctx context.Context, member *model.Member) error
	// UpdateHealth writes only the provided fields; nil pointers keep the
	// stored values.
	UpdateHealth(ctx context.Context, id uuid.UUID, worker, healthStatus, healthDetail *string) error
	// Delete removes the member and, in the same transaction, releases the
	// bed they occupy if any.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.MemberFilters, page *model.Pagination) ([]*model.MemberRow, int, error)

	// BedOccupant reports who a bed currently hosts. Used by the read-path
	// consistency repair.
	BedOccupant(ctx context.Context, bedID uuid.UUID) (*uuid.UUID, error)
	// ClearBedAssignment is the repair write-back for a stale bed reference.
	ClearBedAssignment(ctx context.Context, memberID uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type APILogRepository interface {
	Create(ctx context.Context, entry *model.APILog) error
}
