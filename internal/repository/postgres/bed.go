package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

type bedRepository struct {
	BaseRepository
}

func NewBedRepository(db *sqlx.DB) repository.BedRepository {
	return &bedRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *bedRepository) Create(ctx context.Context, bed *model.Bed) error {
	query := `
		INSERT INTO beds (id, bed_number, building, floor, room_number, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	bed.CreatedAt = time.Now()
	bed.UpdatedAt = bed.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		bed.ID,
		bed.BedNumber,
		bed.Building,
		bed.Floor,
		bed.RoomNumber,
		bed.Status,
		bed.Description,
		bed.CreatedAt,
		bed.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bed: %w", err)
	}
	return nil
}

func (r *bedRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bed, error) {
	var bed model.Bed
	err := r.db.GetContext(ctx, &bed, `SELECT * FROM beds WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bed: %w", err)
	}
	return &bed, nil
}

func (r *bedRepository) Update(ctx context.Context, bed *model.Bed) error {
	query := `
		UPDATE beds
		SET bed_number = $1, building = $2, floor = $3, room_number = $4,
		    status = $5, description = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		bed.BedNumber,
		bed.Building,
		bed.Floor,
		bed.RoomNumber,
		bed.Status,
		bed.Description,
		time.Now(),
		bed.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrBedNotFound
	}
	return nil
}

// Delete removes a bed, clearing the occupant's bed reference in the same
// transaction so no member is left pointing at a vanished bed.
func (r *bedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var occupant uuid.NullUUID
		err := tx.GetContext(ctx, &occupant,
			`SELECT current_member_id FROM beds WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrBedNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock bed: %w", err)
		}

		if occupant.Valid {
			if _, err := tx.ExecContext(ctx,
				`UPDATE members SET bed_id = NULL, updated_at = $1 WHERE id = $2`,
				time.Now(), occupant.UUID); err != nil {
				return fmt.Errorf("failed to clear member assignment: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM beds WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete bed: %w", err)
		}
		return nil
	})
}

func (r *bedRepository) List(ctx context.Context, filters *model.BedFilters, page *model.Pagination) ([]*model.BedRow, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	add := func(clause, value string) {
		if value != "" {
			args = append(args, value)
			where = append(where, fmt.Sprintf(clause, len(args)))
		}
	}
	add("b.building = $%d", filters.Building)
	add("b.floor = $%d", filters.Floor)
	add("b.room_number = $%d", filters.RoomNumber)
	add("b.status = $%d", filters.Status)

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM beds b WHERE " + cond
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count beds: %w", err)
	}

	query := `
		SELECT b.*, m.name AS member_name, m.gender AS member_gender,
		       m.age AS member_age, m.care_level AS member_care_level
		FROM beds b
		LEFT JOIN members m ON b.current_member_id = m.id
		WHERE ` + cond + `
		ORDER BY b.building, b.floor, b.room_number, b.bed_number`

	if !page.IncludeDetails {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.Limit, page.Offset())
	}

	var beds []*model.BedRow
	if err := r.db.SelectContext(ctx, &beds, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list beds: %w", err)
	}
	return beds, total, nil
}

func (r *bedRepository) Statistics(ctx context.Context) (*model.BedStatistics, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'occupied') AS occupied,
			COUNT(*) FILTER (WHERE status = 'available') AS available,
			COUNT(*) FILTER (WHERE status = 'maintenance') AS maintenance
		FROM beds
	`
	var stats model.BedStatistics
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get bed statistics: %w", err)
	}

	// Rate is defined as 0 for an empty facility.
	if stats.Total > 0 {
		rate := float64(stats.Occupied) / float64(stats.Total) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}
	return &stats, nil
}

// Assign links a member to a bed. Every write path takes row locks beds
// first, in ascending bed id order, then the member row; with one shared
// order, concurrent assign, unassign and delete traffic cannot deadlock.
func (r *bedRepository) Assign(ctx context.Context, memberID, bedID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Unlocked read of the member's current bed so every bed lock can be
		// taken before the member lock. The occupant checks below keep a
		// stale read harmless.
		var preRead uuid.NullUUID
		err := tx.GetContext(ctx, &preRead,
			`SELECT bed_id FROM members WHERE id = $1`, memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read member: %w", err)
		}

		lockOrder := []uuid.UUID{bedID}
		if preRead.Valid && preRead.UUID != bedID {
			if preRead.UUID.String() < bedID.String() {
				lockOrder = []uuid.UUID{preRead.UUID, bedID}
			} else {
				lockOrder = append(lockOrder, preRead.UUID)
			}
		}

		type bedState struct {
			Status          string        `db:"status"`
			CurrentMemberID uuid.NullUUID `db:"current_member_id"`
		}
		states := make(map[uuid.UUID]*bedState, len(lockOrder))
		for _, id := range lockOrder {
			var st bedState
			err := tx.GetContext(ctx, &st,
				`SELECT status, current_member_id FROM beds WHERE id = $1 FOR UPDATE`, id)
			if errors.Is(err, sql.ErrNoRows) {
				if id == bedID {
					return repository.ErrBedNotFound
				}
				continue // old bed vanished, nothing to release
			}
			if err != nil {
				return fmt.Errorf("failed to lock bed: %w", err)
			}
			states[id] = &st
		}
		if states[bedID].Status != model.BedStatusAvailable {
			return repository.ErrBedUnavailable
		}

		var currentBed uuid.NullUUID
		err = tx.GetContext(ctx, &currentBed,
			`SELECT bed_id FROM members WHERE id = $1 FOR UPDATE`, memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock member: %w", err)
		}
		// The member moved to a bed we did not lock between the unlocked read
		// and the member lock. Give up rather than leave that bed pointing at
		// a member who moved on.
		if currentBed.Valid && (!preRead.Valid || currentBed.UUID != preRead.UUID) {
			return repository.ErrBedUnavailable
		}

		// A member moving beds releases the old one. The occupant check
		// guards against a stale reference: only release a bed that actually
		// points back at this member.
		if preRead.Valid && preRead.UUID != bedID {
			if old, ok := states[preRead.UUID]; ok &&
				old.CurrentMemberID.Valid && old.CurrentMemberID.UUID == memberID {
				if _, err := tx.ExecContext(ctx,
					`UPDATE beds SET status = $1, current_member_id = NULL, updated_at = $2 WHERE id = $3`,
					model.BedStatusAvailable, time.Now(), preRead.UUID); err != nil {
					return fmt.Errorf("failed to release current bed: %w", err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE beds SET status = $1, current_member_id = $2, updated_at = $3 WHERE id = $4`,
			model.BedStatusOccupied, memberID, time.Now(), bedID); err != nil {
			return fmt.Errorf("failed to occupy bed: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE members SET bed_id = $1, updated_at = $2 WHERE id = $3`,
			bedID, time.Now(), memberID); err != nil {
			return fmt.Errorf("failed to set member bed: %w", err)
		}
		return nil
	})
}

// Unassign clears both sides of the bed link. Calling it on a free bed is a
// successful no-op, so retries are safe.
func (r *bedRepository) Unassign(ctx context.Context, bedID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var occupant uuid.NullUUID
		err := tx.GetContext(ctx, &occupant,
			`SELECT current_member_id FROM beds WHERE id = $1 FOR UPDATE`, bedID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrBedNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock bed: %w", err)
		}

		if !occupant.Valid {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE beds SET status = $1, current_member_id = NULL, updated_at = $2 WHERE id = $3`,
			model.BedStatusAvailable, time.Now(), bedID); err != nil {
			return fmt.Errorf("failed to release bed: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE members SET bed_id = NULL, updated_at = $1 WHERE id = $2`,
			time.Now(), occupant.UUID); err != nil {
			return fmt.Errorf("failed to clear member assignment: %w", err)
		}
		return nil
	})
}
