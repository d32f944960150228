package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

type memberRepository struct {
	BaseRepository
}

func NewMemberRepository(db *sqlx.DB) repository.MemberRepository {
	return &memberRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (
			id, name, gender, age, id_card, phone,
			emergency_contact, emergency_phone, care_level, status,
			responsibility_worker, health_status, health_detail,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Gender,
		member.Age,
		member.IDCard,
		member.Phone,
		member.EmergencyContact,
		member.EmergencyPhone,
		member.CareLevel,
		member.Status,
		member.ResponsibilityWorker,
		member.HealthStatus,
		member.HealthDetail,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *memberRepository) Get(ctx context.Context, id uuid.UUID) (*model.MemberRow, error) {
	query := `
		SELECT m.*, b.bed_number, b.building, b.floor, b.room_number
		FROM members m
		LEFT JOIN beds b ON m.bed_id = b.id
		WHERE m.id = $1
	`
	var row model.MemberRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &row, nil
}

func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	query := `
		UPDATE members
		SET name = $1, gender = $2, age = $3, id_card = $4, phone = $5,
		    emergency_contact = $6, emergency_phone = $7, care_level = $8,
		    status = $9, responsibility_worker = $10, health_status = $11,
		    health_detail = $12, updated_at = $13
		WHERE id = $14
	`
	res, err := r.db.ExecContext(ctx, query,
		member.Name,
		member.Gender,
		member.Age,
		member.IDCard,
		member.Phone,
		member.EmergencyContact,
		member.EmergencyPhone,
		member.CareLevel,
		member.Status,
		member.ResponsibilityWorker,
		member.HealthStatus,
		member.HealthDetail,
		time.Now(),
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrMemberNotFound
	}
	return nil
}

func (r *memberRepository) UpdateHealth(ctx context.Context, id uuid.UUID, worker, healthStatus, healthDetail *string) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("responsibility_worker", worker)
	add("health_status", healthStatus)
	add("health_detail", healthDetail)
	if len(sets) == 0 {
		return nil
	}

	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE members SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update member health: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrMemberNotFound
	}
	return nil
}

// Delete removes a member, releasing their bed in the same transaction so no
// bed is left occupied by a vanished member. Locks follow the shared
// beds-before-members order of the write paths; the bed id comes from an
// unlocked read, and the occupant check keeps a stale read harmless.
func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var preRead uuid.NullUUID
		err := tx.GetContext(ctx, &preRead,
			`SELECT bed_id FROM members WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read member: %w", err)
		}

		var occupant uuid.NullUUID
		haveBed := false
		if preRead.Valid {
			err := tx.GetContext(ctx, &occupant,
				`SELECT current_member_id FROM beds WHERE id = $1 FOR UPDATE`, preRead.UUID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to lock bed: %w", err)
			}
			haveBed = err == nil
		}

		var bedID uuid.NullUUID
		err = tx.GetContext(ctx, &bedID,
			`SELECT bed_id FROM members WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock member: %w", err)
		}

		if haveBed && occupant.Valid && occupant.UUID == id {
			if _, err := tx.ExecContext(ctx,
				`UPDATE beds SET status = $1, current_member_id = NULL, updated_at = $2 WHERE id = $3`,
				model.BedStatusAvailable, time.Now(), preRead.UUID); err != nil {
				return fmt.Errorf("failed to release bed: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		return nil
	})
}

func (r *memberRepository) List(ctx context.Context, filters *model.MemberFilters, page *model.Pagination) ([]*model.MemberRow, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		where = append(where, fmt.Sprintf("m.name ILIKE $%d", len(args)))
	}
	add := func(clause, value string) {
		if value != "" {
			args = append(args, value)
			where = append(where, fmt.Sprintf(clause, len(args)))
		}
	}
	add("m.gender = $%d", filters.Gender)
	add("m.care_level = $%d", filters.CareLevel)
	add("m.status = $%d", filters.Status)
	if filters.Unassigned {
		where = append(where, "m.bed_id IS NULL")
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM members m WHERE " + cond
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	query := `
		SELECT m.*, b.bed_number, b.building, b.floor, b.room_number
		FROM members m
		LEFT JOIN beds b ON m.bed_id = b.id
		WHERE ` + cond + `
		ORDER BY m.created_at, m.id`

	if !page.IncludeDetails {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.Limit, page.Offset())
	}

	var members []*model.MemberRow
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

func (r *memberRepository) BedOccupant(ctx context.Context, bedID uuid.UUID) (*uuid.UUID, error) {
	var occupant uuid.NullUUID
	err := r.db.GetContext(ctx, &occupant,
		`SELECT current_member_id FROM beds WHERE id = $1`, bedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bed occupant: %w", err)
	}
	if !occupant.Valid {
		return nil, nil
	}
	return &occupant.UUID, nil
}

func (r *memberRepository) ClearBedAssignment(ctx context.Context, memberID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE members SET bed_id = NULL, updated_at = $1 WHERE id = $2`,
		time.Now(), memberID)
	if err != nil {
		return fmt.Errorf("failed to clear bed assignment: %w", err)
	}
	return nil
}
