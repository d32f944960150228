package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestBedAssign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(model.BedStatusOccupied, memberID, sqlmock.AnyArg(), bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(bedID, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Assign(context.Background(), memberID, bedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()
	occupant := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusOccupied, occupant.String()))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), memberID, bedID)
	assert.ErrorIs(t, err, repository.ErrBedUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignBedNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), memberID, bedID)
	assert.ErrorIs(t, err, repository.ErrBedNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignMemberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), memberID, bedID)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignReleasesOldBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	// Fixed ids pin the ascending lock order: old bed locks before new bed.
	oldBedID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	newBedID := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(oldBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusOccupied, memberID.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(newBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = NULL, updated_at = \$2 WHERE id = \$3`).
		WithArgs(model.BedStatusAvailable, sqlmock.AnyArg(), oldBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(model.BedStatusOccupied, memberID, sqlmock.AnyArg(), newBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(newBedID, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Assign(context.Background(), memberID, newBedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignLocksLowerBedFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	// Reversed roles: the new bed's id sorts below the old one.
	newBedID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	oldBedID := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(newBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(oldBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusOccupied, memberID.String()))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = NULL, updated_at = \$2 WHERE id = \$3`).
		WithArgs(model.BedStatusAvailable, sqlmock.AnyArg(), oldBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(model.BedStatusOccupied, memberID, sqlmock.AnyArg(), newBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(newBedID, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Assign(context.Background(), memberID, newBedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignSkipsStaleOldBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	other := uuid.New()
	oldBedID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	newBedID := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	// Old bed belongs to someone else: no release happens.
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(oldBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusOccupied, other.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(newBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(model.BedStatusOccupied, memberID, sqlmock.AnyArg(), newBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(newBedID, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Assign(context.Background(), memberID, newBedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignToleratesVanishedOldBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	oldBedID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	newBedID := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(oldBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(newBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(model.BedStatusOccupied, memberID, sqlmock.AnyArg(), newBedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(newBedID, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Assign(context.Background(), memberID, newBedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedAssignBailsWhenMemberMoves(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	memberID := uuid.New()
	thirdBedID := uuid.New()
	oldBedID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	newBedID := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(oldBedID.String()))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(oldBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	mock.ExpectQuery(`SELECT status, current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(newBedID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "current_member_id"}).
			AddRow(model.BedStatusAvailable, nil))
	// By the time the member row is locked they occupy a bed this
	// transaction never locked, so the assign gives up.
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(thirdBedID.String()))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), memberID, newBedID)
	assert.ErrorIs(t, err, repository.ErrBedUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedUnassign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	bedID := uuid.New()
	occupant := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(occupant.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = NULL, updated_at = \$2 WHERE id = \$3`).
		WithArgs(model.BedStatusAvailable, sqlmock.AnyArg(), bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE members SET bed_id = NULL, updated_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), occupant).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Unassign(context.Background(), bedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedUnassignEmptyBedIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	bedID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(nil))
	mock.ExpectCommit()

	err := repo.Unassign(context.Background(), bedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedDeleteClearsOccupant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	bedID := uuid.New()
	occupant := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(occupant.String()))
	mock.ExpectExec(`UPDATE members SET bed_id = NULL, updated_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), occupant).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM beds WHERE id = \$1`).
		WithArgs(bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), bedID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	bed := &model.Bed{
		Base:      model.Base{ID: uuid.New()},
		BedNumber: "101-1",
		Building:  "A",
		Floor:     "1",
		Status:    model.BedStatusAvailable,
	}

	mock.ExpectExec(`UPDATE beds`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), bed)
	assert.ErrorIs(t, err, repository.ErrBedNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedStatistics(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "occupied", "available", "maintenance"}).
			AddRow(30, 10, 18, 2))

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Total)
	assert.Equal(t, 10, stats.Occupied)
	assert.InDelta(t, 33.33, stats.OccupancyRate, 0.001)
}

func TestBedStatisticsEmptyFacility(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "occupied", "available", "maintenance"}).
			AddRow(0, 0, 0, 0))

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.OccupancyRate)
}

func TestBedList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBedRepository(db)

	page := &model.Pagination{Page: 1, Limit: 10}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM beds b WHERE 1=1 AND b\.status = \$1`).
		WithArgs(model.BedStatusAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT b\.\*, m\.name AS member_name`).
		WithArgs(model.BedStatusAvailable, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bed_number", "building", "floor", "room_number",
			"status", "description", "current_member_id", "created_at", "updated_at",
			"member_name", "member_gender", "member_age", "member_care_level",
		}).AddRow(
			uuid.New().String(), "101-1", "A", "1", "101",
			model.BedStatusAvailable, "", nil, time.Now(), time.Now(),
			nil, nil, nil, nil,
		))

	_, _, err := repo.List(context.Background(), &model.BedFilters{Status: model.BedStatusAvailable}, page)
	require.NoError(t, err)
}
