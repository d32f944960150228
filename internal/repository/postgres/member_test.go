package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

func TestMemberDeleteReleasesBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(bedID.String()))
	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(memberID.String()))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(bedID.String()))
	mock.ExpectExec(`UPDATE beds SET status = \$1, current_member_id = NULL, updated_at = \$2 WHERE id = \$3`).
		WithArgs(model.BedStatusAvailable, sqlmock.AnyArg(), bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), memberID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberDeleteSkipsStaleBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()
	bedID := uuid.New()
	other := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(bedID.String()))
	// Bed points at someone else: deleting the member must not free it.
	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1 FOR UPDATE`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(other.String()))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(bedID.String()))
	mock.ExpectExec(`DELETE FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), memberID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberDeleteWithoutBed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1 FOR UPDATE`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow(nil))
	mock.ExpectExec(`DELETE FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), memberID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM members WHERE id = \$1`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), memberID)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberUpdateHealthPartial(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()
	status := `[{"id":"hc-1","name":"高血压","severity":"moderate"}]`

	mock.ExpectExec(`UPDATE members SET health_status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(status, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateHealth(context.Background(), memberID, nil, &status, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberUpdateHealthAllFieldsNilIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	err := repo.UpdateHealth(context.Background(), uuid.New(), nil, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberUpdateHealthNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	worker := "王护工"
	mock.ExpectExec(`UPDATE members SET responsibility_worker = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(worker, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateHealth(context.Background(), uuid.New(), &worker, nil, nil)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
}

func TestMemberBedOccupant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	bedID := uuid.New()
	occupant := uuid.New()

	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(occupant.String()))

	got, err := repo.BedOccupant(context.Background(), bedID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, occupant, *got)
}

func TestMemberBedOccupantEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	bedID := uuid.New()

	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1`).
		WithArgs(bedID).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}).AddRow(nil))

	got, err := repo.BedOccupant(context.Background(), bedID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemberBedOccupantBedGone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectQuery(`SELECT current_member_id FROM beds WHERE id = \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"current_member_id"}))

	_, err := repo.BedOccupant(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrBedNotFound)
}

func TestMemberClearBedAssignment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	memberID := uuid.New()

	mock.ExpectExec(`UPDATE members SET bed_id = NULL, updated_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ClearBedAssignment(context.Background(), memberID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberListUnassignedFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	page := &model.Pagination{Page: 1, Limit: 10}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members m WHERE 1=1 AND m\.bed_id IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT m\.\*, b\.bed_number, b\.building, b\.floor, b\.room_number`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	rows, total, err := repo.List(context.Background(), &model.MemberFilters{Unassigned: true}, page)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}
