package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmic-hub/enroll-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func classRows(enrolled, available int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "instructor_email", "price", "status", "enrolled", "available_seats", "feedback", "created_at", "updated_at",
	}).AddRow("class-1", "Drum Basics", "teach@example.com", int64(5000), "approved", enrolled, available, nil, time.Now(), time.Now())
}

func TestReserveSeatIssuesConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassRepository(db)

	mock.ExpectQuery(`UPDATE classes\s+SET enrolled = enrolled \+ 1, available_seats = available_seats - 1, updated_at = \$2\s+WHERE id = \$1 AND available_seats > 0\s+RETURNING`).
		WithArgs("class-1", sqlmock.AnyArg()).
		WillReturnRows(classRows(1, 4))

	class, err := repo.ReserveSeat(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, 1, class.Enrolled)
	assert.Equal(t, 4, class.AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSeatNoMatchReportsNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassRepository(db)

	mock.ExpectQuery(`UPDATE classes`).
		WithArgs("class-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ReserveSeat(context.Background(), "class-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusMissingClass(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassRepository(db)

	mock.ExpectExec(`UPDATE classes SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("class-404", models.ClassStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "class-404", models.ClassStatusApproved)
	assert.True(t, errors.Is(err, ErrNoRowsAffected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassRepository(db)

	mock.ExpectExec(`INSERT INTO classes`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{Name: "Bass 101", InstructorEmail: "teach@example.com", AvailableSeats: 8}
	err := repo.Create(context.Background(), class)
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.Equal(t, models.ClassStatusPending, class.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiltersByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassRepository(db)

	mock.ExpectQuery(`SELECT id, name, instructor_email, .+ FROM classes WHERE status = \$1 ORDER BY created_at DESC`).
		WithArgs("approved").
		WillReturnRows(classRows(0, 5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM classes WHERE status = \$1`).
		WithArgs("approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Status: models.ClassStatusApproved})
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
