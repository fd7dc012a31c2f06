package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpecimenMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSpecimenRepositoryDecrement(t *testing.T) {
	db, mock, cleanup := newSpecimenMock(t)
	defer cleanup()
	repo := NewSpecimenRepository(db)

	mock.ExpectExec("UPDATE specimen_allocations SET remaining = remaining -").
		WithArgs("sp-math-7", "s1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Decrement(context.Background(), "sp-math-7", "s1", 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecimenRepositoryDecrementExhausted(t *testing.T) {
	db, mock, cleanup := newSpecimenMock(t)
	defer cleanup()
	repo := NewSpecimenRepository(db)

	// guard clause matches no row when remaining < quantity
	mock.ExpectExec("UPDATE specimen_allocations SET remaining = remaining -").
		WithArgs("sp-math-7", "s1", 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Decrement(context.Background(), "sp-math-7", "s1", 99)
	require.ErrorIs(t, err, ErrAllocationExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecimenRepositoryCredit(t *testing.T) {
	db, mock, cleanup := newSpecimenMock(t)
	defer cleanup()
	repo := NewSpecimenRepository(db)

	mock.ExpectExec("UPDATE specimen_allocations SET remaining = remaining \\+").
		WithArgs("sp-math-7", "s1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Credit(context.Background(), "sp-math-7", "s1", 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecimenRepositoryListAllocations(t *testing.T) {
	db, mock, cleanup := newSpecimenMock(t)
	defer cleanup()
	repo := NewSpecimenRepository(db)

	rows := sqlmock.NewRows([]string{"id", "subject", "class", "title", "mrp", "remaining"}).
		AddRow("sp-math-7", "Mathematics", "7", "Maths Harmony 7", int64(20000), 5).
		AddRow("sp-eng-5", "English", "5", "English Reader 5", int64(14500), 2)
	mock.ExpectQuery("SELECT s.id, s.subject, s.class, s.title, s.mrp, a.remaining").
		WithArgs("s1").
		WillReturnRows(rows)

	details, err := repo.ListAllocations(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "sp-math-7", details[0].ID)
	assert.Equal(t, 5, details[0].Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}
