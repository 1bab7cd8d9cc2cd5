package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestMaxSuffixBindsIntegerStartPosition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSadtRepository(db)

	// substr pins the integer overload for the start position; the digit
	// extraction must begin right after the prefix, not at a regex match
	// inside it.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(CAST(substr(sadt_number, $2) AS INTEGER)), 0)`)).
		WithArgs("LAB26", 6).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

	max, err := repo.MaxSuffix(context.Background(), "LAB26")
	require.NoError(t, err)
	assert.Equal(t, 41, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusGuardsStoredStatus(t *testing.T) {
	ctx := context.Background()
	updateQuery := regexp.QuoteMeta(
		`UPDATE sadt_documents SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
	)

	t.Run("applies when the stored status matches", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSadtRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(updateQuery).
			WithArgs(model.SadtStatusCancelled, sqlmock.AnyArg(), id, model.SadtStatusIssued).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SetStatus(ctx, id, model.SadtStatusIssued, model.SadtStatusCancelled, nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports the stored status when the guard misses", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSadtRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(updateQuery).
			WithArgs(model.SadtStatusPerformed, sqlmock.AnyArg(), id, model.SadtStatusIssued).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sadt_documents WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))
		mock.ExpectRollback()

		err := repo.SetStatus(ctx, id, model.SadtStatusIssued, model.SadtStatusPerformed, nil)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing document", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSadtRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(updateQuery).
			WithArgs(model.SadtStatusCancelled, sqlmock.AnyArg(), id, model.SadtStatusIssued).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sadt_documents WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		err := repo.SetStatus(ctx, id, model.SadtStatusIssued, model.SadtStatusCancelled, nil)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
