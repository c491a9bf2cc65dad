package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/catalog-api/internal/models"
)

// Helper function to create a mock DB and GormStore for testing
func newMockStore(t *testing.T) (sqlmock.Sqlmock, *GormStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open gorm on sqlmock")

	return mock, NewGormStore(gdb)
}

func TestGormStore_GetCategoryBySlug_NotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}))

	category, err := store.GetCategoryBySlug(context.Background(), "missing")

	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LockProduct(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT .*id.* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT .*id.* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := store.LockProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.LockProduct(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_RecomputeProductRating_SingleStatement(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`UPDATE "products" SET "rating"=.*SELECT COALESCE\(AVG\(grade\), 0\) FROM "ratings" WHERE product_id = \$\d+ AND is_active = \$\d+.* WHERE id = \$\d+ RETURNING "rating"`).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(3.0))

	rating, err := store.RecomputeProductRating(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 3.0, rating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_RecomputeProductRating_MissingProduct(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`UPDATE "products" SET "rating"=`).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}))

	_, err := store.RecomputeProductRating(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CreateRating_ForeignKeyViolation(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "ratings"`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update on table \"ratings\" violates foreign key constraint"})

	err := store.CreateRating(context.Background(), &models.Rating{Grade: 4, UserID: 1, ProductID: 404, IsActive: true})

	assert.ErrorIs(t, err, ErrForeignKeyViolation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeactivateRating(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`UPDATE "ratings" SET "is_active"=\$1 WHERE id = \$2`).
		WithArgs(false, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ratings" SET "is_active"=\$1 WHERE id = \$2`).
		WithArgs(false, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeactivateRating(context.Background(), 3))
	assert.ErrorIs(t, store.DeactivateRating(context.Background(), 4), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InTx_RollsBackOnError(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "ratings" SET "is_active"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.InTx(context.Background(), func(tx Store) error {
		if err := tx.DeactivateRating(context.Background(), 1); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InTx_Commits(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reviews" SET "is_active"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx Store) error {
		return tx.DeactivateReview(context.Background(), 1)
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
