package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

var userRowColumns = []string{
	"uid", "username", "email", "password_hash", "payment_status",
	"next_payment_date", "provider_customer_id", "created_at",
}

var mareRowColumns = []string{
	"id", "mare_name", "mare_type", "stallion_name", "donor_name",
	"pregnancy_date", "active_pregnancy", "owner_uid", "created_at",
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
