package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/equigest/internal/models"
)

const testUID = "550e8400-e29b-41d4-a716-446655440000"

func userRow(status string, next any, customer any) []driver.Value {
	return []driver.Value{testUID, "stud", "stud@example.com", "hash", status, next, customer, fixedNow}
}

func TestStorage_RegisterUser(t *testing.T) {
	next := fixedNow.AddDate(0, 0, 7)
	user := models.User{
		UID:             testUID,
		Username:        "stud",
		Email:           "stud@example.com",
		PasswordHash:    "hash",
		PaymentStatus:   models.PaymentStatusTrial,
		NextPaymentDate: &next,
	}

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "successful register",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(testUID, "stud", "stud@example.com", "hash", "TRIAL", next).
					WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("TRIAL", next, nil)...))
			},
		},
		{
			name: "duplicate username",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
			},
			wantErr: models.ErrAlreadyExists,
		},
		{
			name: "driver failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, mock := newMockStorage(t)
			tt.setup(mock)

			got, err := storage.RegisterUser(context.Background(), user)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, models.ErrAlreadyExists) {
					assert.ErrorIs(t, err, models.ErrAlreadyExists)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testUID, got.UID)
			assert.Equal(t, models.PaymentStatusTrial, got.PaymentStatus)
			require.NotNil(t, got.NextPaymentDate)
			assert.True(t, next.Equal(*got.NextPaymentDate))
			assert.Nil(t, got.ProviderCustomerID)
		})
	}
}

func TestStorage_GetUserLookups(t *testing.T) {
	tests := []struct {
		name   string
		column string
		call   func(s *Storage) (models.User, error)
	}{
		{
			name:   "by uid",
			column: "uid",
			call:   func(s *Storage) (models.User, error) { return s.GetUser(context.Background(), "key") },
		},
		{
			name:   "by username",
			column: "username",
			call:   func(s *Storage) (models.User, error) { return s.GetUserByUsername(context.Background(), "key") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" found", func(t *testing.T) {
			storage, mock := newMockStorage(t)
			mock.ExpectQuery(`FROM users WHERE ` + tt.column + ` = \$1`).
				WithArgs("key").
				WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("PAYED", fixedNow, "cust_1")...))

			u, err := tt.call(storage)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentStatusPayed, u.PaymentStatus)
			require.NotNil(t, u.ProviderCustomerID)
			assert.Equal(t, "cust_1", *u.ProviderCustomerID)
		})

		t.Run(tt.name+" not found", func(t *testing.T) {
			storage, mock := newMockStorage(t)
			mock.ExpectQuery(`FROM users WHERE ` + tt.column + ` = \$1`).
				WithArgs("key").
				WillReturnRows(sqlmock.NewRows(userRowColumns))

			_, err := tt.call(storage)
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestStorage_GetUser_CanceledContext(t *testing.T) {
	storage, _ := newMockStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.GetUser(ctx, testUID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_UpdatePaymentState(t *testing.T) {
	past := fixedNow.AddDate(0, 0, -1)

	demote := func(u models.User) (models.User, error) {
		u.PaymentStatus = models.PaymentStatusDefeated
		return u, nil
	}
	keep := func(u models.User) (models.User, error) { return u, nil }

	t.Run("changed state is written in a locked transaction", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM users WHERE uid = \$1 FOR UPDATE`).
			WithArgs(testUID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("TRIAL", past, nil)...))
		mock.ExpectExec(`UPDATE users SET payment_status = \$1, next_payment_date = \$2 WHERE uid = \$3`).
			WithArgs("DEFEATED", past, testUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		before, after, err := storage.UpdatePaymentState(context.Background(), testUID, demote)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusTrial, before.PaymentStatus)
		assert.Equal(t, models.PaymentStatusDefeated, after.PaymentStatus)
	})

	t.Run("unchanged state skips the update", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(testUID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("PAYED", fixedNow, nil)...))
		mock.ExpectCommit()

		_, after, err := storage.UpdatePaymentState(context.Background(), testUID, keep)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPayed, after.PaymentStatus)
	})

	t.Run("missing user rolls back", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(testUID).
			WillReturnRows(sqlmock.NewRows(userRowColumns))
		mock.ExpectRollback()

		_, _, err := storage.UpdatePaymentState(context.Background(), testUID, keep)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("apply error rolls back", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(testUID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("TRIAL", past, nil)...))
		mock.ExpectRollback()

		boom := errors.New("boom")
		_, _, err := storage.UpdatePaymentState(context.Background(), testUID, func(models.User) (models.User, error) {
			return models.User{}, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestStorage_ConfirmPayment(t *testing.T) {
	past := fixedNow.AddDate(0, 0, -1)
	next := fixedNow.AddDate(0, 0, 30)

	confirm := func(u models.User) (models.User, error) {
		u.PaymentStatus = models.PaymentStatusPayed
		u.NextPaymentDate = &next
		return u, nil
	}

	t.Run("event is recorded in the same transaction as the update", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM users WHERE provider_customer_id = \$1 FOR UPDATE`).
			WithArgs("cust_1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("DEFEATED", past, "cust_1")...))
		mock.ExpectExec(`INSERT INTO processed_events \(event_id, user_uid\) VALUES \(\$1, \$2\)\s+ON CONFLICT \(event_id\) DO NOTHING`).
			WithArgs("evt_1", testUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET payment_status = \$1, next_payment_date = \$2 WHERE uid = \$3`).
			WithArgs("PAYED", next, testUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		before, after, err := storage.ConfirmPayment(context.Background(), "cust_1", "evt_1", confirm)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusDefeated, before.PaymentStatus)
		assert.Equal(t, models.PaymentStatusPayed, after.PaymentStatus)
	})

	t.Run("already processed event rolls back without update", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("cust_1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("PAYED", next, "cust_1")...))
		mock.ExpectExec(`INSERT INTO processed_events`).
			WithArgs("evt_1", testUID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, _, err := storage.ConfirmPayment(context.Background(), "cust_1", "evt_1", confirm)
		assert.ErrorIs(t, err, models.ErrDuplicateEvent)
	})

	t.Run("failed update rolls back the event record", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("cust_1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("DEFEATED", past, "cust_1")...))
		mock.ExpectExec(`INSERT INTO processed_events`).
			WithArgs("evt_1", testUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET payment_status`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, _, err := storage.ConfirmPayment(context.Background(), "cust_1", "evt_1", confirm)
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrDuplicateEvent)
		assert.ErrorContains(t, err, "storage.ConfirmPayment")
	})

	t.Run("failed commit is not a duplicate", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("cust_1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("DEFEATED", past, "cust_1")...))
		mock.ExpectExec(`INSERT INTO processed_events`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET payment_status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("server closed the connection"))

		_, _, err := storage.ConfirmPayment(context.Background(), "cust_1", "evt_1", confirm)
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrDuplicateEvent)
	})

	t.Run("empty event id skips the ledger", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("cust_1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(userRow("DEFEATED", past, "cust_1")...))
		mock.ExpectExec(`UPDATE users SET payment_status`).
			WithArgs("PAYED", next, testUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, after, err := storage.ConfirmPayment(context.Background(), "cust_1", "", confirm)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPayed, after.PaymentStatus)
	})

	t.Run("unknown customer rolls back", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("cust_404").
			WillReturnRows(sqlmock.NewRows(userRowColumns))
		mock.ExpectRollback()

		_, _, err := storage.ConfirmPayment(context.Background(), "cust_404", "evt_1", confirm)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStorage_PruneProcessedEvents(t *testing.T) {
	cutoff := fixedNow.AddDate(0, 0, -30)

	t.Run("deletes old events", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectExec(`DELETE FROM processed_events WHERE processed_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := storage.PruneProcessedEvents(context.Background(), cutoff)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
	})

	t.Run("driver failure", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectExec(`DELETE FROM processed_events`).WillReturnError(errors.New("boom"))

		_, err := storage.PruneProcessedEvents(context.Background(), cutoff)
		assert.ErrorContains(t, err, "storage.PruneProcessedEvents")
	})
}

func TestPaymentStateChanged(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 30)
	sameAsA := a.In(time.FixedZone("X", 3600))

	tests := []struct {
		name   string
		before models.User
		after  models.User
		want   bool
	}{
		{name: "status differs", before: models.User{PaymentStatus: "TRIAL"}, after: models.User{PaymentStatus: "DEFEATED"}, want: true},
		{name: "both dates nil", before: models.User{}, after: models.User{}, want: false},
		{name: "date set", before: models.User{}, after: models.User{NextPaymentDate: &b}, want: true},
		{name: "date advanced", before: models.User{NextPaymentDate: &a}, after: models.User{NextPaymentDate: &b}, want: true},
		{name: "same instant other zone", before: models.User{NextPaymentDate: &a}, after: models.User{NextPaymentDate: &sameAsA}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paymentStateChanged(tt.before, tt.after))
		})
	}
}

func TestStorage_SetProviderCustomerID(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "linked",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET provider_customer_id = \$1 WHERE uid = \$2`).
					WithArgs("cust_1", testUID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "unknown user",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET provider_customer_id`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: models.ErrNotFound,
		},
		{
			name: "customer linked to another user",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET provider_customer_id`).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: models.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, mock := newMockStorage(t)
			tt.setup(mock)

			err := storage.SetProviderCustomerID(context.Background(), testUID, "cust_1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStorage_ListOverdueUserUIDs(t *testing.T) {
	t.Run("returns overdue uids", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery(`SELECT uid FROM users\s+WHERE payment_status IN`).
			WithArgs("TRIAL", "PAYED", fixedNow, 100).
			WillReturnRows(sqlmock.NewRows([]string{"uid"}).AddRow(testUID).AddRow("other-uid"))

		uids, err := storage.ListOverdueUserUIDs(context.Background(), fixedNow, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{testUID, "other-uid"}, uids)
	})

	t.Run("nothing overdue", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery(`SELECT uid FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"uid"}))

		uids, err := storage.ListOverdueUserUIDs(context.Background(), fixedNow, 100)
		require.NoError(t, err)
		assert.Empty(t, uids)
	})

	t.Run("query failure", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery(`SELECT uid FROM users`).WillReturnError(errors.New("boom"))

		_, err := storage.ListOverdueUserUIDs(context.Background(), fixedNow, 100)
		assert.ErrorContains(t, err, "storage.ListOverdueUserUIDs")
	})
}
