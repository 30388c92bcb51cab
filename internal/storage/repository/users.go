package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/equigest/internal/models"
)

const userColumns = `uid, username, email, password_hash, payment_status,
	next_payment_date, provider_customer_id, created_at`

// RegisterUser сохраняет нового пользователя. Дубликат username или email даёт models.ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "storage.RegisterUser"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	query := `INSERT INTO users (uid, username, email, password_hash, payment_status, next_payment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	var created models.User
	if err := s.DB.GetContext(ctx, &created, query,
		user.UID, user.Username, user.Email, user.PasswordHash,
		user.PaymentStatus, user.NextPaymentDate); err != nil {
		return models.User{}, mapError(op, err)
	}
	return created, nil
}

// GetUser возвращает пользователя по uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (models.User, error) {
	const op = "storage.GetUser"
	return s.getUserBy(ctx, op, "uid", userUID)
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUserBy(ctx, op, "username", username)
}

func (s *Storage) getUserBy(ctx context.Context, op, column, value string) (models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	// column всегда константа из методов выше
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	var u models.User
	if err := s.DB.GetContext(ctx, &u, query, value); err != nil {
		return models.User{}, mapError(op, err)
	}
	return u, nil
}

// UpdatePaymentState блокирует строку пользователя (SELECT ... FOR UPDATE), применяет apply
// и сохраняет платёжный статус и дату следующей оплаты, если они изменились.
// Ленивое понижение статуса и подтверждение оплаты одного пользователя выполняются последовательно.
// Возвращает исходное и обновлённое состояние.
func (s *Storage) UpdatePaymentState(ctx context.Context, userUID string,
	apply func(models.User) (models.User, error)) (before, after models.User, err error) {
	const op = "storage.UpdatePaymentState"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, models.User{}, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.GetContext(ctx, &before,
		`SELECT `+userColumns+` FROM users WHERE uid = $1 FOR UPDATE`, userUID); err != nil {
		return models.User{}, models.User{}, mapError(op, err)
	}
	if after, err = applyPaymentState(ctx, tx, op, before, apply); err != nil {
		return models.User{}, models.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return before, after, nil
}

// ConfirmPayment находит пользователя по клиенту провайдера, блокирует его строку,
// записывает eventID в processed_events и применяет apply в одной транзакции.
// Если событие уже записано, возвращает models.ErrDuplicateEvent и ничего не меняет.
// Откат транзакции откатывает и запись события, так что повторная доставка будет применена.
// Пустой eventID не дедуплицируется.
func (s *Storage) ConfirmPayment(ctx context.Context, customerID, eventID string,
	apply func(models.User) (models.User, error)) (before, after models.User, err error) {
	const op = "storage.ConfirmPayment"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, models.User{}, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.GetContext(ctx, &before,
		`SELECT `+userColumns+` FROM users WHERE provider_customer_id = $1 FOR UPDATE`, customerID); err != nil {
		return models.User{}, models.User{}, mapError(op, err)
	}

	if eventID != "" {
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`INSERT INTO processed_events (event_id, user_uid) VALUES ($1, $2)
			ON CONFLICT (event_id) DO NOTHING`, eventID, before.UID)
		if err != nil {
			return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			err = fmt.Errorf("%s: %w: %s", op, models.ErrDuplicateEvent, eventID)
			return models.User{}, models.User{}, err
		}
	}

	if after, err = applyPaymentState(ctx, tx, op, before, apply); err != nil {
		return models.User{}, models.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.User{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return before, after, nil
}

func applyPaymentState(ctx context.Context, tx *sqlx.Tx, op string, before models.User,
	apply func(models.User) (models.User, error)) (models.User, error) {
	after, err := apply(before)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !paymentStateChanged(before, after) {
		return after, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET payment_status = $1, next_payment_date = $2 WHERE uid = $3`,
		after.PaymentStatus, after.NextPaymentDate, before.UID); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return after, nil
}

// PruneProcessedEvents удаляет записи обработанных событий старше before.
func (s *Storage) PruneProcessedEvents(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.PruneProcessedEvents"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM processed_events WHERE processed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func paymentStateChanged(before, after models.User) bool {
	if before.PaymentStatus != after.PaymentStatus {
		return true
	}
	switch {
	case before.NextPaymentDate == nil && after.NextPaymentDate == nil:
		return false
	case before.NextPaymentDate == nil || after.NextPaymentDate == nil:
		return true
	default:
		return !before.NextPaymentDate.Equal(*after.NextPaymentDate)
	}
}

// SetProviderCustomerID привязывает пользователя к клиенту платёжного провайдера.
func (s *Storage) SetProviderCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetProviderCustomerID"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET provider_customer_id = $1 WHERE uid = $2`, customerID, userUID)
	if err != nil {
		return mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListOverdueUserUIDs возвращает до limit пользователей в TRIAL или PAYED,
// у которых дата следующей оплаты раньше now. Старые просрочки идут первыми.
func (s *Storage) ListOverdueUserUIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const op = "storage.ListOverdueUserUIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT uid FROM users
		WHERE payment_status IN ($1, $2) AND next_payment_date < $3
		ORDER BY next_payment_date
		LIMIT $4`
	uids := []string{}
	if err := s.DB.SelectContext(ctx, &uids, query,
		models.PaymentStatusTrial, models.PaymentStatusPayed, now, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uids, nil
}
