// Package payment реализует жизненный цикл платёжного статуса пользователя:
// ленивое понижение при просрочке, проверку доступа и продление по подтверждению оплаты.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/metrics"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// Repository хранилище пользователей, нужное сервису.
type Repository interface {
	UpdatePaymentState(ctx context.Context, userUID string,
		apply func(models.User) (models.User, error)) (before, after models.User, err error)
	ConfirmPayment(ctx context.Context, customerID, eventID string,
		apply func(models.User) (models.User, error)) (before, after models.User, err error)
	SetProviderCustomerID(ctx context.Context, userUID, customerID string) error
}

// Service применяет Evaluate к сохранённым пользователям под блокировкой строки.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// EnsureActive перечитывает статус пользователя на момент now, сохраняет изменения
// и возвращает models.ErrPaymentRequired, если доступ закрыт.
func (s *Service) EnsureActive(ctx context.Context, userUID string, now time.Time) (models.User, error) {
	const op = "payment.EnsureActive"

	user, err := s.evaluate(ctx, op, userUID, now, false)
	if err != nil {
		return models.User{}, err
	}
	if user.PaymentStatus == models.PaymentStatusDefeated {
		return user, fmt.Errorf("%s: %w", op, models.ErrPaymentRequired)
	}
	return user, nil
}

// Status как EnsureActive, но DEFEATED не считается ошибкой.
func (s *Service) Status(ctx context.Context, userUID string, now time.Time) (models.User, error) {
	const op = "payment.Status"
	return s.evaluate(ctx, op, userUID, now, false)
}

// HandleConfirmation продлевает доступ пользователя, привязанного к клиенту провайдера customerID.
// Событие eventID фиксируется в той же транзакции, что и продление: повтор даёт
// models.ErrDuplicateEvent, неизвестный клиент даёт models.ErrNotFound.
func (s *Service) HandleConfirmation(ctx context.Context, customerID, eventID string,
	now time.Time) (models.User, error) {
	const op = "payment.HandleConfirmation"

	if customerID == "" {
		return models.User{}, fmt.Errorf("%s: %w: empty customer id", op, models.ErrInvalidArgument)
	}

	before, after, err := s.repo.ConfirmPayment(ctx, customerID, eventID, func(u models.User) (models.User, error) {
		return Evaluate(u, now, true), nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrDuplicateEvent) {
			s.log.Error("failed to confirm payment", sl.Op(op), slog.String("customer_id", customerID), sl.Err(err))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	s.recordTransition(op, before, after)

	s.log.Info("payment confirmed",
		sl.Op(op),
		sl.UID(after.UID),
		slog.String("customer_id", customerID),
		slog.Time("next_payment_date", *after.NextPaymentDate),
	)
	return after, nil
}

// LinkCustomer сохраняет идентификатор клиента провайдера для пользователя.
func (s *Service) LinkCustomer(ctx context.Context, userUID, customerID string) error {
	const op = "payment.LinkCustomer"

	if customerID == "" {
		return fmt.Errorf("%s: %w: empty customer id", op, models.ErrInvalidArgument)
	}
	if err := s.repo.SetProviderCustomerID(ctx, userUID, customerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) evaluate(ctx context.Context, op, userUID string, now time.Time, confirmed bool) (models.User, error) {
	before, after, err := s.repo.UpdatePaymentState(ctx, userUID, func(u models.User) (models.User, error) {
		return Evaluate(u, now, confirmed), nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.Error("failed to update payment state", sl.Op(op), sl.UID(userUID), sl.Err(err))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.recordTransition(op, before, after)
	return after, nil
}

func (s *Service) recordTransition(op string, before, after models.User) {
	if before.PaymentStatus == after.PaymentStatus {
		return
	}
	metrics.RecordTransition(string(before.PaymentStatus), string(after.PaymentStatus))
	s.log.Info("payment status changed",
		sl.Op(op),
		sl.UID(after.UID),
		slog.String("from", string(before.PaymentStatus)),
		slog.String("to", string(after.PaymentStatus)),
	)
}
