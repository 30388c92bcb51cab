// Package paymentprocessor обрабатывает сообщения очереди подтверждений оплаты.
package paymentprocessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/metrics"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// PaymentService применяет подтверждение оплаты к пользователю.
// Повторное событие с тем же eventID отклоняется с models.ErrDuplicateEvent
// атомарно с продлением, поэтому незавершённая обработка не блокирует повторную доставку.
type PaymentService interface {
	HandleConfirmation(ctx context.Context, customerID, eventID string, now time.Time) (models.User, error)
}

// Результаты обработки для метрик.
const (
	resultApplied   = "applied"
	resultDuplicate = "duplicate"
	resultMalformed = "malformed"
	resultUnknown   = "unknown_customer"
	resultFailed    = "failed"
)

type PaymentProcessor struct {
	payments PaymentService
	log      *slog.Logger
	now      func() time.Time
}

func NewPaymentProcessor(payments PaymentService, logger *slog.Logger) *PaymentProcessor {
	return &PaymentProcessor{
		payments: payments,
		log:      logger,
		now:      time.Now,
	}
}

// ProcessConfirmation разбирает сообщение очереди и продлевает оплату клиента.
// Ошибка означает, что сообщение нужно вернуть в очередь.
func (p *PaymentProcessor) ProcessConfirmation(ctx context.Context, body []byte) error {
	const op = "paymentprocessor.ProcessConfirmation"
	log := p.log.With(sl.Op(op))

	var event models.ConfirmationEvent
	if err := json.Unmarshal(body, &event); err != nil || event.CustomerID == "" {
		if err == nil {
			err = errors.New("empty customer id")
		}
		log.Error("dropping malformed confirmation", sl.Err(err))
		metrics.ConfirmationsProcessed.WithLabelValues(resultMalformed).Inc()
		return nil
	}
	log = log.With(slog.String("event_id", event.EventID), slog.String("customer_id", event.CustomerID))

	user, err := p.payments.HandleConfirmation(ctx, event.CustomerID, event.EventID, p.now())
	switch {
	case errors.Is(err, models.ErrDuplicateEvent):
		log.Info("confirmation already processed")
		metrics.ConfirmationsProcessed.WithLabelValues(resultDuplicate).Inc()
		return nil
	case errors.Is(err, models.ErrNotFound):
		log.Warn("confirmation for unknown customer")
		metrics.ConfirmationsProcessed.WithLabelValues(resultUnknown).Inc()
		return nil
	case err != nil:
		metrics.ConfirmationsProcessed.WithLabelValues(resultFailed).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("payment confirmed", sl.UID(user.UID), slog.String("status", string(user.PaymentStatus)))
	metrics.ConfirmationsProcessed.WithLabelValues(resultApplied).Inc()
	return nil
}
