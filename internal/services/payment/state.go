package payment

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/equigest/internal/models"
)

// BillingPeriodDays на сколько календарных дней продлевается доступ одним подтверждением оплаты.
const BillingPeriodDays = 30

// Evaluate применяет переходы платёжного статуса и возвращает обновлённую копию пользователя.
//
// TRIAL и PAYED с просроченной датой оплаты переходят в DEFEATED.
// Подтверждение оплаты переводит пользователя в PAYED и сдвигает дату следующей оплаты
// на BillingPeriodDays календарных дней от её текущего значения (от now, если дата ещё не назначена).
// Повторное подтверждение сдвигает дату ещё раз: дедупликация событий на стороне вызывающего.
func Evaluate(user models.User, now time.Time, confirmed bool) models.User {
	pastDue := user.NextPaymentDate != nil && user.NextPaymentDate.Before(now)

	if pastDue && (user.PaymentStatus == models.PaymentStatusPayed || user.PaymentStatus == models.PaymentStatusTrial) {
		user.PaymentStatus = models.PaymentStatusDefeated
	}

	if confirmed {
		base := now
		if user.NextPaymentDate != nil {
			base = *user.NextPaymentDate
		}
		next := base.AddDate(0, 0, BillingPeriodDays)
		user.NextPaymentDate = &next
		user.PaymentStatus = models.PaymentStatusPayed
	}

	return user
}

// EnsureActive проверяет доступ: возвращает пользователя после Evaluate
// или models.ErrPaymentRequired, если он в статусе DEFEATED.
func EnsureActive(user models.User, now time.Time) (models.User, error) {
	user = Evaluate(user, now, false)
	if user.PaymentStatus == models.PaymentStatusDefeated {
		return user, fmt.Errorf("user %s: %w", user.UID, models.ErrPaymentRequired)
	}
	return user, nil
}
