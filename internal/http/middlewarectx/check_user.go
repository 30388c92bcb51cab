package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// PaymentRequiredHeader выставляется в ответе 402, чтобы клиент мог отличить
// закрытый доступ от прочих ошибок.
const PaymentRequiredHeader = "X-Payment-Required"

// PaymentService проверяет и обновляет платёжный статус пользователя.
type PaymentService interface {
	EnsureActive(ctx context.Context, userUID string, now time.Time) (models.User, error)
}

// PaymentStatusMiddleware пропускает запрос, только если доступ пользователя оплачен
// или действует пробный период. Статус пересчитывается на каждом запросе.
func PaymentStatusMiddleware(log *slog.Logger, payments PaymentService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.PaymentStatusMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := UserUIDFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			_, err := payments.EnsureActive(r.Context(), userUID, time.Now())
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, models.ErrPaymentRequired):
				log.Info("access denied, payment required", sl.UID(userUID))
				w.Header().Set(PaymentRequiredHeader, "true")
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("payment required"))
			case errors.Is(err, models.ErrNotFound):
				log.Warn("token refers to unknown user", sl.UID(userUID))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unknown user"))
			default:
				log.Error("failed to check payment status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
		})
	}
}
