// Package status реализует HTTP-обработчик текущего платёжного статуса пользователя.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service пересчитывает статус пользователя на момент now.
type Service interface {
	Status(ctx context.Context, userUID string, now time.Time) (models.User, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Info ответ обработчика.
type Info struct {
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	NextPaymentDate *time.Time           `json:"next_payment_date,omitempty"`
	CustomerLinked  bool                 `json:"customer_linked"`
}

// ServeHTTP godoc
// @Summary Платёжный статус
// @Description Доступен и пользователю со статусом DEFEATED.
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response "Статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /payments/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.service.Status(r.Context(), userUID, time.Now())
	if err != nil {
		log.Error("failed to get payment status", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(Info{
		PaymentStatus:   user.PaymentStatus,
		NextPaymentDate: user.NextPaymentDate,
		CustomerLinked:  user.ProviderCustomerID != nil,
	}))
}
