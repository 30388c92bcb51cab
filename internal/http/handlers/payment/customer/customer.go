// Package customer реализует HTTP-обработчик привязки клиента платёжного провайдера.
// По этому идентификатору payment-processor находит пользователя при подтверждении оплаты.
package customer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	LinkCustomer(ctx context.Context, userUID, customerID string) error
}

// Request тело запроса.
type Request struct {
	CustomerID string `json:"customer_id" validate:"required,max=128"`
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Привязать клиента провайдера
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор клиента у провайдера"
// @Success 200 {object} response.Response "Клиент привязан"
// @Failure 409 {object} response.ErrorResponse "Клиент уже привязан к другому пользователю"
// @Security BearerAuth
// @Router /payments/customer [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.customer"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.LinkCustomer(r.Context(), userUID, req.CustomerID); err != nil {
		log.Error("failed to link customer", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("provider customer linked", sl.UID(userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{"customer_id": req.CustomerID}))
}
