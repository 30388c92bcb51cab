// Package counters реализует HTTP-обработчик статистики беременностей пользователя.
package counters

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Counters(ctx context.Context, ownerUID string) (map[string]int64, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика беременностей
// @Tags Mares
// @Produce  json
// @Success 200 {object} response.Response "Счётчики"
// @Security BearerAuth
// @Router /mares/counters [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mare.counters"
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

	counters, err := h.service.Counters(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read counters", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(counters))
}
