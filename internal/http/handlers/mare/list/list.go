// Package list реализует HTTP-обработчик постраничного списка кобыл.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/http/query"
	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, ownerUID string, mareType *models.MareType,
		p models.Pagination) (models.Page[models.MareWithSchedule], error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список кобыл
// @Tags Mares
// @Produce  json
// @Param mare_type query string false "RECEIVER или HEADQUARTERS"
// @Param page query int false "Номер страницы, с 1"
// @Param size query int false "Размер страницы, до 100"
// @Success 200 {object} response.Response "Страница кобыл"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Security BearerAuth
// @Router /mares [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mare.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	mareType, err := query.MareType(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	page, err := query.Pagination(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.List(r.Context(), userUID, mareType, page)
	if err != nil {
		log.Error("failed to list mares", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
