// Package read реализует HTTP-обработчик получения кобылы по имени.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
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

type Service interface {
	Get(ctx context.Context, ownerUID, name string) (models.MareWithSchedule, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить кобылу
// @Tags Mares
// @Produce  json
// @Param name path string true "Имя кобылы"
// @Success 200 {object} response.Response "Кобыла с графиком"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Кобыла не найдена"
// @Security BearerAuth
// @Router /mares/{name} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mare.read"
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

	mare, err := h.service.Get(r.Context(), userUID, chi.URLParam(r, "name"))
	if err != nil {
		log.Warn("failed to read mare", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(mare))
}
