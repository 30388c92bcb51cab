// Package remove реализует HTTP-обработчик снятия кобылы с учёта.
// Исход беременности передаётся параметром outcome и попадает в статистику.
package remove

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
	Delete(ctx context.Context, ownerUID, name string, outcome models.PregnancyOutcome) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Снять кобылу с учёта
// @Tags Mares
// @Produce  json
// @Param name path string true "Имя кобылы"
// @Param outcome query string true "SUCCESS_PREGNANCY или FAIL_PREGNANCY"
// @Success 200 {object} response.Response "Кобыла удалена"
// @Failure 400 {object} response.ErrorResponse "Неизвестный исход"
// @Failure 404 {object} response.ErrorResponse "Кобыла не найдена"
// @Security BearerAuth
// @Router /mares/{name} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mare.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	outcome, err := models.ParsePregnancyOutcome(r.URL.Query().Get("outcome"))
	if err != nil {
		log.Warn("bad outcome", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.service.Delete(r.Context(), userUID, name, outcome); err != nil {
		log.Error("failed to delete mare", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("mare deleted", slog.String("outcome", string(outcome)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted": name,
		"outcome": outcome,
	}))
}
