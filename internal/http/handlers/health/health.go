package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Checker проверяет готовность зависимости.
type Checker interface {
	CheckDatabaseReady(ctx context.Context) error
}

type Handler struct {
	log *slog.Logger
	db  Checker
}

func New(log *slog.Logger, db Checker) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := h.db.CheckDatabaseReady(ctx); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
