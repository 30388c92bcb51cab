// Package create реализует HTTP-обработчик регистрации кобылы.
//
// Handler принимает JSON с данными кобылы, валидирует его, берёт uid владельца
// из контекста и возвращает созданную запись вместе с графиком мероприятий.
package create

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
	"github.com/magabrotheeeer/equigest/internal/models"
)

// Handler управляет HTTP-запросами на создание кобыл.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику создания кобылы.
type Service interface {
	Create(ctx context.Context, ownerUID string, req models.DummyMare) (models.MareWithSchedule, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать кобылу
// @Description Создаёт кобылу текущего пользователя и возвращает её с графиком мероприятий.
// @Tags Mares
// @Accept  json
// @Produce  json
// @Param request body models.DummyMare true "Данные кобылы"
// @Success 201 {object} response.Response "Кобыла создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Требуется оплата"
// @Failure 409 {object} response.ErrorResponse "Кобыла с таким именем уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /mares [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mare.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMare
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

	mare, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to create mare", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("mare created", slog.Int("id", mare.Mare.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(mare))
}
