// Package window реализует HTTP-обработчики выборок кобыл по периоду:
// прогноз родов, контроль P4 и вакцинация от герпеса попадают в [start_date, end_date].
package window

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/http/query"
	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

type Service interface {
	ListByBirthForecast(ctx context.Context, ownerUID string, start, end time.Time,
		mareType *models.MareType, p models.Pagination) (models.Page[models.MareWithSchedule], error)
	ListByP4Range(ctx context.Context, ownerUID string, start, end time.Time,
		p models.Pagination) (models.Page[models.MareWithSchedule], error)
	ListByHerpesRange(ctx context.Context, ownerUID string, start, end time.Time,
		mareType *models.MareType, p models.Pagination) (models.Page[models.MareWithSchedule], error)
}

type params struct {
	ownerUID   string
	start, end time.Time
	mareType   *models.MareType
	page       models.Pagination
}

type listFunc func(ctx context.Context, p params) (models.Page[models.MareWithSchedule], error)

// Handler общий обработчик выборки по периоду.
type Handler struct {
	log          *slog.Logger
	op           string
	withMareType bool
	list         listFunc
}

// NewBirthForecast GET /mares/birth-forecast.
//
// @Summary Кобылы с прогнозом родов в периоде
// @Tags Mares
// @Produce  json
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param mare_type query string false "RECEIVER или HEADQUARTERS"
// @Param page query int false "Номер страницы"
// @Param size query int false "Размер страницы"
// @Success 200 {object} response.Response "Страница кобыл"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Security BearerAuth
// @Router /mares/birth-forecast [get]
func NewBirthForecast(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:          log,
		op:           "handlers.mare.birth_forecast",
		withMareType: true,
		list: func(ctx context.Context, p params) (models.Page[models.MareWithSchedule], error) {
			return service.ListByBirthForecast(ctx, p.ownerUID, p.start, p.end, p.mareType, p.page)
		},
	}
}

// NewP4 GET /mares/p4. Только кобылы-реципиенты.
//
// @Summary Кобылы с контролем P4 в периоде
// @Tags Mares
// @Produce  json
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param page query int false "Номер страницы"
// @Param size query int false "Размер страницы"
// @Success 200 {object} response.Response "Страница кобыл"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Security BearerAuth
// @Router /mares/p4 [get]
func NewP4(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log: log,
		op:  "handlers.mare.p4",
		list: func(ctx context.Context, p params) (models.Page[models.MareWithSchedule], error) {
			return service.ListByP4Range(ctx, p.ownerUID, p.start, p.end, p.page)
		},
	}
}

// NewHerpes GET /mares/herpes.
//
// @Summary Кобылы с вакцинацией от герпеса в периоде
// @Tags Mares
// @Produce  json
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param mare_type query string false "RECEIVER или HEADQUARTERS"
// @Param page query int false "Номер страницы"
// @Param size query int false "Размер страницы"
// @Success 200 {object} response.Response "Страница кобыл"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Security BearerAuth
// @Router /mares/herpes [get]
func NewHerpes(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:          log,
		op:           "handlers.mare.herpes",
		withMareType: true,
		list: func(ctx context.Context, p params) (models.Page[models.MareWithSchedule], error) {
			return service.ListByHerpesRange(ctx, p.ownerUID, p.start, p.end, p.mareType, p.page)
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", h.op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := h.parse(r)
	if err != nil {
		log.Warn("bad query", sl.Err(err))
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
	p.ownerUID = userUID

	result, err := h.list(r.Context(), p)
	if err != nil {
		log.Error("failed to list mares", sl.Err(err))
		status, msg := response.StatusFor(err)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}

func (h *Handler) parse(r *http.Request) (params, error) {
	var (
		p   params
		err error
	)
	if p.start, p.end, err = query.DateRange(r); err != nil {
		return params{}, err
	}
	if h.withMareType {
		if p.mareType, err = query.MareType(r); err != nil {
			return params{}, err
		}
	}
	if p.page, err = query.Pagination(r); err != nil {
		return params{}, err
	}
	return p, nil
}
