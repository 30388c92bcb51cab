// Package query разбирает параметры строки запроса, общие для обработчиков API.
package query

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/magabrotheeeer/equigest/internal/models"
)

// DateLayout формат дат в параметрах запроса.
const DateLayout = "2006-01-02"

// Date разбирает обязательный параметр даты в формате YYYY-MM-DD (UTC).
func Date(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", models.ErrInvalidArgument, name)
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", models.ErrInvalidArgument, name)
	}
	return d, nil
}

// DateRange разбирает start_date и end_date.
func DateRange(r *http.Request) (start, end time.Time, err error) {
	if start, err = Date(r, "start_date"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = Date(r, "end_date"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Pagination разбирает page и size; отсутствующие параметры берутся по умолчанию.
func Pagination(r *http.Request) (models.Pagination, error) {
	page, err := optionalInt(r, "page")
	if err != nil {
		return models.Pagination{}, err
	}
	size, err := optionalInt(r, "size")
	if err != nil {
		return models.Pagination{}, err
	}
	return models.NewPagination(page, size)
}

// MareType разбирает необязательный фильтр mare_type. nil означает «все типы».
func MareType(r *http.Request) (*models.MareType, error) {
	raw := r.URL.Query().Get("mare_type")
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseMareType(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", models.ErrInvalidArgument, name)
	}
	return v, nil
}
