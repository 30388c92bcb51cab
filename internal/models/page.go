package models

import "fmt"

// Pagination параметры постраничной выдачи.
type Pagination struct {
	Page int
	Size int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NewPagination проверяет параметры страницы. Нулевые значения заменяются значениями по умолчанию.
func NewPagination(page, size int) (Pagination, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return Pagination{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidArgument)
	}
	if size < 1 || size > MaxPageSize {
		return Pagination{}, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidArgument, MaxPageSize)
	}
	return Pagination{Page: page, Size: size}, nil
}

// Offset смещение первой записи страницы.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// Page страница результатов.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// NewPage собирает страницу из уже выбранных элементов и общего количества.
func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Size: p.Size, Pages: pages}
}

// Paginate вырезает страницу из полного списка.
func Paginate[T any](all []T, p Pagination) Page[T] {
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	return NewPage(all[start:end], len(all), p)
}
