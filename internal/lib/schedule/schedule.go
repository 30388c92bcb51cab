// Package schedule рассчитывает график ветеринарных мероприятий по дате беременности:
// прогноз родов, контроль прогестерона (P4) и вакцинацию от герпеса.
//
// Все функции чистые и безопасны для параллельного вызова.
package schedule

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/equigest/internal/lib/month"
	"github.com/magabrotheeeer/equigest/internal/models"
)

const (
	// GestationDays срок от даты беременности до прогноза родов.
	GestationDays = 335
	// P4IntervalDays шаг контроля P4.
	P4IntervalDays = 15
	// P4SpanDays контроль P4 ведётся включительно до этого дня беременности.
	P4SpanDays = 105

	// P4LookbackDays насколько раньше начала периода может лежать дата беременности,
	// чтобы проверка P4 ещё попадала в период.
	P4LookbackDays = P4SpanDays
	// HerpesLookbackDays то же для вакцинации: 9 календарных месяцев не длиннее 275 дней.
	HerpesLookbackDays = 276
)

// herpesMonths месяцы беременности, в которые ставится вакцина.
var herpesMonths = [3]int{5, 7, 9}

// BirthForecast возвращает прогноз даты родов.
func BirthForecast(pregnancyDate time.Time) (time.Time, error) {
	const op = "schedule.BirthForecast"

	if err := checkDate(pregnancyDate); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return pregnancyDate.AddDate(0, 0, GestationDays), nil
}

// P4Schedule возвращает даты контроля P4: с даты беременности каждые 15 дней до 105-го дня включительно.
func P4Schedule(pregnancyDate time.Time) ([]time.Time, error) {
	const op = "schedule.P4Schedule"

	if err := checkDate(pregnancyDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dates := make([]time.Time, 0, P4SpanDays/P4IntervalDays+1)
	for day := 0; day <= P4SpanDays; day += P4IntervalDays {
		dates = append(dates, pregnancyDate.AddDate(0, 0, day))
	}
	return dates, nil
}

// HerpesVaccineSchedule возвращает три даты вакцинации: +5, +7 и +9 календарных месяцев.
// Если в целевом месяце нет такого числа, берётся последний день месяца.
func HerpesVaccineSchedule(pregnancyDate time.Time) ([3]time.Time, error) {
	const op = "schedule.HerpesVaccineSchedule"

	var dates [3]time.Time
	if err := checkDate(pregnancyDate); err != nil {
		return dates, fmt.Errorf("%s: %w", op, err)
	}
	for i, m := range herpesMonths {
		dates[i] = month.Add(pregnancyDate, m)
	}
	return dates, nil
}

// ManagementSchedule собирает полный график. P4 рассчитывается всегда,
// вид для конкретного типа кобылы даёт models.ManagementSchedule.ForMareType.
func ManagementSchedule(pregnancyDate time.Time) (models.ManagementSchedule, error) {
	const op = "schedule.ManagementSchedule"

	if err := checkDate(pregnancyDate); err != nil {
		return models.ManagementSchedule{}, fmt.Errorf("%s: %w", op, err)
	}

	p4, _ := P4Schedule(pregnancyDate)
	herpes, _ := HerpesVaccineSchedule(pregnancyDate)
	birth, _ := BirthForecast(pregnancyDate)

	return models.ManagementSchedule{
		HerpesVaccine: herpes,
		P4:            p4,
		BirthForecast: birth,
	}, nil
}

// IsInP4Range сообщает, попадает ли хотя бы одна проверка P4 в [start, end].
// Сравнение по дням, время суток отбрасывается.
func IsInP4Range(pregnancyDate, start, end time.Time) (bool, error) {
	const op = "schedule.IsInP4Range"

	if err := ValidateRange(start, end); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	dates, err := P4Schedule(pregnancyDate)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return anyInRange(dates, start, end), nil
}

// IsInHerpesRange сообщает, попадает ли хотя бы одна вакцинация в [start, end].
func IsInHerpesRange(pregnancyDate, start, end time.Time) (bool, error) {
	const op = "schedule.IsInHerpesRange"

	if err := ValidateRange(start, end); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	dates, err := HerpesVaccineSchedule(pregnancyDate)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return anyInRange(dates[:], start, end), nil
}

// Day приводит момент времени к календарной дате в его собственном часовом поясе.
// Результат в UTC, поэтому даты из разных поясов сравнимы.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func anyInRange(dates []time.Time, start, end time.Time) bool {
	from, to := Day(start), Day(end)
	for _, d := range dates {
		day := Day(d)
		if !day.Before(from) && !day.After(to) {
			return true
		}
	}
	return false
}

func checkDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: pregnancy date is not set", models.ErrInvalidArgument)
	}
	return nil
}

// ValidateRange проверяет границы периода: обе заданы и start не позже end по календарным дням.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: range bounds must be set", models.ErrInvalidArgument)
	}
	if Day(start).After(Day(end)) {
		return fmt.Errorf("%w: start date is after end date", models.ErrInvalidArgument)
	}
	return nil
}
