// Package mare управляет кобылами владельца: учёт, график мероприятий,
// выборки по периодам и статистика беременностей.
package mare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/equigest/internal/lib/schedule"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// Repository хранилище кобыл.
type Repository interface {
	CreateMare(ctx context.Context, mare models.Mare) (models.Mare, error)
	GetMare(ctx context.Context, ownerUID, name string) (models.Mare, error)
	UpdateMare(ctx context.Context, mare models.Mare) (models.Mare, error)
	DeleteMare(ctx context.Context, ownerUID, name string) error
	ListMares(ctx context.Context, ownerUID string, mareType *models.MareType,
		p models.Pagination) ([]models.Mare, int, error)
	ListByBirthForecast(ctx context.Context, ownerUID string, start, end time.Time,
		mareType *models.MareType, p models.Pagination) ([]models.Mare, int, error)
	ListPregnantBetween(ctx context.Context, ownerUID string, from, to time.Time,
		mareType *models.MareType) ([]models.Mare, error)
}

// CounterStore хранилище счётчиков беременностей.
type CounterStore interface {
	AdjustCounters(ctx context.Context, userUID string, deltas map[string]int64) error
	Counters(ctx context.Context, userUID string) (map[string]int64, error)
}

// Service бизнес-логика учёта кобыл.
type Service struct {
	repo     Repository
	counters CounterStore
	log      *slog.Logger
}

// New создаёт Service.
func New(repo Repository, counters CounterStore, log *slog.Logger) *Service {
	return &Service{repo: repo, counters: counters, log: log}
}

// Create регистрирует кобылу владельца и возвращает её вместе с графиком.
func (s *Service) Create(ctx context.Context, ownerUID string, req models.DummyMare) (models.MareWithSchedule, error) {
	const op = "mare.Create"

	if req.PregnancyDate.IsZero() {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w: pregnancy date is required", op, models.ErrInvalidArgument)
	}
	if _, err := models.ParseMareType(string(req.Type)); err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateMare(ctx, models.Mare{
		Name:            req.Name,
		Type:            req.Type,
		StallionName:    req.StallionName,
		DonorName:       req.DonorName,
		PregnancyDate:   req.PregnancyDate,
		ActivePregnancy: true,
		OwnerUID:        ownerUID,
	})
	if err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
	}

	s.adjustCounters(ctx, op, ownerUID, map[string]int64{
		models.CounterTotal:      1,
		models.CounterInProgress: 1,
	})

	return withSchedule(op, created)
}

// Get возвращает кобылу владельца с графиком.
func (s *Service) Get(ctx context.Context, ownerUID, name string) (models.MareWithSchedule, error) {
	const op = "mare.Get"

	m, err := s.repo.GetMare(ctx, ownerUID, name)
	if err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
	}
	return withSchedule(op, m)
}

// Edit применяет частичное обновление к кобыле с именем name.
func (s *Service) Edit(ctx context.Context, ownerUID, name string, patch models.MarePatch) (models.MareWithSchedule, error) {
	const op = "mare.Edit"

	if patch.Empty() {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w: nothing to update", op, models.ErrInvalidArgument)
	}
	if patch.PregnancyDate != nil && patch.PregnancyDate.IsZero() {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w: pregnancy date is required", op, models.ErrInvalidArgument)
	}
	if patch.Type != nil {
		if _, err := models.ParseMareType(string(*patch.Type)); err != nil {
			return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	current, err := s.repo.GetMare(ctx, ownerUID, name)
	if err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateMare(ctx, patch.Apply(current))
	if err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: %w", op, err)
	}
	return withSchedule(op, updated)
}

// Delete снимает кобылу с учёта с указанным исходом беременности.
func (s *Service) Delete(ctx context.Context, ownerUID, name string, outcome models.PregnancyOutcome) error {
	const op = "mare.Delete"

	var outcomeCounter string
	switch outcome {
	case models.OutcomeSuccess:
		outcomeCounter = models.CounterSuccessful
	case models.OutcomeFail:
		outcomeCounter = models.CounterFailed
	default:
		return fmt.Errorf("%s: %w: unknown outcome %q", op, models.ErrInvalidArgument, outcome)
	}

	if err := s.repo.DeleteMare(ctx, ownerUID, name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.adjustCounters(ctx, op, ownerUID, map[string]int64{
		outcomeCounter:           1,
		models.CounterInProgress: -1,
	})
	return nil
}

// List возвращает страницу кобыл владельца, опционально одного типа.
func (s *Service) List(ctx context.Context, ownerUID string, mareType *models.MareType,
	p models.Pagination) (models.Page[models.MareWithSchedule], error) {
	const op = "mare.List"

	mares, total, err := s.repo.ListMares(ctx, ownerUID, mareType, p)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: %w", op, err)
	}
	items, err := withSchedules(op, mares)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, err
	}
	return models.NewPage(items, total, p), nil
}

// ListByBirthForecast кобылы, прогноз родов которых попадает в [start, end].
func (s *Service) ListByBirthForecast(ctx context.Context, ownerUID string, start, end time.Time,
	mareType *models.MareType, p models.Pagination) (models.Page[models.MareWithSchedule], error) {
	const op = "mare.ListByBirthForecast"

	if err := schedule.ValidateRange(start, end); err != nil {
		return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: %w", op, err)
	}

	mares, total, err := s.repo.ListByBirthForecast(ctx, ownerUID, start, end, mareType, p)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: %w", op, err)
	}
	items, err := withSchedules(op, mares)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, err
	}
	return models.NewPage(items, total, p), nil
}

// ListByP4Range кобылы-реципиенты, у которых есть контроль P4 в [start, end].
func (s *Service) ListByP4Range(ctx context.Context, ownerUID string, start, end time.Time,
	p models.Pagination) (models.Page[models.MareWithSchedule], error) {
	const op = "mare.ListByP4Range"

	receiver := models.MareTypeReceiver
	return s.listInRange(ctx, op, ownerUID, start, end, &receiver, p,
		schedule.P4LookbackDays, schedule.IsInP4Range)
}

// ListByHerpesRange кобылы, у которых есть вакцинация от герпеса в [start, end].
func (s *Service) ListByHerpesRange(ctx context.Context, ownerUID string, start, end time.Time,
	mareType *models.MareType, p models.Pagination) (models.Page[models.MareWithSchedule], error) {
	const op = "mare.ListByHerpesRange"

	return s.listInRange(ctx, op, ownerUID, start, end, mareType, p,
		schedule.HerpesLookbackDays, schedule.IsInHerpesRange)
}

// Counters возвращает статистику беременностей владельца.
func (s *Service) Counters(ctx context.Context, ownerUID string) (map[string]int64, error) {
	const op = "mare.Counters"

	counters, err := s.counters.Counters(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counters, nil
}

type rangePredicate func(pregnancyDate, start, end time.Time) (bool, error)

// listInRange выбирает кандидатов с датой беременности в [start - lookbackDays, end],
// оставляет подходящих по predicate и только потом делит на страницы.
func (s *Service) listInRange(ctx context.Context, op, ownerUID string, start, end time.Time,
	mareType *models.MareType, p models.Pagination, lookbackDays int,
	predicate rangePredicate) (models.Page[models.MareWithSchedule], error) {
	if err := schedule.ValidateRange(start, end); err != nil {
		return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: %w", op, err)
	}

	candidates, err := s.repo.ListPregnantBetween(ctx, ownerUID, start.AddDate(0, 0, -lookbackDays), end, mareType)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: %w", op, err)
	}

	matched := make([]models.Mare, 0, len(candidates))
	for _, m := range candidates {
		ok, err := predicate(m.PregnancyDate, start, end)
		if err != nil {
			return models.Page[models.MareWithSchedule]{}, fmt.Errorf("%s: mare %d: %w", op, m.ID, err)
		}
		if ok {
			matched = append(matched, m)
		}
	}

	page := models.Paginate(matched, p)
	items, err := withSchedules(op, page.Items)
	if err != nil {
		return models.Page[models.MareWithSchedule]{}, err
	}
	return models.NewPage(items, page.Total, p), nil
}

// adjustCounters обновляет статистику без влияния на результат операции.
func (s *Service) adjustCounters(ctx context.Context, op, ownerUID string, deltas map[string]int64) {
	if err := s.counters.AdjustCounters(ctx, ownerUID, deltas); err != nil {
		s.log.Warn("failed to adjust counters", sl.Op(op), sl.UID(ownerUID), sl.Err(err))
	}
}

func withSchedule(op string, m models.Mare) (models.MareWithSchedule, error) {
	sched, err := schedule.ManagementSchedule(m.PregnancyDate)
	if err != nil {
		return models.MareWithSchedule{}, fmt.Errorf("%s: mare %d: %w", op, m.ID, err)
	}
	return models.MareWithSchedule{Mare: m, Schedule: sched.ForMareType(m.Type)}, nil
}

func withSchedules(op string, mares []models.Mare) ([]models.MareWithSchedule, error) {
	items := make([]models.MareWithSchedule, 0, len(mares))
	for _, m := range mares {
		item, err := withSchedule(op, m)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
