package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/equigest/internal/models"
)

const mareColumns = `id, mare_name, mare_type, stallion_name, donor_name,
	pregnancy_date, active_pregnancy, owner_uid, created_at`

// CreateMare сохраняет кобылу. Имя уникально в пределах владельца.
func (s *Storage) CreateMare(ctx context.Context, mare models.Mare) (models.Mare, error) {
	const op = "storage.CreateMare"
	if err := checkCtx(ctx, op); err != nil {
		return models.Mare{}, err
	}

	query := `INSERT INTO mares (mare_name, mare_type, stallion_name, donor_name,
			pregnancy_date, active_pregnancy, owner_uid)
		VALUES (:mare_name, :mare_type, :stallion_name, :donor_name,
			:pregnancy_date, :active_pregnancy, :owner_uid)
		RETURNING ` + mareColumns
	rows, err := s.DB.NamedQueryContext(ctx, query, mare)
	if err != nil {
		return models.Mare{}, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var created models.Mare
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.Mare{}, mapError(op, err)
		}
		return models.Mare{}, fmt.Errorf("%s: insert returned no rows", op)
	}
	if err := rows.StructScan(&created); err != nil {
		return models.Mare{}, fmt.Errorf("%s: %w", op, err)
	}
	return inUTC(created), nil
}

// GetMare возвращает кобылу владельца по имени.
func (s *Storage) GetMare(ctx context.Context, ownerUID, name string) (models.Mare, error) {
	const op = "storage.GetMare"
	if err := checkCtx(ctx, op); err != nil {
		return models.Mare{}, err
	}

	var m models.Mare
	if err := s.DB.GetContext(ctx, &m,
		`SELECT `+mareColumns+` FROM mares WHERE owner_uid = $1 AND mare_name = $2`,
		ownerUID, name); err != nil {
		return models.Mare{}, mapError(op, err)
	}
	return inUTC(m), nil
}

// UpdateMare перезаписывает изменяемые поля кобылы с идентификатором mare.ID.
func (s *Storage) UpdateMare(ctx context.Context, mare models.Mare) (models.Mare, error) {
	const op = "storage.UpdateMare"
	if err := checkCtx(ctx, op); err != nil {
		return models.Mare{}, err
	}

	var updated models.Mare
	err := s.DB.GetContext(ctx, &updated, `UPDATE mares
		SET mare_name = $1, mare_type = $2, stallion_name = $3, donor_name = $4,
			pregnancy_date = $5, active_pregnancy = $6
		WHERE id = $7 AND owner_uid = $8
		RETURNING `+mareColumns,
		mare.Name, mare.Type, mare.StallionName, mare.DonorName,
		mare.PregnancyDate, mare.ActivePregnancy, mare.ID, mare.OwnerUID)
	if err != nil {
		return models.Mare{}, mapError(op, err)
	}
	return inUTC(updated), nil
}

// DeleteMare удаляет кобылу владельца по имени.
func (s *Storage) DeleteMare(ctx context.Context, ownerUID, name string) error {
	const op = "storage.DeleteMare"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM mares WHERE owner_uid = $1 AND mare_name = $2`, ownerUID, name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListMares возвращает страницу кобыл владельца, опционально одного типа, и их общее количество.
func (s *Storage) ListMares(ctx context.Context, ownerUID string, mareType *models.MareType,
	p models.Pagination) ([]models.Mare, int, error) {
	const op = "storage.ListMares"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	where := `owner_uid = $1 AND ($2::text IS NULL OR mare_type = $2)`
	return s.listPage(ctx, op, where, p, ownerUID, nullableType(mareType))
}

// ListByBirthForecast возвращает страницу кобыл, у которых прогноз родов
// (дата беременности + 335 дней) попадает в [start, end] по календарным дням UTC.
func (s *Storage) ListByBirthForecast(ctx context.Context, ownerUID string, start, end time.Time,
	mareType *models.MareType, p models.Pagination) ([]models.Mare, int, error) {
	const op = "storage.ListByBirthForecast"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	where := `owner_uid = $1 AND ($2::text IS NULL OR mare_type = $2)
		AND ((pregnancy_date AT TIME ZONE 'UTC') + INTERVAL '335 days')::date BETWEEN $3::date AND $4::date`
	return s.listPage(ctx, op, where, p, ownerUID, nullableType(mareType), civilDate(start), civilDate(end))
}

// ListPregnantBetween возвращает все кобылы владельца с датой беременности в [from, to]
// по календарным дням UTC. Используется как выборка кандидатов для фильтров по графику.
func (s *Storage) ListPregnantBetween(ctx context.Context, ownerUID string, from, to time.Time,
	mareType *models.MareType) ([]models.Mare, error) {
	const op = "storage.ListPregnantBetween"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var mares []models.Mare
	err := s.DB.SelectContext(ctx, &mares, `SELECT `+mareColumns+` FROM mares
		WHERE owner_uid = $1 AND ($2::text IS NULL OR mare_type = $2)
			AND (pregnancy_date AT TIME ZONE 'UTC')::date BETWEEN $3::date AND $4::date
		ORDER BY pregnancy_date, id`,
		ownerUID, nullableType(mareType), civilDate(from), civilDate(to))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return maresInUTC(mares), nil
}

func (s *Storage) listPage(ctx context.Context, op, where string, p models.Pagination,
	args ...any) ([]models.Mare, int, error) {
	var total int
	if err := s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM mares WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limitArg := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM mares WHERE %s ORDER BY pregnancy_date, id LIMIT $%d OFFSET $%d`,
		mareColumns, where, limitArg, limitArg+1)

	var mares []models.Mare
	if err := s.DB.SelectContext(ctx, &mares, query, append(args, p.Size, p.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return maresInUTC(mares), total, nil
}

func nullableType(t *models.MareType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// inUTC переводит даты кобылы в UTC. Календарный день беременности везде
// считается по UTC, как и в запросах с AT TIME ZONE 'UTC', а pgx отдаёт timestamptz в time.Local.
func inUTC(m models.Mare) models.Mare {
	m.PregnancyDate = m.PregnancyDate.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return m
}

func maresInUTC(mares []models.Mare) []models.Mare {
	for i := range mares {
		mares[i] = inUTC(mares[i])
	}
	return mares
}

// civilDate календарная дата t в его собственном часовом поясе в формате, понятном ::date.
// Границы приходят из schedule.Day и уже являются полуночью UTC.
func civilDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
