// Package repository реализует хранилище EquiGest на PostgreSQL:
// пользователи с платёжным статусом и кобылы владельцев.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/equigest/internal/models"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// Storage инкапсулирует соединение с базой данных.
type Storage struct {
	DB *sqlx.DB
}

// New подключается к PostgreSQL и проверяет соединение.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sqlx.ConnectContext(ctx, "pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{DB: db}
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	const op = "storage.CheckDatabaseReady"

	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('users', 'mares', 'processed_events')`).Scan(&count)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count != 3 {
		return fmt.Errorf("%s: required tables are missing", op)
	}
	return nil
}

// mapError переводит ошибки драйвера в доменные.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, models.ErrAlreadyExists, pgErr.ConstraintName)
	}
	// Ключ не того формата, например не UUID, не может совпасть ни с одной строкой.
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}
