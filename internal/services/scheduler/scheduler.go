// Package scheduler периодически понижает статус пользователей с просроченной оплатой,
// не дожидаясь их следующего запроса к API, и чистит старые записи обработанных событий оплаты.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// Repository находит пользователей, чей оплаченный или пробный период истёк.
type Repository interface {
	ListOverdueUserUIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
	PruneProcessedEvents(ctx context.Context, before time.Time) (int64, error)
}

// PaymentService перечитывает статус одного пользователя и сохраняет понижение.
type PaymentService interface {
	Status(ctx context.Context, userUID string, now time.Time) (models.User, error)
}

// ExpirySweeper прогоняет Evaluate по просроченным пользователям пачками.
type ExpirySweeper struct {
	repo     Repository
	payments PaymentService
	log      *slog.Logger
	interval  time.Duration
	batch     int
	retention time.Duration
	now       func() time.Time
}

// NewExpirySweeper создает новый экземпляр ExpirySweeper.
func NewExpirySweeper(repo Repository, payments PaymentService, interval time.Duration, batch int,
	retention time.Duration, log *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		repo:      repo,
		payments:  payments,
		log:       log,
		interval:  interval,
		batch:     batch,
		retention: retention,
		now:       time.Now,
	}
}

// Run выполняет проход сразу и затем раз в interval, пока не отменён ctx.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *ExpirySweeper) runSweep(ctx context.Context) {
	s.log.Info("starting sweep of overdue payments")
	demoted, err := s.Sweep(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Error("failed to sweep overdue payments", sl.Err(err))
		}
		return
	}
	s.log.Info("sweep of overdue payments finished", slog.Int("demoted", demoted))

	pruned, err := s.repo.PruneProcessedEvents(ctx, s.now().Add(-s.retention))
	if err != nil {
		s.log.Error("failed to prune processed payment events", sl.Err(err))
		return
	}
	if pruned > 0 {
		s.log.Info("pruned processed payment events", slog.Int64("count", pruned))
	}
}

// Sweep понижает всех просроченных на текущий момент пользователей и возвращает их число.
// Ошибка по одному пользователю не прерывает проход.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	const op = "scheduler.Sweep"

	now := s.now()
	demoted := 0
	for {
		uids, err := s.repo.ListOverdueUserUIDs(ctx, now, s.batch)
		if err != nil {
			return demoted, fmt.Errorf("%s: %w", op, err)
		}
		if len(uids) == 0 {
			return demoted, nil
		}

		progressed := false
		for _, uid := range uids {
			user, err := s.payments.Status(ctx, uid, now)
			if err != nil {
				if ctx.Err() != nil {
					return demoted, fmt.Errorf("%s: %w", op, ctx.Err())
				}
				s.log.Warn("failed to demote user", sl.Op(op), sl.UID(uid), sl.Err(err))
				continue
			}
			if user.PaymentStatus == models.PaymentStatusDefeated {
				demoted++
				progressed = true
			}
		}

		// неполная пачка или ни одного понижения: следующий запрос вернёт те же строки
		if len(uids) < s.batch || !progressed {
			return demoted, nil
		}
	}
}
