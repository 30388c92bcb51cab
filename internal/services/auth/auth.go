// Package auth регистрирует пользователей и выдаёт токены доступа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/equigest/internal/lib/jwt"
	"github.com/magabrotheeeer/equigest/internal/lib/password"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// TrialPeriod длительность пробного периода после регистрации.
const TrialPeriod = 7 * 24 * time.Hour

// UserRepository хранилище пользователей, нужное сервису.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Service отвечает за регистрацию и вход.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// Register создаёт пользователя в статусе TRIAL с датой оплаты через TrialPeriod.
func (s *Service) Register(ctx context.Context, req models.DummyUser) (models.User, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	trialEnd := s.now().UTC().Add(TrialPeriod)
	user, err := s.users.RegisterUser(ctx, models.User{
		UID:             uuid.NewString(),
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hashed,
		PaymentStatus:   models.PaymentStatusTrial,
		NextPaymentDate: &trialEnd,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", sl.Op(op), sl.UID(user.UID), slog.String("username", user.Username))
	return user, nil
}

// Login проверяет пароль и выпускает токен. Неизвестное имя и неверный пароль
// неразличимы для вызывающего: оба дают models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
