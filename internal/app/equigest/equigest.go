package equigest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/equigest/internal/cache"
	"github.com/magabrotheeeer/equigest/internal/config"
	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/lib/jwt"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/migrations"
	"github.com/magabrotheeeer/equigest/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/equigest/internal/services/auth"
	mareservice "github.com/magabrotheeeer/equigest/internal/services/mare"
	paymentservice "github.com/magabrotheeeer/equigest/internal/services/payment"
	"github.com/magabrotheeeer/equigest/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "equigest.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB.DB, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if app.cache, err = cache.InitServer(ctx, cfg.RedisConnection); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if app.amqp, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if app.ch, err = rabbitmq.SetupChannel(app.amqp, rabbitmq.PaymentsTopology(), 0); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	payments := paymentservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:          authservice.New(db, tokens, logger),
		Mares:         mareservice.New(db, app.cache, logger),
		Payments:      payments,
		Tokens:        tokens,
		Publisher:     rabbitmq.NewPublisher(app.ch, rabbitmq.PaymentsExchange, rabbitmq.PaymentsConfirmedKey),
		DB:            db,
		RateLimiter:   middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst),
		WebhookSecret: cfg.WebhookSecret,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
