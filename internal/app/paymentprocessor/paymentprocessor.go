// Package paymentprocessor собирает воркер подтверждений оплаты: потребитель
// очереди, проход по просроченным оплатам, gRPC health и HTTP с метриками работают в одной errgroup.
package paymentprocessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/equigest/internal/config"
	"github.com/magabrotheeeer/equigest/internal/grpc/server"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/rabbitmq"
	paymentservice "github.com/magabrotheeeer/equigest/internal/services/payment"
	processor "github.com/magabrotheeeer/equigest/internal/services/payment-processor"
	"github.com/magabrotheeeer/equigest/internal/services/scheduler"
	"github.com/magabrotheeeer/equigest/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *repository.Storage
	conn      *amqp.Connection
	ch        *amqp.Channel
	processor *processor.PaymentProcessor
	sweeper   *scheduler.ExpirySweeper
	health    *server.HealthServer
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "paymentprocessor.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{cfg: cfg, logger: logger, db: db}

	if app.conn, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if app.ch, err = rabbitmq.SetupChannel(app.conn, rabbitmq.PaymentsTopology(), cfg.Workers); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payments := paymentservice.New(db, logger)
	app.processor = processor.NewPaymentProcessor(payments, logger)
	app.sweeper = scheduler.NewExpirySweeper(db, payments, cfg.SweepInterval, cfg.SweepBatch,
		cfg.EventRetention, logger)
	app.health = server.NewHealthServer(logger)
	return app, nil
}

// Run блокируется до отмены ctx или до падения любой из частей воркера.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	grpcLis, err := net.Listen("tcp", a.cfg.GRPCAddress)
	if err != nil {
		return fmt.Errorf("paymentprocessor.Run: %w", err)
	}

	metricsSrv := &http.Server{
		Addr:              a.cfg.MetricsAddress,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.health.SetServing(true)
		defer a.health.SetServing(false)

		a.logger.Info("consuming payment confirmations",
			slog.String("queue", rabbitmq.PaymentsConfirmedQueue),
			slog.Int("workers", a.cfg.Workers),
		)
		return rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.PaymentsConfirmedQueue,
			a.cfg.Workers, a.processor.ProcessConfirmation)
	})

	g.Go(func() error {
		return a.sweeper.Run(ctx)
	})

	g.Go(func() error {
		return a.health.Serve(ctx, grpcLis)
	})

	g.Go(func() error {
		a.logger.Info("metrics server starting", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(timeoutCtx)
	})

	err = g.Wait()
	a.logger.Info("payment-processor shutting down gracefully")
	return err
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
