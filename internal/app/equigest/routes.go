// Package equigest собирает HTTP API: зависимости, маршруты и жизненный цикл сервера.
package equigest

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/equigest/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/health"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/counters"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/create"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/list"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/read"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/remove"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/update"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/mare/window"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/payment/customer"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/equigest/internal/http/handlers/payment/status"
	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
)

// AuthService регистрация и вход.
type AuthService interface {
	register.Service
	login.Service
}

// MareService учёт кобыл.
type MareService interface {
	create.Service
	read.Service
	update.Service
	remove.Service
	list.Service
	window.Service
	counters.Service
}

// PaymentService платёжный статус и привязка клиента провайдера.
type PaymentService interface {
	middlewarectx.PaymentService
	status.Service
	customer.Service
}

// Services зависимости маршрутов.
type Services struct {
	Auth          AuthService
	Mares         MareService
	Payments      PaymentService
	Tokens        middlewarectx.TokenParser
	Publisher     paymentwebhook.Publisher
	DB            health.Checker
	RateLimiter   *middlewarectx.RateLimiter
	WebhookSecret string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Publisher, s.WebhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
			r.Use(s.RateLimiter.Middleware(logger))

			// Доступны и при статусе DEFEATED, чтобы пользователь мог оплатить.
			r.Get("/payments/status", status.New(logger, s.Payments).ServeHTTP)
			r.Put("/payments/customer", customer.New(logger, s.Payments).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.PaymentStatusMiddleware(logger, s.Payments))

				r.Post("/mares", create.New(logger, s.Mares).ServeHTTP)
				r.Get("/mares", list.New(logger, s.Mares).ServeHTTP)
				r.Get("/mares/birth-forecast", window.NewBirthForecast(logger, s.Mares).ServeHTTP)
				r.Get("/mares/p4", window.NewP4(logger, s.Mares).ServeHTTP)
				r.Get("/mares/herpes", window.NewHerpes(logger, s.Mares).ServeHTTP)
				r.Get("/mares/counters", counters.New(logger, s.Mares).ServeHTTP)
				r.Get("/mares/{name}", read.New(logger, s.Mares).ServeHTTP)
				r.Put("/mares/{name}", update.New(logger, s.Mares).ServeHTTP)
				r.Delete("/mares/{name}", remove.New(logger, s.Mares).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
