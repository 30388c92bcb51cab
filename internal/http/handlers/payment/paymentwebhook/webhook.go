// Package paymentwebhook принимает уведомления платёжного провайдера.
//
// Подпись проверяется HMAC-SHA256 по телу запроса. Подтверждённая оплата
// не применяется в обработчике, а публикуется в очередь для payment-processor.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
	"github.com/magabrotheeeer/equigest/internal/metrics"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// SignatureHeader заголовок с base64(HMAC-SHA256(secret, body)).
const SignatureHeader = "X-Webhook-Signature"

const (
	statusPaid = "PAID"
	// maxBodyBytes провайдер присылает небольшие JSON, больше не читаем.
	maxBodyBytes = 1 << 20
)

// Publisher кладёт событие подтверждения в очередь.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

type Handler struct {
	log           *slog.Logger
	publisher     Publisher
	webhookSecret []byte
	now           func() time.Time
}

func New(log *slog.Logger, publisher Publisher, secret string) *Handler {
	return &Handler{
		log:           log,
		publisher:     publisher,
		webhookSecret: []byte(secret),
		now:           time.Now,
	}
}

// Payload уведомление провайдера об оплате счёта.
type Payload struct {
	Event string `json:"event"`
	Data  struct {
		Billing struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Customer struct {
				ID string `json:"id"`
			} `json:"customer"`
		} `json:"billing"`
	} `json:"data"`
}

// Sign считает подпись тела запроса. Используется и провайдером-заглушкой в тестах.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(h.webhookSecret, body)), []byte(signature))
}

// ServeHTTP godoc
// @Summary Уведомление провайдера об оплате
// @Description Проверяет подпись и ставит подтверждение оплаты в очередь.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param X-Webhook-Signature header string true "base64 HMAC-SHA256 тела"
// @Success 200 {object} response.Response "Событие проигнорировано"
// @Success 202 {object} response.Response "Подтверждение поставлено в очередь"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Не удалось поставить в очередь"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" || !h.verifySignature(body, signature) {
		log.Warn("invalid or missing webhook signature")
		metrics.WebhookEvents.WithLabelValues("unauthorized").Inc()
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("ignoring malformed webhook payload", sl.Err(err))
		h.ignored(w, r)
		return
	}

	billing := payload.Data.Billing
	if billing.Status != statusPaid || billing.Customer.ID == "" {
		log.Info("ignoring webhook event",
			slog.String("event", payload.Event),
			slog.String("status", billing.Status),
		)
		h.ignored(w, r)
		return
	}

	event := models.ConfirmationEvent{
		EventID:    billing.ID,
		CustomerID: billing.Customer.ID,
		ReceivedAt: h.now().UTC(),
	}
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		log.Error("failed to enqueue payment confirmation", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to enqueue event"))
		return
	}

	log.Info("payment confirmation enqueued",
		slog.String("billing_id", billing.ID),
		slog.String("customer_id", billing.Customer.ID),
	)
	metrics.WebhookEvents.WithLabelValues("published").Inc()
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response.OKWithData(map[string]any{"result": "queued"}))
}

func (h *Handler) ignored(w http.ResponseWriter, r *http.Request) {
	metrics.WebhookEvents.WithLabelValues("ignored").Inc()
	render.JSON(w, r, response.OKWithData(map[string]any{"result": "ignored"}))
}
