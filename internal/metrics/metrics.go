// Package metrics объявляет метрики Prometheus, общие для API и payment-processor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "equigest"

var (
	// PaymentTransitions смены платёжного статуса пользователя.
	PaymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_transitions_total",
		Help:      "Payment status transitions applied to users.",
	}, []string{"from", "to"})

	// WebhookEvents входящие уведомления провайдера по результату разбора.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhook_events_total",
		Help:      "Payment provider webhook calls by outcome.",
	}, []string{"result"})

	// ConfirmationsProcessed сообщения очереди подтверждений по результату обработки.
	ConfirmationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_confirmations_processed_total",
		Help:      "Payment confirmation messages handled by the worker.",
	}, []string{"result"})
)

// RecordTransition учитывает переход, только если статус действительно изменился.
func RecordTransition(from, to string) {
	if from == to {
		return
	}
	PaymentTransitions.WithLabelValues(from, to).Inc()
}
