package models

import "time"

// ConfirmationEvent сообщение о подтверждённой оплате, которое webhook-обработчик
// кладёт в очередь, а payment-processor разбирает.
// EventID идентификатор счёта у провайдера, используется для дедупликации.
type ConfirmationEvent struct {
	EventID    string    `json:"event_id"`
	CustomerID string    `json:"customer_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// Названия счётчиков статистики беременностей пользователя.
const (
	CounterTotal      = "total_pregnancies"
	CounterInProgress = "pregnancies_in_progress"
	CounterSuccessful = "successful_pregnancies"
	CounterFailed     = "failed_pregnancies"
)
