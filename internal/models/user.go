// Package models содержит доменные структуры EquiGest: пользователя с его
// платёжным статусом, кобылу, график ветеринарных мероприятий и события
// подтверждения оплаты, а также типы для приёма данных из JSON-запросов.
package models

import "time"

// PaymentStatus статус доступа пользователя к платным функциям.
type PaymentStatus string

const (
	// PaymentStatusTrial пробный период после регистрации.
	PaymentStatusTrial PaymentStatus = "TRIAL"
	// PaymentStatusPayed оплаченный период.
	PaymentStatusPayed PaymentStatus = "PAYED"
	// PaymentStatusDefeated период истёк, доступ закрыт до подтверждения оплаты.
	PaymentStatusDefeated PaymentStatus = "DEFEATED"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusTrial, PaymentStatusPayed, PaymentStatusDefeated:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                string        `json:"uid" db:"uid"`
	Username           string        `json:"username" db:"username"`
	Email              string        `json:"email" db:"email"`
	PasswordHash       string        `json:"-" db:"password_hash"`
	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	NextPaymentDate    *time.Time    `json:"next_payment_date,omitempty" db:"next_payment_date"`
	ProviderCustomerID *string       `json:"provider_customer_id,omitempty" db:"provider_customer_id"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Credentials данные для входа.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
