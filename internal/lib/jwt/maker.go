// Package jwt выпускает и проверяет токены доступа EquiGest.
//
// Subject токена содержит uid пользователя, дополнительно хранится username для логов.
package jwt

import (
	"time"
)

// Maker выпускает и разбирает токены доступа.
type Maker interface {
	GenerateToken(userUID, username string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl подписывает токены HS256 общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl с секретом и временем жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
